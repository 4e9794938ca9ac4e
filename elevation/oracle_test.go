package elevation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skyvolume/airspace"
)

func TestOpenElevationOracleParsesAndCaches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(lookupResponse{Results: []struct {
			Elevation float64 `json:"elevation"`
		}{{Elevation: 100}}})
	}))
	defer srv.Close()

	o := NewOpenElevationOracle(srv.URL, time.Second)
	ft, err := o.ElevationFt(context.Background(), 37.0, -122.0)
	if err != nil {
		t.Fatalf("ElevationFt() error = %v", err)
	}
	wantFt := 100 * metersToFeet
	if ft != wantFt {
		t.Errorf("ElevationFt() = %v, want %v", ft, wantFt)
	}

	if _, err := o.ElevationFt(context.Background(), 37.0, -122.0); err != nil {
		t.Fatalf("second ElevationFt() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1 (second lookup should hit cache)", calls)
	}
}

func TestOpenElevationOracleTranslatesHTTPFailureToNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := NewOpenElevationOracle(srv.URL, time.Second)
	_, err := o.ElevationFt(context.Background(), 0, 0)
	if err == nil {
		t.Fatal("expected an error on HTTP 500")
	}
	e, ok := err.(*airspace.Error)
	if !ok || e.Kind != airspace.NetworkUnavailable {
		t.Errorf("error kind = %v, want NetworkUnavailable", err)
	}
}

func TestOpenElevationOracleTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	o := NewOpenElevationOracle(srv.URL, 5*time.Millisecond)
	_, err := o.ElevationFt(context.Background(), 0, 0)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	e, ok := err.(*airspace.Error)
	if !ok || e.Kind != airspace.Timeout {
		t.Errorf("error kind = %v, want Timeout", err)
	}
}

type constantOracle struct{ ft float64 }

func (o constantOracle) ElevationFt(ctx context.Context, lat, lon float64) (float64, error) {
	return o.ft, nil
}

type failingOracle struct{}

func (failingOracle) ElevationFt(ctx context.Context, lat, lon float64) (float64, error) {
	return 0, airspace.NewError(airspace.NetworkUnavailable, "unreachable", nil)
}

func TestBudgetedFallsBackOnDegradedNetwork(t *testing.T) {
	b := NewBudgeted(failingOracle{}, time.Second)
	ft, err := b.ElevationFt(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Budgeted.ElevationFt() error = %v, want nil (degrade instead)", err)
	}
	if ft != 0 {
		t.Errorf("degraded elevation = %v, want 0", ft)
	}
	if !b.Estimated {
		t.Error("expected Estimated to be set after a degraded lookup")
	}
}

func TestBudgetedStopsCallingOracleOnceBudgetExhausted(t *testing.T) {
	b := NewBudgeted(constantOracle{ft: 500}, 1*time.Millisecond)
	if _, err := b.ElevationFt(context.Background(), 0, 0); err != nil {
		t.Fatalf("first ElevationFt() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	ft, err := b.ElevationFt(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("ElevationFt() error = %v", err)
	}
	if ft != 0 || !b.Estimated {
		t.Errorf("expected budget-exhausted fallback (0, Estimated=true), got (%v, %v)", ft, b.Estimated)
	}
}
