// Package elevation implements the terrain-elevation oracle contract
// of §6.2: an external HTTP endpoint mapping (lat, lon) to ground
// elevation, with in-memory caching by rounded coordinate. No HTTP
// client wrapper library appears anywhere in the retrieved example
// pack (skypies-flightdb's own aex/aex.go talks to REST endpoints with
// a plain *http.Client), so net/http is the grounded choice here too.
package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/skyvolume/airspace"
)

// Oracle answers "what is ground elevation at this point?", in feet MSL.
type Oracle interface {
	ElevationFt(ctx context.Context, lat, lon float64) (float64, error)
}

type coordKey struct{ lat, lon int64 }

// roundedKey rounds to 5 decimal places, per §6.2.
func roundedKey(lat, lon float64) coordKey {
	const scale = 1e5
	return coordKey{int64(math.Round(lat * scale)), int64(math.Round(lon * scale))}
}

// OpenElevationOracle implements Oracle against the public Open
// Elevation API's /api/v1/lookup endpoint (spec's "at least one
// implementation must use the open public elevation API", §6.2).
type OpenElevationOracle struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration

	mu    sync.RWMutex
	cache map[coordKey]float64
}

func NewOpenElevationOracle(baseURL string, timeout time.Duration) *OpenElevationOracle {
	if baseURL == "" {
		baseURL = "https://api.open-elevation.com/api/v1/lookup"
	}
	return &OpenElevationOracle{
		BaseURL: baseURL,
		Client:  &http.Client{},
		Timeout: timeout,
		cache:   map[coordKey]float64{},
	}
}

type lookupResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

const metersToFeet = 3.28084

func (o *OpenElevationOracle) ElevationFt(ctx context.Context, lat, lon float64) (float64, error) {
	key := roundedKey(lat, lon)

	o.mu.RLock()
	if ft, ok := o.cache[key]; ok {
		o.mu.RUnlock()
		return ft, nil
	}
	o.mu.RUnlock()

	reqCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("locations", fmt.Sprintf("%.5f,%.5f", lat, lon))
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, o.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, airspace.NewError(airspace.Internal, "build elevation request", err)
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return 0, airspace.NewError(airspace.Timeout, "elevation oracle timed out", err)
		}
		return 0, airspace.NewError(airspace.NetworkUnavailable, "elevation oracle unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, airspace.NewError(airspace.NetworkUnavailable,
			fmt.Sprintf("elevation oracle returned status %d", resp.StatusCode), nil)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, airspace.NewError(airspace.Internal, "decode elevation response", err)
	}
	if len(body.Results) == 0 {
		return 0, airspace.NewError(airspace.Internal, "elevation response had no results", nil)
	}

	ft := body.Results[0].Elevation * metersToFeet

	o.mu.Lock()
	o.cache[key] = ft
	o.mu.Unlock()

	return ft, nil
}

// Budgeted wraps an Oracle with the per-call-timeout-plus-overall-
// budget policy of §5/§7: once the overall budget is exhausted,
// remaining lookups fall back to a default elevation of 0 ft and are
// flagged, rather than continuing to hit the network.
type Budgeted struct {
	Oracle    Oracle
	Budget    time.Duration
	started   time.Time
	spent     time.Duration
	Estimated bool // set once any call has fallen back to 0ft
}

func NewBudgeted(o Oracle, budget time.Duration) *Budgeted {
	return &Budgeted{Oracle: o, Budget: budget}
}

func (b *Budgeted) ElevationFt(ctx context.Context, lat, lon float64) (float64, error) {
	if b.started.IsZero() {
		b.started = time.Now()
	}
	if time.Since(b.started) >= b.Budget {
		b.Estimated = true
		return 0, nil
	}

	start := time.Now()
	ft, err := b.Oracle.ElevationFt(ctx, lat, lon)
	b.spent += time.Since(start)

	if err != nil {
		var kindErr *airspace.Error
		if e, ok := err.(*airspace.Error); ok {
			kindErr = e
		}
		if kindErr != nil && (kindErr.Kind == airspace.NetworkUnavailable || kindErr.Kind == airspace.Timeout) {
			b.Estimated = true
			return 0, nil
		}
		return 0, err
	}
	return ft, nil
}
