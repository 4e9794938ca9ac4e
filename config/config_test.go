package config

import (
	"flag"
	"testing"
)

func TestRegisterFlagsOverridesDefaults(t *testing.T) {
	opts := Defaults()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts.RegisterFlags(fs)

	if err := fs.Parse([]string{"-corridor_width_nm=15", "-climb_rate_ftpm=800"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if opts.CorridorWidthNM != 15 {
		t.Errorf("CorridorWidthNM = %v, want 15", opts.CorridorWidthNM)
	}
	if opts.ClimbRateFtpm != 800 {
		t.Errorf("ClimbRateFtpm = %v, want 800", opts.ClimbRateFtpm)
	}
	if opts.DescentRateFtpm != 500 {
		t.Errorf("DescentRateFtpm = %v, want unchanged default 500", opts.DescentRateFtpm)
	}
}

func TestDefaultsMatchConfigurationSurface(t *testing.T) {
	opts := Defaults()
	if opts.GeometryCacheSize != 1024 {
		t.Errorf("GeometryCacheSize = %v, want 1024", opts.GeometryCacheSize)
	}
	if opts.CorridorHeightFt != 1000 || opts.CorridorWidthNM != 10 {
		t.Errorf("corridor defaults = (%v,%v), want (1000,10)", opts.CorridorHeightFt, opts.CorridorWidthNM)
	}
}
