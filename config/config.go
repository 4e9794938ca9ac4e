// Package config holds the named options of §6.6, with the same
// defaults-overridden-by-flags shape the teacher's cmd/fdb and
// cmd/fgeo binaries use in their init() functions.
package config

import "flag"

type Options struct {
	CorridorHeightFt   float64
	CorridorWidthNM    float64
	ClimbRateFtpm      float64
	DescentRateFtpm    float64
	GroundSpeedKt      float64
	GeometryCacheSize  int
	ElevationTimeoutS  int
	ElevationBudgetS   int
}

// Defaults returns the option set with the §6.6 default values.
func Defaults() Options {
	return Options{
		CorridorHeightFt:  1000,
		CorridorWidthNM:   10,
		ClimbRateFtpm:     500,
		DescentRateFtpm:   500,
		GroundSpeedKt:     100,
		GeometryCacheSize: 1024,
		ElevationTimeoutS: 5,
		ElevationBudgetS:  30,
	}
}

// RegisterFlags wires the option struct's fields into flag.*Var calls,
// the way cmd/fdb/fdb.go and cmd/fgeo/fgeo.go register their own
// options in init().
func (o *Options) RegisterFlags(fs *flag.FlagSet) {
	fs.Float64Var(&o.CorridorHeightFt, "corridor_height_ft", o.CorridorHeightFt, "± vertical margin")
	fs.Float64Var(&o.CorridorWidthNM, "corridor_width_nm", o.CorridorWidthNM, "± lateral margin")
	fs.Float64Var(&o.ClimbRateFtpm, "climb_rate_ftpm", o.ClimbRateFtpm, "profile corrector climb rate")
	fs.Float64Var(&o.DescentRateFtpm, "descent_rate_ftpm", o.DescentRateFtpm, "profile corrector descent rate")
	fs.Float64Var(&o.GroundSpeedKt, "ground_speed_kt", o.GroundSpeedKt, "profile corrector ground speed")
	fs.IntVar(&o.GeometryCacheSize, "geometry_cache_size", o.GeometryCacheSize, "LRU entries")
	fs.IntVar(&o.ElevationTimeoutS, "elevation_timeout_s", o.ElevationTimeoutS, "per network call, seconds")
	fs.IntVar(&o.ElevationBudgetS, "elevation_budget_s", o.ElevationBudgetS, "overall correction budget, seconds")
}
