// Package config loads the parameter dictionary enumerated in spec.md §6
// into a single immutable value passed explicitly to every builder,
// rather than the package-global singleton pattern the teacher repo uses
// for its database and cache configuration (see design note §9,
// "Configuration as explicit value").
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Config is the full parameter dictionary for a pipeline run.
type Config struct {
	WalkingRadius     float64 // meters
	WalkingSpeed      float64 // m/s
	MaxWalkWaitTime   int64   // seconds
	MaxTransferTime   int64   // seconds
	MinTransferTime   int64   // seconds
	DefaultWaitTime   int64   // seconds
	WaitTimeByType    map[string]int64
	MinAvgSpeed       float64 // m/s
	MaxAvgSpeed       float64 // m/s, fixed at 22.2 per spec.md §4.C
	RouteLimit        int     // 0 means unlimited
	RideLinkMaxSecs   int64   // the undocumented "< 1800" filter, spec.md §4.E / §9 (i)

	PostgresDSN string // optional sink, SPEC_FULL.md §4.2
	RedisAddr   string // optional memoization cache, SPEC_FULL.md §4.3
	StatusAddr  string // optional operational server, SPEC_FULL.md §4.1
}

// Default returns the parameter defaults from spec.md §6.
func Default() Config {
	return Config{
		WalkingRadius:   400,
		WalkingSpeed:    1.2,
		MaxWalkWaitTime: 3600,
		MaxTransferTime: 1800,
		MinTransferTime: 120,
		DefaultWaitTime: 30,
		WaitTimeByType:  map[string]int64{},
		MinAvgSpeed:     1.0,
		MaxAvgSpeed:     22.2,
		RouteLimit:      0,
		RideLinkMaxSecs: 1800,
	}
}

// FromEnv overlays environment variables named after the spec.md §6 keys
// onto the defaults.
func FromEnv() Config {
	c := Default()
	if v, ok := getFloatEnv("WALKING_RADIUS"); ok {
		c.WalkingRadius = v
	}
	if v, ok := getFloatEnv("WALKING_SPEED"); ok {
		c.WalkingSpeed = v
	}
	if v, ok := getIntEnv("MAX_WALK_WAIT_TIME"); ok {
		c.MaxWalkWaitTime = v
	}
	if v, ok := getIntEnv("MAX_TRANSFER_TIME"); ok {
		c.MaxTransferTime = v
	}
	if v, ok := getIntEnv("MIN_TRANSFER_TIME"); ok {
		c.MinTransferTime = v
	}
	if v, ok := getIntEnv("DEFAULT_WAITING_TIME"); ok {
		c.DefaultWaitTime = v
	}
	if v, ok := getFloatEnv("MIN_AVG_SPEED"); ok {
		c.MinAvgSpeed = v
	}
	if v, ok := getIntEnv("ROUTE_LIMIT"); ok {
		c.RouteLimit = int(v)
	}
	c.PostgresDSN = getEnv("POSTGRES_DSN", "")
	c.RedisAddr = getEnv("REDIS_ADDR", "")
	c.StatusAddr = getEnv("STATUS_ADDR", "")
	return c
}

// BindFlags registers flags that override the current values when parsed,
// following the flag-plus-env pattern of the teacher's cmd/importer.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.Float64Var(&c.WalkingRadius, "walking-radius", c.WalkingRadius, "max walk-leg distance in meters")
	fs.Float64Var(&c.WalkingSpeed, "walking-speed", c.WalkingSpeed, "walking speed in m/s")
	fs.Int64Var(&c.MaxWalkWaitTime, "max-walk-wait", c.MaxWalkWaitTime, "max total walk+wait budget in seconds")
	fs.Int64Var(&c.MaxTransferTime, "max-transfer", c.MaxTransferTime, "max transfer window in seconds")
	fs.Int64Var(&c.MinTransferTime, "min-transfer", c.MinTransferTime, "min transfer delay in seconds")
	fs.Int64Var(&c.DefaultWaitTime, "default-dwell", c.DefaultWaitTime, "default dwell time in seconds")
	fs.Float64Var(&c.MinAvgSpeed, "min-avg-speed", c.MinAvgSpeed, "minimum accepted trip speed in m/s")
	fs.IntVar(&c.RouteLimit, "route-limit", c.RouteLimit, "optional cap on routes ingested (0 = unlimited)")
	fs.StringVar(&c.PostgresDSN, "postgres-dsn", c.PostgresDSN, "optional Postgres DSN to additionally bulk-load node/link rows into")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "optional Redis address used to memoize polyline geometry lookups")
	fs.StringVar(&c.StatusAddr, "status-addr", c.StatusAddr, "optional address to serve /health and /progress on while the pipeline runs")
}

// Validate implements the "Configuration" error class of spec.md §7:
// these checks are fatal at startup, before any input is read.
func (c Config) Validate() error {
	if c.MaxTransferTime < c.MinTransferTime {
		return errors.New("config: MAX_TRANSFER_TIME must be >= MIN_TRANSFER_TIME")
	}
	if c.WalkingRadius <= 0 {
		return errors.New("config: WALKING_RADIUS must be positive")
	}
	if c.WalkingSpeed <= 0 {
		return errors.New("config: WALKING_SPEED must be positive")
	}
	if c.DefaultWaitTime <= 0 {
		return errors.New("config: DEFAULT_WAITING_TIME must be positive")
	}
	if c.MinAvgSpeed <= 0 || c.MinAvgSpeed > c.MaxAvgSpeed {
		return fmt.Errorf("config: MIN_AVG_SPEED must be in (0, %.1f]", c.MaxAvgSpeed)
	}
	return nil
}

// DwellFor resolves the per-stop dwell time for a bus type, falling back
// to DefaultWaitTime when unmatched (spec.md §3, §4.C).
func (c Config) DwellFor(busType string) int64 {
	if d, ok := c.WaitTimeByType[busType]; ok {
		return d
	}
	return c.DefaultWaitTime
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloatEnv(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func getIntEnv(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
