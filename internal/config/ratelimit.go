package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// KeyStrategies lists the accepted RATE_LIMIT_KEY_STRATEGY values.  Each
// names the request attributes a bucket is keyed on.
var KeyStrategies = []string{"ip", "user", "route", "ip_user", "ip_route", "user_route", "ip_user_route"}

// RateLimitConfig configures the token bucket middleware.  Capacity is the
// bucket size, RefillTokens are added every RefillInterval and idle
// buckets are forgotten after TTL.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.  Unparsable or out
// of range values are reported together instead of being replaced.
func LoadRateLimitConfig() (RateLimitConfig, error) {
	p := &envParser{}
	cfg := RateLimitConfig{
		Enabled:        p.bool("RATE_LIMIT_ENABLED", true),
		Capacity:       p.int("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   p.int("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: p.dur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            p.dur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    strings.ToLower(envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route")),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          p.bool("RATE_LIMIT_DEBUG", false),
	}
	errs := p.errs
	if cfg.Capacity < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_CAPACITY must be at least 1"))
	}
	if cfg.RefillTokens < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_REFILL_TOKENS must be at least 1"))
	}
	if cfg.RefillInterval <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REFILL_INTERVAL must be positive"))
	} else if cfg.TTL < 5*cfg.RefillInterval {
		// A bucket must live long enough to refill, or it resets to full.
		errs = append(errs, fmt.Errorf("RATE_LIMIT_TTL must be at least %s", 5*cfg.RefillInterval))
	}
	if !slices.Contains(KeyStrategies, cfg.KeyStrategy) {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_KEY_STRATEGY %q is not one of %s", cfg.KeyStrategy, strings.Join(KeyStrategies, ", ")))
	}
	if len(errs) > 0 {
		return RateLimitConfig{}, fmt.Errorf("rate limit config: %w", errors.Join(errs...))
	}
	return cfg, nil
}
