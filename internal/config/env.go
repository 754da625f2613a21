package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func parseBool(v string) (bool, bool) {
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true, true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false, true
	}
	return false, false
}

// envBool, envInt and envDur fall back to the default when a value is
// missing or malformed.
func envBool(k string, d bool) bool {
	if b, ok := parseBool(os.Getenv(k)); ok {
		return b
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}

// envParser is the strict variant: a malformed value is recorded as an
// error and the default is returned in its place.
type envParser struct {
	errs []error
}

func (p *envParser) bool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, ok := parseBool(v)
	if !ok {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", k, v))
		return d
	}
	return b
}

func (p *envParser) int(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", k, v))
		return d
	}
	return n
}

func (p *envParser) dur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", k, v))
		return d
	}
	return dur
}
