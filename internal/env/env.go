// Package env provides small env-var-with-default helpers shared by config
// loading.
package env

import (
	"os"
	"strconv"
	"time"
)

// String returns the named variable, or def if unset or empty.
func String(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// Uint32 parses the named variable as an unsigned integer, returning def on
// absence or parse failure.
func Uint32(name string, def uint32) uint32 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint32(n)
}

// Seconds parses the named variable as a count of seconds, returning
// defSeconds (also in seconds) as a time.Duration on absence or parse
// failure.
func Seconds(name string, defSeconds int64) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return time.Duration(defSeconds) * time.Second
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Duration(defSeconds) * time.Second
	}
	return time.Duration(n) * time.Second
}
