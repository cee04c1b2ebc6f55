// Package env holds small helpers for reading process environment variables.
package env

import "os"

// Get returns the value of key, or fallback when the variable is unset or blank.
func Get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
