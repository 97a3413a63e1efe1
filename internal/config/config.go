package config

import (
	"log"
	"os"
	"strings"
)

// Get returns an environment value or the fallback when unset/blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// MustGet returns an environment value or exits. Used at composition
// roots for credentials and addresses that have no sane default.
func MustGet(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		log.Fatalf("%s is required", key)
	}
	return v
}
