package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DurationOr parses a configured duration such as "10s". Blank values yield fallback silently;
// malformed or non-positive values yield fallback with a warning.
func DurationOr(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Err(err).Str("value", value).Dur("fallback", fallback).Msg("Ignoring invalid duration setting")
		return fallback
	}
	return d
}
