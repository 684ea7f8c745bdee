package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses durationStr, falling back to fallback when it is empty, malformed or negative.
func ParseDuration(durationStr string, fallback time.Duration) time.Duration {
	if durationStr == "" {
		return fallback
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil || d < 0 {
		log.Warn().Err(err).Str("duration", durationStr).Dur("fallback", fallback).Msg("Unusable duration, using fallback")
		return fallback
	}
	return d
}

