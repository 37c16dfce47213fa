// Package duration parses human-entered durations into whole seconds.
package duration

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid is returned when the numeric portion does not parse or the
// resulting duration is not positive.
var ErrInvalid = errors.New("invalid duration")

// Unit multipliers in seconds. Months and years are fixed-size
// (30 and 360 days), not calendar-aware.
var units = map[string]float64{
	"ms": 0.001,
	"s":  1,
	"m":  60,
	"h":  3600,
	"d":  86400,
	"w":  604800,
	"mo": 2592000,
	"y":  31104000,
}

// Longest suffixes first so "ms" and "mo" win over "m" and "s".
var suffixes = []string{"ms", "mo", "s", "m", "h", "d", "w", "y"}

// Parse converts a token like "30m", "1.5h" or "90" into whole seconds.
// The unit defaults to minutes when no suffix is given. The product is
// floored; results of zero or less fail with ErrInvalid.
func Parse(token string) (int, error) {
	token = strings.TrimSpace(token)
	multiplier := units["m"]

	for _, suffix := range suffixes {
		if strings.HasSuffix(token, suffix) {
			token = strings.TrimSuffix(token, suffix)
			multiplier = units[suffix]
			break
		}
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, ErrInvalid
	}

	secs := int(math.Floor(value * multiplier))
	if secs <= 0 {
		return 0, ErrInvalid
	}
	return secs, nil
}
