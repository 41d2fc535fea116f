// Package clock converts between seconds and the mm:ss labels shown next to
// playback positions, markers and segment bounds.
package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format renders seconds as zero-padded "mm:ss". Minutes are not capped, so
// long media yields labels such as "125:03". Negative and non-finite input
// renders as "00:00".
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Parse reads a position typed by a user. It accepts plain seconds ("83.5"),
// minutes and seconds ("1:23.5") or hours, minutes and seconds ("1:02:03").
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time value")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: too many fields", s)
	}

	var total float64
	for i, part := range parts {
		last := i == len(parts)-1
		var v float64
		if last {
			f, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid time %q: %w", s, err)
			}
			v = f
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return 0, fmt.Errorf("invalid time %q: %w", s, err)
			}
			v = float64(n)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, fmt.Errorf("invalid time %q: must be a finite, non-negative value", s)
		}
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("invalid time %q: field %q out of range", s, part)
		}
		total = total*60 + v
	}

	return total, nil
}
