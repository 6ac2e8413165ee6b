package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDMS converts a sexagesimal angle such as 40°30'15"N to decimal
// degrees. Missing degrees, minutes or seconds count as zero, so a bare
// direction is 0. The trailing direction must be N, E, S or W; S and W are
// negative.
func ParseDMS(s string) (float64, error) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == '°' || r == '\'' || r == '"'
	})
	if len(tokens) == 0 {
		return 0, fmt.Errorf("invalid angle %q: missing direction", s)
	}

	direction := strings.TrimSpace(tokens[len(tokens)-1])
	var sign float64
	switch direction {
	case "N", "E":
		sign = 1
	case "S", "W":
		sign = -1
	default:
		return 0, fmt.Errorf("invalid angle %q: unknown direction %q", s, direction)
	}

	parts := tokens[:len(tokens)-1]
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid angle %q: too many components", s)
	}

	var value float64
	for n, part := range parts {
		part = strings.TrimSpace(part)
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid angle %q: component %q is not a number", s, part)
		}
		value += v / math.Pow(60, float64(n))
	}
	return value * sign, nil
}
