package clinicaltrials

import (
	"strconv"
	"strings"
)

// ParseAgeYears converts registry ages such as "18 Years" or "6 Months" to
// whole years. ok is false when the value is missing or unparseable.
func ParseAgeYears(s string) (years float64, ok bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	unit := "years"
	if len(fields) > 1 {
		unit = fields[1]
	}
	switch {
	case strings.HasPrefix(unit, "year"):
		return n, true
	case strings.HasPrefix(unit, "month"):
		return n / 12, true
	case strings.HasPrefix(unit, "week"):
		return n / 52, true
	case strings.HasPrefix(unit, "day"):
		return n / 365, true
	case strings.HasPrefix(unit, "hour"), strings.HasPrefix(unit, "minute"):
		return 0, true
	}
	return 0, false
}
