package utils

import (
	"strconv"
)

// ParseFloat converts a query-string number to a float64. Empty input parses
// as zero rather than an error.
func ParseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return value, nil
}
