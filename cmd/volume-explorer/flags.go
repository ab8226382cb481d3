package main

import (
	"fmt"
	"strconv"
	"strings"

	"opticalct/internal/models"
)

// parseLimits reads "min,max"; an empty string means the volume range
func parseLimits(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	vals, err := parseList(s, 2, strconv.ParseFloat)
	if err != nil {
		return nil, err
	}
	if vals[0] > vals[1] {
		return nil, fmt.Errorf("min %g exceeds max %g: %w", vals[0], vals[1], models.ErrConfiguration)
	}
	return vals, nil
}

// parseRegion reads "row,col,depth,rows,cols,depths"
func parseRegion(s string) ([]int, error) {
	return parseList(s, 6, func(f string, _ int) (int, error) {
		return strconv.Atoi(f)
	})
}

func parseList[T any](s string, n int, parse func(string, int) (T, error)) ([]T, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d comma separated values, got %q: %w", n, s, models.ErrConfiguration)
	}
	out := make([]T, n)
	for i, f := range fields {
		v, err := parse(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %v: %w", i, err, models.ErrConfiguration)
		}
		out[i] = v
	}
	return out, nil
}
