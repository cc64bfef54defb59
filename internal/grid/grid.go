package grid

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Mode selects how levels are spaced between the bounds.
// Keep these values stable; they appear in configs and API payloads.
type Mode string

const (
	Arithmetic Mode = "arith"
	Geometric  Mode = "geom"
)

// ErrInvalidGridConfig is returned by Build for bounds or counts that cannot form a grid.
var ErrInvalidGridConfig = errors.New("invalid grid config")

// ParseMode matches case-insensitively on the "geom" prefix.
// Anything else, including the empty string, is Arithmetic.
func ParseMode(s string) Mode {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), string(Geometric)) {
		return Geometric
	}
	return Arithmetic
}

// Levels is an ordered, strictly increasing set of grid prices.
// levels[0] is the lower bound and levels[len-1] the upper bound.
type Levels []float64

// Triggers returns every level except the topmost one.
func (l Levels) Triggers() []float64 {
	if len(l) == 0 {
		return nil
	}
	return l[:len(l)-1]
}

func (l Levels) Lower() float64 {
	if len(l) == 0 {
		return 0
	}
	return l[0]
}

func (l Levels) Upper() float64 {
	if len(l) == 0 {
		return 0
	}
	return l[len(l)-1]
}

// Build returns count+1 levels from lower to upper inclusive.
//
// Arithmetic: level[i] = lower + i*(upper-lower)/count
// Geometric:  level[i] = lower * (upper/lower)^(i/count)
func Build(lower, upper float64, count int, mode Mode) (Levels, error) {
	if err := validate(lower, upper, count); err != nil {
		return nil, err
	}

	levels := make(Levels, count+1)
	switch mode {
	case Geometric:
		floats.LogSpan(levels, lower, upper)
	default:
		floats.Span(levels, lower, upper)
	}
	// Pin the endpoints; LogSpan goes through exp(log(x)).
	levels[0] = lower
	levels[count] = upper

	for i := 1; i < len(levels); i++ {
		if levels[i] <= levels[i-1] {
			return nil, fmt.Errorf("%w: %d levels between %g and %g are not strictly increasing", ErrInvalidGridConfig, count+1, lower, upper)
		}
	}
	return levels, nil
}

func validate(lower, upper float64, count int) error {
	switch {
	case math.IsNaN(lower) || math.IsInf(lower, 0) || lower <= 0:
		return fmt.Errorf("%w: lower bound must be > 0, got %g", ErrInvalidGridConfig, lower)
	case math.IsNaN(upper) || math.IsInf(upper, 0) || upper <= lower:
		return fmt.Errorf("%w: upper bound must be > lower bound, got lower=%g upper=%g", ErrInvalidGridConfig, lower, upper)
	case count < 1:
		return fmt.Errorf("%w: grid count must be >= 1, got %d", ErrInvalidGridConfig, count)
	}
	return nil
}
