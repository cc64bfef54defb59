package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArithmetic(t *testing.T) {
	levels, err := Build(100, 200, 4, Arithmetic)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{100, 125, 150, 175, 200}, []float64(levels), 1e-9)
}

func TestBuildGeometric(t *testing.T) {
	levels, err := Build(100, 200, 2, Geometric)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, 100.0, levels[0])
	assert.InDelta(t, 141.42, levels[1], 0.005)
	assert.Equal(t, 200.0, levels[2])
}

func TestBuildShapeInvariants(t *testing.T) {
	cases := []struct {
		lower, upper float64
		count        int
	}{
		{1, 2, 1},
		{90, 160, 2},
		{0.05, 0.07, 13},
		{38000, 48000, 40},
		{1e-3, 1e6, 250},
	}
	for _, tc := range cases {
		for _, mode := range []Mode{Arithmetic, Geometric} {
			levels, err := Build(tc.lower, tc.upper, tc.count, mode)
			require.NoError(t, err, "%v %+v", mode, tc)
			require.Len(t, levels, tc.count+1)
			assert.Equal(t, tc.lower, levels.Lower())
			assert.Equal(t, tc.upper, levels.Upper())
			for i := 1; i < len(levels); i++ {
				assert.Greater(t, levels[i], levels[i-1], "%v %+v index %d", mode, tc, i)
			}
		}
	}
}

func TestArithmeticDifferencesEqual(t *testing.T) {
	levels, err := Build(38000, 48000, 20, Arithmetic)
	require.NoError(t, err)
	want := (48000.0 - 38000.0) / 20
	for i := 1; i < len(levels); i++ {
		assert.InDelta(t, want, levels[i]-levels[i-1], 1e-6)
	}
}

func TestGeometricRatiosEqual(t *testing.T) {
	levels, err := Build(10, 1000, 8, Geometric)
	require.NoError(t, err)
	want := math.Pow(100, 1.0/8)
	for i := 1; i < len(levels); i++ {
		assert.InDelta(t, want, levels[i]/levels[i-1], 1e-9)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name         string
		lower, upper float64
		count        int
	}{
		{"zero lower", 0, 100, 4},
		{"negative lower", -5, 100, 4},
		{"upper equals lower", 100, 100, 4},
		{"reversed", 200, 100, 4},
		{"zero count", 100, 200, 0},
		{"negative count", 100, 200, -3},
		{"nan lower", math.NaN(), 200, 2},
		{"inf upper", 100, math.Inf(1), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			levels, err := Build(tc.lower, tc.upper, tc.count, Arithmetic)
			assert.ErrorIs(t, err, ErrInvalidGridConfig)
			assert.Nil(t, levels)
		})
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"geom":      Geometric,
		"GEOM":      Geometric,
		"Geometric": Geometric,
		" geom ":    Geometric,
		"geomspace": Geometric,
		"arith":     Arithmetic,
		"ARITH":     Arithmetic,
		"":          Arithmetic,
		"linear":    Arithmetic,
		"geo":       Arithmetic,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseMode(in), "ParseMode(%q)", in)
	}
}

func TestTriggersDropsTopmost(t *testing.T) {
	levels := Levels{90, 125, 160}
	assert.Equal(t, []float64{90, 125}, levels.Triggers())
	assert.Nil(t, Levels(nil).Triggers())
}
