package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		hours    float64
		expected MetabolicState
	}{
		{0, StateFed},
		{3.99, StateFed},
		{4, StateEarlyFasting},
		{11.9, StateEarlyFasting},
		{12, StateFatBurning},
		{16, StateKetosis},
		{23.99, StateKetosis},
		{24, StateDeepKetosis},
		{47.5, StateDeepKetosis},
		{48, StateAutophagy},
		{500, StateAutophagy},
		{-2, StateFed},
		{math.NaN(), StateFed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.hours), "hours=%v", tt.hours)
	}
}

func TestMetabolicStatesAreExhaustiveAndDisjoint(t *testing.T) {
	for h := 0.0; h <= 100; h += 0.125 {
		matches := 0
		for _, info := range MetabolicStates {
			if h >= info.MinHours && h < info.MaxHours {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "hours=%v", h)
	}

	for i := 1; i < len(MetabolicStates); i++ {
		assert.Equal(t, MetabolicStates[i-1].MaxHours, MetabolicStates[i].MinHours, "gap before %s", MetabolicStates[i].State)
	}
}

func TestNextState(t *testing.T) {
	next, ok := NextState(0)
	require.True(t, ok)
	assert.Equal(t, StateEarlyFasting, next.State)

	next, ok = NextState(13)
	require.True(t, ok)
	assert.Equal(t, StateKetosis, next.State)

	_, ok = NextState(50)
	assert.False(t, ok, "autophagy is terminal")
}

func TestStateInfo(t *testing.T) {
	info, ok := StateInfo(StateKetosis)
	require.True(t, ok)
	assert.Equal(t, "Ketosis", info.Name)
	assert.Equal(t, 16.0, info.MinHours)
	assert.Equal(t, 24.0, info.MaxHours)

	_, ok = StateInfo("unknown")
	assert.False(t, ok)
}

func TestStateProgress(t *testing.T) {
	assert.InDelta(t, 0.5, StateProgress(14), 1e-9)
	assert.InDelta(t, 0.0, StateProgress(0), 1e-9)
	assert.InDelta(t, 1.0, StateProgress(72), 1e-9)
}

func TestFormatFastingTime(t *testing.T) {
	assert.Equal(t, "16h 30m", FormatFastingTime(16.5))
	assert.Equal(t, "0h 0m", FormatFastingTime(0))
	assert.Equal(t, "2h 0m", FormatFastingTime(1.999))
	assert.Equal(t, "17h 0m", FormatFastingTime(17))
}
