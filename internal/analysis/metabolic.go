package analysis

import (
	"fmt"
	"math"
)

// MetabolicState is the physiological phase reached after a given fasting time
type MetabolicState string

const (
	StateFed          MetabolicState = "fed"
	StateEarlyFasting MetabolicState = "early_fasting"
	StateFatBurning   MetabolicState = "fat_burning"
	StateKetosis      MetabolicState = "ketosis"
	StateDeepKetosis  MetabolicState = "deep_ketosis"
	StateAutophagy    MetabolicState = "autophagy"
)

// MetabolicStateInfo describes a state and its [MinHours, MaxHours) interval
type MetabolicStateInfo struct {
	State    MetabolicState
	Name     string
	MinHours float64
	MaxHours float64 // +Inf for the terminal state
}

// MetabolicStates lists the states in order. The intervals are contiguous,
// half-open and cover [0, +Inf).
var MetabolicStates = []MetabolicStateInfo{
	{StateFed, "Fed State", 0, 4},
	{StateEarlyFasting, "Early Fasting", 4, 12},
	{StateFatBurning, "Fat Burning", 12, 16},
	{StateKetosis, "Ketosis", 16, 24},
	{StateDeepKetosis, "Deep Ketosis", 24, 48},
	{StateAutophagy, "Autophagy", 48, math.Inf(1)},
}

// Classify maps elapsed fasting hours to exactly one metabolic state.
// Negative or NaN input is treated as 0.
func Classify(hours float64) MetabolicState {
	return classifyInfo(hours).State
}

func classifyInfo(hours float64) MetabolicStateInfo {
	if math.IsNaN(hours) || hours < 0 {
		hours = 0
	}
	for _, info := range MetabolicStates {
		if hours >= info.MinHours && hours < info.MaxHours {
			return info
		}
	}
	return MetabolicStates[len(MetabolicStates)-1]
}

// StateInfo returns the display metadata of a state
func StateInfo(state MetabolicState) (MetabolicStateInfo, bool) {
	for _, info := range MetabolicStates {
		if info.State == state {
			return info, true
		}
	}
	return MetabolicStateInfo{}, false
}

// NextState returns the first state whose minimum exceeds the elapsed hours.
// ok is false once the terminal state is reached.
func NextState(hours float64) (MetabolicStateInfo, bool) {
	for _, info := range MetabolicStates {
		if info.MinHours > hours {
			return info, true
		}
	}
	return MetabolicStateInfo{}, false
}

// StateProgress returns how far (0-1) the elapsed hours are through the
// current state's interval. The terminal state always reports 1.
func StateProgress(hours float64) float64 {
	info := classifyInfo(hours)
	if math.IsInf(info.MaxHours, 1) {
		return 1
	}
	if hours < 0 {
		hours = 0
	}
	return (hours - info.MinHours) / (info.MaxHours - info.MinHours)
}

// FormatFastingTime renders hours as "{h}h {m}m"
func FormatFastingTime(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%dh %dm", int(h), int(m))
}
