package analysis

import (
	"math"

	"longevity/internal/store"
)

// present returns the value behind p when it was recorded.
// Wearables report 0 for "no reading", so non-positive values count as absent.
func present(p *float64) (float64, bool) {
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}

func intPresent(p *int) (float64, bool) {
	if p == nil || *p <= 0 {
		return 0, false
	}
	return float64(*p), true
}

func clampScore(score float64) int {
	s := int(math.Round(math.Min(100, score)))
	if s < 0 {
		return 0
	}
	return s
}

// SleepScore scores a night's sleep from 0-100.
// Duration (40 pts) + deep sleep share (30 pts) + REM share (30 pts).
// Returns nil when duration is missing: the stage shares need it.
func SleepScore(m store.MetricSample) *int {
	duration, ok := present(m.SleepDurationMinutes)
	if !ok {
		return nil
	}

	var score float64

	// Duration: 7-9 hours optimal (420-540 minutes)
	switch {
	case duration >= 420 && duration <= 540:
		score += 40
	case duration >= 360 && duration < 420:
		score += 30
	case duration > 540 && duration <= 600:
		score += 30
	default:
		score += 15
	}

	// Deep sleep: 20-25% of total optimal
	if deep, ok := present(m.DeepSleepMinutes); ok {
		score += stageShareScore(deep / duration * 100)
	}

	// REM: same banding as deep sleep
	if rem, ok := present(m.RemSleepMinutes); ok {
		score += stageShareScore(rem / duration * 100)
	}

	s := clampScore(score)
	return &s
}

// stageShareScore bands a sleep-stage percentage of total duration
func stageShareScore(pct float64) float64 {
	switch {
	case pct >= 20 && pct <= 25:
		return 30
	case pct >= 15 && pct < 20:
		return 20
	case pct > 25 && pct <= 30:
		return 20
	default:
		return 10
	}
}

// ActivityScore scores daily movement from 0-100.
// Steps (35 pts) + active calories (35 pts) + workout minutes (30 pts).
// Missing inputs contribute nothing; nil when all three are missing.
func ActivityScore(m store.MetricSample) *int {
	steps, hasSteps := intPresent(m.Steps)
	calories, hasCalories := present(m.ActiveCalories)
	workout, hasWorkout := present(m.WorkoutMinutes)

	if !hasSteps && !hasCalories && !hasWorkout {
		return nil
	}

	var score float64

	// Steps: 10,000 optimal
	if hasSteps {
		switch {
		case steps >= 10000:
			score += 35
		case steps >= 7500:
			score += 28
		case steps >= 5000:
			score += 20
		default:
			score += math.Round(steps / 5000 * 15)
		}
	}

	// Active calories: 500+ optimal
	if hasCalories {
		switch {
		case calories >= 500:
			score += 35
		case calories >= 300:
			score += 28
		case calories >= 150:
			score += 20
		default:
			score += math.Round(calories / 150 * 15)
		}
	}

	// Workout minutes: 30-90 optimal, more may signal overtraining
	if hasWorkout {
		switch {
		case workout >= 30 && workout <= 90:
			score += 30
		case workout > 90:
			score += 25
		case workout >= 15:
			score += 20
		default:
			score += 10
		}
	}

	s := clampScore(score)
	return &s
}

// RecoveryScore scores readiness from HRV, resting HR and respiratory rate.
// Each present factor is banded, the bands are averaged and rescaled so a
// top HRV or resting-HR band maps to 100. Nil when no factor is present.
func RecoveryScore(m store.MetricSample) *int {
	var score float64
	factors := 0

	// HRV: higher is generally better
	if hrv, ok := present(m.HRVAvg); ok {
		switch {
		case hrv >= 65:
			score += 40
		case hrv >= 50:
			score += 32
		case hrv >= 35:
			score += 24
		default:
			score += 15
		}
		factors++
	}

	// Resting HR: 50-60 optimal for fit adults
	if rhr, ok := present(m.RestingHR); ok {
		switch {
		case rhr >= 50 && rhr <= 60:
			score += 40
		case rhr >= 45 && rhr <= 70:
			score += 32
		case rhr <= 75:
			score += 24
		default:
			score += 15
		}
		factors++
	}

	// Respiratory rate: 12-16 optimal, up to 20 normal
	if rr, ok := present(m.RespiratoryRate); ok {
		switch {
		case rr >= 12 && rr <= 16:
			score += 20
		case rr <= 20:
			score += 15
		default:
			score += 8
		}
		factors++
	}

	if factors == 0 {
		return nil
	}

	s := clampScore(score / float64(factors) * (100.0 / 40.0))
	return &s
}

// NutritionScore passes through a self-reported 0-100 nutrition rating
func NutritionScore(m store.MetricSample) *int {
	v, ok := present(m.NutritionScore)
	if !ok {
		return nil
	}
	s := clampScore(v)
	return &s
}

// ScoreDescription returns a human-readable description of a 0-100 score
func ScoreDescription(score int) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 55:
		return "Fair"
	case score >= 40:
		return "Needs attention"
	default:
		return "Poor"
	}
}
