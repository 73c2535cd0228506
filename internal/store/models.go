package store

import "time"

// Source identifies where a metric sample came from
type Source string

const (
	SourceOura        Source = "oura"
	SourceWhoop       Source = "whoop"
	SourceAppleHealth Source = "apple_health"
	SourceManual      Source = "manual"
)

// Valid reports whether s is a known source
func (s Source) Valid() bool {
	switch s {
	case SourceOura, SourceWhoop, SourceAppleHealth, SourceManual:
		return true
	}
	return false
}

// MetricSample is one source-tagged observation for a date.
// Every measurement is optional; nil means "not recorded".
type MetricSample struct {
	ID     int64  `db:"id" json:"id,omitempty"`
	Date   string `db:"date" json:"date"` // YYYY-MM-DD
	Source Source `db:"source" json:"source"`

	// Sleep
	SleepDurationMinutes *float64 `db:"sleep_duration_minutes" json:"sleep_duration_minutes,omitempty"`
	DeepSleepMinutes     *float64 `db:"deep_sleep_minutes" json:"deep_sleep_minutes,omitempty"`
	RemSleepMinutes      *float64 `db:"rem_sleep_minutes" json:"rem_sleep_minutes,omitempty"`
	SleepEfficiency      *float64 `db:"sleep_efficiency" json:"sleep_efficiency,omitempty"` // percent

	// Recovery
	HRVAvg          *float64 `db:"hrv_avg" json:"hrv_avg,omitempty"`       // ms
	RestingHR       *float64 `db:"resting_hr" json:"resting_hr,omitempty"` // bpm
	RespiratoryRate *float64 `db:"respiratory_rate" json:"respiratory_rate,omitempty"`

	// Activity
	Steps          *int     `db:"steps" json:"steps,omitempty"`
	ActiveCalories *float64 `db:"active_calories" json:"active_calories,omitempty"`
	WorkoutMinutes *float64 `db:"workout_minutes" json:"workout_minutes,omitempty"`

	// Self-reported 0-100 nutrition rating
	NutritionScore *float64 `db:"nutrition_score" json:"nutrition_score,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}

// IsEmpty reports whether no measurement is present
func (m MetricSample) IsEmpty() bool {
	return m.SleepDurationMinutes == nil && m.DeepSleepMinutes == nil &&
		m.RemSleepMinutes == nil && m.SleepEfficiency == nil &&
		m.HRVAvg == nil && m.RestingHR == nil && m.RespiratoryRate == nil &&
		m.Steps == nil && m.ActiveCalories == nil && m.WorkoutMinutes == nil &&
		m.NutritionScore == nil
}

// Merge overlays the present fields of other onto m.
// Used to combine samples from several sources for the same date.
func (m MetricSample) Merge(other MetricSample) MetricSample {
	out := m
	if other.SleepDurationMinutes != nil {
		out.SleepDurationMinutes = other.SleepDurationMinutes
	}
	if other.DeepSleepMinutes != nil {
		out.DeepSleepMinutes = other.DeepSleepMinutes
	}
	if other.RemSleepMinutes != nil {
		out.RemSleepMinutes = other.RemSleepMinutes
	}
	if other.SleepEfficiency != nil {
		out.SleepEfficiency = other.SleepEfficiency
	}
	if other.HRVAvg != nil {
		out.HRVAvg = other.HRVAvg
	}
	if other.RestingHR != nil {
		out.RestingHR = other.RestingHR
	}
	if other.RespiratoryRate != nil {
		out.RespiratoryRate = other.RespiratoryRate
	}
	if other.Steps != nil {
		out.Steps = other.Steps
	}
	if other.ActiveCalories != nil {
		out.ActiveCalories = other.ActiveCalories
	}
	if other.WorkoutMinutes != nil {
		out.WorkoutMinutes = other.WorkoutMinutes
	}
	if other.NutritionScore != nil {
		out.NutritionScore = other.NutritionScore
	}
	return out
}

// BiomarkerPanel is a set of lab values measured on one date
type BiomarkerPanel struct {
	TestDate string             `json:"test_date"` // YYYY-MM-DD
	Source   string             `json:"source,omitempty"`
	Values   map[string]float64 `json:"values"` // marker key -> value
}
