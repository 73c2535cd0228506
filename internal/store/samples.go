package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sampleColumns = `id, date, source, sleep_duration_minutes, deep_sleep_minutes,
	rem_sleep_minutes, sleep_efficiency, hrv_avg, resting_hr, respiratory_rate,
	steps, active_calories, workout_minutes, nutrition_score, created_at`

// UpsertSample inserts or replaces the sample for (date, source)
func (db *DB) UpsertSample(m *MetricSample) error {
	if _, err := time.Parse("2006-01-02", m.Date); err != nil {
		return fmt.Errorf("invalid sample date %q: %w", m.Date, err)
	}

	_, err := db.Exec(`
		INSERT INTO metric_samples (
			date, source, sleep_duration_minutes, deep_sleep_minutes,
			rem_sleep_minutes, sleep_efficiency, hrv_avg, resting_hr,
			respiratory_rate, steps, active_calories, workout_minutes,
			nutrition_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date, source) DO UPDATE SET
			sleep_duration_minutes = excluded.sleep_duration_minutes,
			deep_sleep_minutes = excluded.deep_sleep_minutes,
			rem_sleep_minutes = excluded.rem_sleep_minutes,
			sleep_efficiency = excluded.sleep_efficiency,
			hrv_avg = excluded.hrv_avg,
			resting_hr = excluded.resting_hr,
			respiratory_rate = excluded.respiratory_rate,
			steps = excluded.steps,
			active_calories = excluded.active_calories,
			workout_minutes = excluded.workout_minutes,
			nutrition_score = excluded.nutrition_score
	`,
		m.Date, string(m.Source), m.SleepDurationMinutes, m.DeepSleepMinutes,
		m.RemSleepMinutes, m.SleepEfficiency, m.HRVAvg, m.RestingHR,
		m.RespiratoryRate, m.Steps, m.ActiveCalories, m.WorkoutMinutes,
		m.NutritionScore,
	)
	return err
}

// GetSample retrieves the sample recorded for a date and source
func (db *DB) GetSample(date string, source Source) (*MetricSample, error) {
	row := db.QueryRow(`
		SELECT `+sampleColumns+`
		FROM metric_samples
		WHERE date = ? AND source = ?
	`, date, string(source))

	m, err := scanSample(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSampleNotFound
	}
	return m, err
}

// ListSamples returns samples with from <= date <= to, oldest first.
// Empty bounds are open.
func (db *DB) ListSamples(from, to string) ([]MetricSample, error) {
	if from == "" {
		from = "0000-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}

	rows, err := db.Query(`
		SELECT `+sampleColumns+`
		FROM metric_samples
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, source ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []MetricSample
	for rows.Next() {
		m, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, *m)
	}
	return samples, rows.Err()
}

// DeleteSample removes the sample for a date and source
func (db *DB) DeleteSample(date string, source Source) error {
	res, err := db.Exec(`DELETE FROM metric_samples WHERE date = ? AND source = ?`, date, string(source))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSampleNotFound
	}
	return nil
}

// CountSamples returns the number of stored samples
func (db *DB) CountSamples() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM metric_samples").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSample scans one sample row, mapping NULL columns to nil pointers
func scanSample(row rowScanner) (*MetricSample, error) {
	var m MetricSample
	var source string
	var steps sql.NullInt64
	var createdAt sql.NullString

	err := row.Scan(
		&m.ID, &m.Date, &source, &m.SleepDurationMinutes, &m.DeepSleepMinutes,
		&m.RemSleepMinutes, &m.SleepEfficiency, &m.HRVAvg, &m.RestingHR, &m.RespiratoryRate,
		&steps, &m.ActiveCalories, &m.WorkoutMinutes, &m.NutritionScore, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	m.Source = Source(source)
	if steps.Valid {
		s := int(steps.Int64)
		m.Steps = &s
	}
	if createdAt.Valid {
		// SQLite CURRENT_TIMESTAMP format
		if t, err := time.Parse("2006-01-02 15:04:05", createdAt.String); err == nil {
			m.CreatedAt = t
		}
	}
	return &m, nil
}
