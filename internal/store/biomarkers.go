package store

import (
	"fmt"
	"time"
)

// SavePanel stores every value of a biomarker panel, replacing earlier
// readings of the same marker on the same date
func (db *DB) SavePanel(p *BiomarkerPanel) error {
	if _, err := time.Parse("2006-01-02", p.TestDate); err != nil {
		return fmt.Errorf("invalid test date %q: %w", p.TestDate, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for marker, value := range p.Values {
		_, err := tx.Exec(`
			INSERT INTO biomarker_readings (test_date, marker, value, source)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(test_date, marker) DO UPDATE SET
				value = excluded.value,
				source = excluded.source
		`, p.TestDate, marker, value, p.Source)
		if err != nil {
			return fmt.Errorf("saving %s: %w", marker, err)
		}
	}

	return tx.Commit()
}

// LatestPanel returns the most recent reading of every marker on or before
// the given date. An empty date means "latest overall".
func (db *DB) LatestPanel(onOrBefore string) (*BiomarkerPanel, error) {
	if onOrBefore == "" {
		onOrBefore = "9999-12-31"
	}

	rows, err := db.Query(`
		SELECT r.test_date, r.marker, r.value
		FROM biomarker_readings r
		JOIN (
			SELECT marker, MAX(test_date) AS test_date
			FROM biomarker_readings
			WHERE test_date <= ?
			GROUP BY marker
		) latest ON latest.marker = r.marker AND latest.test_date = r.test_date
		ORDER BY r.marker
	`, onOrBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	panel := &BiomarkerPanel{Values: make(map[string]float64)}
	for rows.Next() {
		var date, marker string
		var value float64
		if err := rows.Scan(&date, &marker, &value); err != nil {
			return nil, err
		}
		panel.Values[marker] = value
		if date > panel.TestDate {
			panel.TestDate = date
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(panel.Values) == 0 {
		return nil, ErrPanelNotFound
	}
	return panel, nil
}
