package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Client-local state (key-value store for tracker documents)
		`CREATE TABLE IF NOT EXISTS kv_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Metric samples (one row per date and source)
		`CREATE TABLE IF NOT EXISTS metric_samples (
			id INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			source TEXT NOT NULL,
			sleep_duration_minutes REAL,
			deep_sleep_minutes REAL,
			rem_sleep_minutes REAL,
			sleep_efficiency REAL,
			hrv_avg REAL,
			resting_hr REAL,
			respiratory_rate REAL,
			steps INTEGER,
			active_calories REAL,
			workout_minutes REAL,
			nutrition_score REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (date, source)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_metric_samples_date ON metric_samples(date)`,

		// Biomarker readings (lab panels)
		`CREATE TABLE IF NOT EXISTS biomarker_readings (
			test_date TEXT NOT NULL,
			marker TEXT NOT NULL,
			value REAL NOT NULL,
			source TEXT,
			PRIMARY KEY (test_date, marker)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_biomarker_readings_date ON biomarker_readings(test_date)`,

		// Cached remote gateway token (single row)
		`CREATE TABLE IF NOT EXISTS gateway_auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			token_type TEXT NOT NULL DEFAULT '',
			expires_at INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
