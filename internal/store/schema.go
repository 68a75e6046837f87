package store

import "database/sql"

func Init(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`
CREATE TABLE IF NOT EXISTS images (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	data TEXT NOT NULL, -- absolute path
	mime_type TEXT NOT NULL DEFAULT 'image/*',
	size INTEGER NOT NULL DEFAULT 0,
	date_modified INTEGER NOT NULL DEFAULT 0, -- unix seconds
	is_pending INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`,
		`CREATE INDEX IF NOT EXISTS images_data ON images(data);`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}

	return nil
}
