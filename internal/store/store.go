package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sortogram/internal/model"

	_ "modernc.org/sqlite"
)

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// the pragmas set in Init only hold for the connection they ran on
	db.SetMaxOpenConns(1)
	return db, nil
}

// Catalog is the media index: one row per indexed image path.
type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// DeleteByPath removes every row whose path equals p and reports how many went.
func (c *Catalog) DeleteByPath(ctx context.Context, p string) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM images WHERE data = ?`, p)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *Catalog) Insert(ctx context.Context, e model.Entry) (int64, error) {
	res, err := c.db.ExecContext(ctx, `
INSERT INTO images (data, mime_type, size, date_modified, is_pending)
VALUES (?, ?, ?, ?, ?)
`, e.Path, e.MimeType, e.Size, e.DateModified.Unix(), boolInt(e.Pending))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SetPending flips the visibility flag of row id.
func (c *Catalog) SetPending(ctx context.Context, id int64, pending bool) (int64, error) {
	res, err := c.db.ExecContext(ctx, `
UPDATE images
SET is_pending = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, boolInt(pending), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Refresh updates size and modification time of the rows for p, as a rescan would.
func (c *Catalog) Refresh(ctx context.Context, p string, size int64, mod time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `
UPDATE images
SET size = ?, date_modified = ?, updated_at = CURRENT_TIMESTAMP
WHERE data = ?
`, size, mod.Unix(), p)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindByPath returns the newest row whose path equals p.
func (c *Catalog) FindByPath(ctx context.Context, p string) (model.Entry, bool, error) {
	var (
		e       model.Entry
		mod     int64
		pending int64
	)
	err := c.db.QueryRowContext(ctx, `
SELECT id, data, mime_type, size, date_modified, is_pending
FROM images
WHERE data = ?
ORDER BY id DESC
LIMIT 1
`, p).Scan(&e.ID, &e.Path, &e.MimeType, &e.Size, &mod, &pending)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, false, nil
	}
	if err != nil {
		return model.Entry{}, false, err
	}
	e.DateModified = time.Unix(mod, 0)
	e.Pending = pending != 0
	return e, true, nil
}

func (c *Catalog) CountByPath(ctx context.Context, p string) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE data = ?`, p).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
