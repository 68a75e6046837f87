package mediaindex

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmgilman/go/fs/core"

	"sortogram/internal/model"
	"sortogram/internal/store"
)

type Catalog interface {
	DeleteByPath(ctx context.Context, path string) (int64, error)
	Insert(ctx context.Context, e model.Entry) (int64, error)
	SetPending(ctx context.Context, id int64, pending bool) (int64, error)
}

type Scanner interface {
	Scan(path, mimeType string, done func(store.ScanResult))
}

// Synchronizer moves a file's catalog row from its old path to its new one.
type Synchronizer struct {
	catalog Catalog
	scanner Scanner
	fs      core.ReadFS
	logger  *slog.Logger

	// Deferred inserts the new row hidden and publishes it once written.
	Deferred bool

	now func() time.Time
}

func NewSynchronizer(c Catalog, sc Scanner, fsys core.ReadFS, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{
		catalog:  c,
		scanner:  sc,
		fs:       fsys,
		logger:   logger,
		Deferred: true,
		now:      time.Now,
	}
}

// Sync drops the row for oldPath and indexes newPath. Failures do not undo
// the move; each one is returned as a warning.
func (s *Synchronizer) Sync(ctx context.Context, oldPath, newPath string) []string {
	var warnings []string
	warn := func(step string, err error) {
		s.logger.Warn("catalog sync step failed", "step", step, "path", newPath, "err", err)
		warnings = append(warnings, fmt.Sprintf("media index %s failed: %v", step, err))
	}

	deleted, err := s.catalog.DeleteByPath(ctx, oldPath)
	if err != nil {
		warn("delete", err)
	} else {
		s.logger.Debug("removed old catalog rows", "path", oldPath, "rows", deleted)
	}

	mime := model.MimeType(newPath)
	entry := model.Entry{
		Path:         newPath,
		MimeType:     mime,
		DateModified: s.now(),
		Pending:      s.Deferred,
	}
	if info, err := s.fs.Stat(newPath); err == nil {
		entry.Size = info.Size()
	}

	id, err := s.catalog.Insert(ctx, entry)
	if err != nil {
		warn("insert", err)
	} else if s.Deferred {
		if _, err := s.catalog.SetPending(ctx, id, false); err != nil {
			warn("publish", err)
		}
	}

	if s.scanner != nil {
		s.scanner.Scan(newPath, mime, func(r store.ScanResult) {
			s.logger.Debug("media scan completed", "path", r.Path, "rows", r.Updated, "err", r.Err)
		})
	}
	return warnings
}
