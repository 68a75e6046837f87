package store

import (
	"context"
	"log/slog"

	"github.com/jmgilman/go/fs/core"
)

type ScanResult struct {
	Path    string
	Updated int64 // catalog rows refreshed
	Err     error
}

// Scanner re-reads file metadata into the catalog in the background, like
// the host media scanner does after a file lands.
type Scanner struct {
	catalog *Catalog
	fs      core.ReadFS
	logger  *slog.Logger
}

func NewScanner(c *Catalog, fsys core.ReadFS, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{catalog: c, fs: fsys, logger: logger}
}

// Scan returns immediately. done, if non-nil, is called from the scan goroutine.
func (s *Scanner) Scan(path, mimeType string, done func(ScanResult)) {
	go func() {
		res := s.scan(context.Background(), path)
		if res.Err != nil {
			s.logger.Warn("media scan failed", "path", path, "mime", mimeType, "err", res.Err)
		}
		if done != nil {
			done(res)
		}
	}()
}

func (s *Scanner) scan(ctx context.Context, path string) ScanResult {
	info, err := s.fs.Stat(path)
	if err != nil {
		return ScanResult{Path: path, Err: err}
	}
	n, err := s.catalog.Refresh(ctx, path, info.Size(), info.ModTime())
	return ScanResult{Path: path, Updated: n, Err: err}
}
