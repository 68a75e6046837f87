package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmgilman/go/fs/core"
	"golang.org/x/sys/unix"

	"sortogram/internal/hash"
	"sortogram/internal/model"
)

// Precondition failures. Nothing has been written when one of these is returned.
var (
	ErrSourceNotFound  = errors.New("source file does not exist")
	ErrDestDir         = errors.New("could not create destination directory")
	ErrDestExists      = errors.New("destination file already exists")
	ErrUnsupportedType = errors.New("file type not supported")
)

// Transfer failures. The destination has been removed when one of these is returned.
var (
	ErrSourceNotWritable = errors.New("source file is not writable")
	ErrIncompleteCopy    = errors.New("file copy was incomplete")
	ErrContentMismatch   = errors.New("file contents do not match")
	ErrSourceDelete      = errors.New("could not delete source file")
)

const progressStep = 1 << 20

// MoveError is returned for any failure after the preconditions passed.
type MoveError struct {
	Src, Dst string
	Err      error
}

func (e *MoveError) Error() string { return e.Err.Error() }
func (e *MoveError) Unwrap() error { return e.Err }

type Engine struct {
	fs     core.FS
	logger *slog.Logger

	writable func(path string) bool
	remove   func(path string) error
}

func New(fsys core.FS, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{fs: fsys, logger: logger, remove: fsys.Remove}
	e.writable = e.modeWritable
	if fsys.Type() == core.FSTypeLocal {
		e.writable = accessWritable
	}
	return e
}

// Check validates a move without touching the source. It may create the
// destination's parent directory.
func (e *Engine) Check(src, dst string) error {
	info, err := e.fs.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrSourceNotFound
		}
		return err
	}
	if info.IsDir() {
		return ErrSourceNotFound
	}

	dir := path.Dir(dst)
	if _, err := e.fs.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrDestDir, err)
		}
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrDestDir, err)
		}
		e.logger.Debug("created destination directory", "dir", dir)
	}

	exists, err := e.fs.Exists(dst)
	if err != nil {
		return err
	}
	if exists {
		return ErrDestExists
	}

	if !model.IsSupported(src) {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, model.Extension(src))
	}
	return nil
}

// Move checks preconditions, then copies src to dst, verifies the copy and
// deletes src. On any failure after the copy has started dst is removed.
func (e *Engine) Move(ctx context.Context, src, dst string) error {
	if err := e.Check(src, dst); err != nil {
		return err
	}
	if err := e.transfer(ctx, src, dst); err != nil {
		return &MoveError{Src: src, Dst: dst, Err: err}
	}
	return nil
}

func (e *Engine) transfer(ctx context.Context, src, dst string) (err error) {
	start := time.Now()

	if !e.writable(src) {
		return ErrSourceNotWritable
	}

	created := false
	defer func() {
		if err != nil && created {
			e.discard(dst)
		}
	}()

	n, err := e.copyDurable(ctx, src, dst, &created)
	if err != nil {
		e.logger.Error("copy failed", "src", src, "dst", dst, "err", err)
		return err
	}

	srcInfo, err := e.fs.Stat(src)
	if err != nil {
		return err
	}
	dstInfo, err := e.fs.Stat(dst)
	if err != nil {
		return err
	}
	if dstInfo.Size() != srcInfo.Size() {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrIncompleteCopy, dstInfo.Size(), srcInfo.Size())
	}

	match, err := hash.FilesMatch(e.fs, src, dst)
	if err != nil {
		return fmt.Errorf("hash verification failed: %w", err)
	}
	if !match {
		return ErrContentMismatch
	}

	if err := e.remove(src); err != nil {
		return fmt.Errorf("%w: %v", ErrSourceDelete, err)
	}

	e.logger.Info("file moved",
		"src", src, "dst", dst,
		"bytes", humanize.Bytes(uint64(n)),
		"dur", time.Since(start),
	)
	return nil
}

// copyDurable streams src into a new dst and forces it to storage before
// closing. created is set as soon as dst exists.
func (e *Engine) copyDurable(ctx context.Context, src, dst string, created *bool) (int64, error) {
	in, err := e.fs.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	total := int64(0)
	if info, err := in.Stat(); err == nil {
		total = info.Size()
	}

	out, err := e.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	*created = true

	pw := &progressWriter{ctx: ctx, w: out, total: total, logger: e.logger, dst: dst}
	n, copyErr := io.CopyBuffer(pw, in, make([]byte, hash.BufferSize))
	syncErr := syncFile(out)
	closeErr := out.Close()

	if copyErr != nil {
		return n, copyErr
	}
	if syncErr != nil {
		return n, fmt.Errorf("sync: %w", syncErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("close: %w", closeErr)
	}
	return n, nil
}

func (e *Engine) discard(dst string) {
	if err := e.fs.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.logger.Warn("could not remove partial copy", "dst", dst, "err", err)
	}
}

func (e *Engine) modeWritable(p string) bool {
	info, err := e.fs.Stat(p)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o200 != 0
}

func accessWritable(p string) bool {
	return unix.Access(p, unix.W_OK) == nil
}

func syncFile(f core.File) error {
	if s, ok := f.(core.Syncer); ok {
		return s.Sync()
	}
	return nil
}

// progressWriter counts bytes for debug logging and stops the copy once ctx
// is done.
type progressWriter struct {
	ctx    context.Context
	w      io.Writer
	logger *slog.Logger
	dst    string

	total   int64
	written int64
	logged  int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.written-p.logged >= progressStep {
		p.logged = p.written
		pct := 100.0
		if p.total > 0 {
			pct = float64(p.written) * 100 / float64(p.total)
		}
		p.logger.Debug("copy progress",
			"dst", p.dst,
			"bytes", humanize.Bytes(uint64(p.written)),
			"pct", fmt.Sprintf("%.1f", pct),
		)
	}
	return n, err
}
