package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmgilman/go/fs/core"

	"sortogram/internal/codes"
	"sortogram/internal/model"
)

// Finder looks up a catalog row by exact path.
type Finder interface {
	FindByPath(ctx context.Context, path string) (model.Entry, bool, error)
}

// Resolver maps a path the caller holds to a file that exists on disk.
type Resolver struct {
	catalog Finder
	fs      core.ReadFS
	logger  *slog.Logger
}

func New(catalog Finder, fsys core.ReadFS, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{catalog: catalog, fs: fsys, logger: logger}
}

// Resolve returns p itself when it exists, otherwise the path stored in the
// catalog row for p when that file exists.
func (r *Resolver) Resolve(ctx context.Context, p string) (real string, err error) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("panic resolving path", "path", p, "panic", v)
			real, err = "", codes.WithDetail(codes.UnexpectedError, "Error getting real path", fmt.Sprint(v))
		}
	}()

	if r.catalog == nil || r.fs == nil {
		return "", codes.New(codes.ContextNull, "Context is null")
	}

	ok, err := r.fs.Exists(p)
	if err != nil {
		return "", codes.Wrap(err, codes.UnexpectedError, "Error getting real path")
	}
	if ok {
		r.logger.Debug("path exists, returning as is", "path", p)
		return p, nil
	}

	e, found, err := r.catalog.FindByPath(ctx, p)
	if err != nil {
		return "", codes.Wrap(err, codes.UnexpectedError, "Error getting real path")
	}
	if found {
		r.logger.Debug("found catalog row", "path", p, "real", e.Path)
		ok, err := r.fs.Exists(e.Path)
		if err != nil {
			return "", codes.Wrap(err, codes.UnexpectedError, "Error getting real path")
		}
		if ok {
			return e.Path, nil
		}
	}

	r.logger.Warn("could not find real path", "path", p)
	return "", codes.New(codes.PathNotFound, "Could not find real path for file")
}
