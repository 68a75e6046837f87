package mediaindex

import (
	"context"
	"io/fs"

	"github.com/jmgilman/go/fs/core"

	"sortogram/internal/model"
)

type Indexer interface {
	Catalog
	CountByPath(ctx context.Context, path string) (int64, error)
}

// DiscoverAndInsert walks root and inserts a visible row for every supported
// image that has none yet. It returns how many rows were added.
func DiscoverAndInsert(ctx context.Context, fsys core.FS, idx Indexer, root string) (int, error) {
	// skip if root doesn't exist
	if ok, err := fsys.Exists(root); err != nil || !ok {
		return 0, err
	}

	added := 0
	err := fsys.Walk(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() || !model.IsSupported(d.Name()) {
			return nil
		}

		n, err := idx.CountByPath(ctx, path)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		row := model.Entry{
			Path:         path,
			MimeType:     model.MimeType(path),
			Size:         info.Size(),
			DateModified: info.ModTime(),
		}
		if _, err := idx.Insert(ctx, row); err != nil {
			return err
		}
		added++
		return nil
	})
	return added, err
}
