package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmgilman/go/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sortogram/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Init(db))
	return db
}

func TestInit_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Init(db))
}

func TestCatalog_InsertFindDelete(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(openTestDB(t))
	mod := time.Unix(1_700_000_000, 0)

	id, err := c.Insert(ctx, model.Entry{
		Path: "/sdcard/DCIM/a.jpg", MimeType: "image/jpeg", Size: 42, DateModified: mod, Pending: true,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	e, ok, err := c.FindByPath(ctx, "/sdcard/DCIM/a.jpg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "image/jpeg", e.MimeType)
	assert.Equal(t, int64(42), e.Size)
	assert.True(t, e.DateModified.Equal(mod))
	assert.True(t, e.Pending)

	n, err := c.SetPending(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	e, _, err = c.FindByPath(ctx, "/sdcard/DCIM/a.jpg")
	require.NoError(t, err)
	assert.False(t, e.Pending)

	n, err = c.DeleteByPath(ctx, "/sdcard/DCIM/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err = c.FindByPath(ctx, "/sdcard/DCIM/a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalog_DeleteUnindexedIsNotAnError(t *testing.T) {
	c := NewCatalog(openTestDB(t))

	n, err := c.DeleteByPath(context.Background(), "/never/indexed.png")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCatalog_PathEqualityOnly(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(openTestDB(t))
	_, err := c.Insert(ctx, model.Entry{Path: "/sdcard/a.jpg", MimeType: "image/jpeg"})
	require.NoError(t, err)
	_, err = c.Insert(ctx, model.Entry{Path: "/sdcard/a.jpg.bak", MimeType: "image/*"})
	require.NoError(t, err)

	n, err := c.DeleteByPath(ctx, "/sdcard/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := c.CountByPath(ctx, "/sdcard/a.jpg.bak")
	require.NoError(t, err)
	assert.Equal(t, int64(1), left)
}

func TestScanner_RefreshesMetadata(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(openTestDB(t))
	fsys := billy.NewMemory()
	require.NoError(t, fsys.MkdirAll("/sdcard/out", 0o755))
	require.NoError(t, fsys.WriteFile("/sdcard/out/a.png", []byte("12345"), 0o644))

	_, err := c.Insert(ctx, model.Entry{Path: "/sdcard/out/a.png", MimeType: "image/png"})
	require.NoError(t, err)

	done := make(chan ScanResult, 1)
	NewScanner(c, fsys, nil).Scan("/sdcard/out/a.png", "image/png", func(r ScanResult) { done <- r })

	select {
	case r := <-done:
		require.NoError(t, r.Err)
		assert.Equal(t, int64(1), r.Updated)
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not complete")
	}

	e, ok, err := c.FindByPath(ctx, "/sdcard/out/a.png")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(5), e.Size)
}

func TestScanner_MissingFileReportsError(t *testing.T) {
	c := NewCatalog(openTestDB(t))

	done := make(chan ScanResult, 1)
	NewScanner(c, billy.NewMemory(), nil).Scan("/gone.jpg", "image/jpeg", func(r ScanResult) { done <- r })

	select {
	case r := <-done:
		assert.Error(t, r.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not complete")
	}
}
