package hash

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jmgilman/go/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_KnownDigests(t *testing.T) {
	r, err := Sum(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", r.MD5)
	assert.Equal(t, int64(0), r.Size)

	r, err = Sum(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", r.MD5)
	assert.Equal(t, int64(5), r.Size)
	assert.Len(t, r.MD5, 32)
}

func TestFingerprint_Deterministic(t *testing.T) {
	fsys := billy.NewMemory()
	data := bytes.Repeat([]byte("abc"), 10_000) // spans several buffers
	require.NoError(t, fsys.WriteFile("/pics/a.jpg", data, 0o644))

	first, err := Fingerprint(fsys, "/pics/a.jpg")
	require.NoError(t, err)
	second, err := Fingerprint(fsys, "/pics/a.jpg")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFilesMatch(t *testing.T) {
	fsys := billy.NewMemory()
	require.NoError(t, fsys.WriteFile("/a.jpg", []byte("same bytes"), 0o644))
	require.NoError(t, fsys.WriteFile("/other/name.png", []byte("same bytes"), 0o644))
	require.NoError(t, fsys.WriteFile("/diff.jpg", []byte("same bytez"), 0o644))
	require.NoError(t, fsys.WriteFile("/short.jpg", []byte("same"), 0o644))

	t.Run("identical bytes different names", func(t *testing.T) {
		ok, err := FilesMatch(fsys, "/a.jpg", "/other/name.png")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = FilesMatch(fsys, "/other/name.png", "/a.jpg")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("single byte difference", func(t *testing.T) {
		ok, err := FilesMatch(fsys, "/a.jpg", "/diff.jpg")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("size mismatch", func(t *testing.T) {
		ok, err := FilesMatch(fsys, "/a.jpg", "/short.jpg")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FilesMatch(fsys, "/a.jpg", "/missing.jpg")
		assert.Error(t, err)
	})
}
