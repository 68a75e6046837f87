package hash

import (
	"crypto"
	_ "crypto/md5"
	"encoding/hex"
	"io"

	"github.com/jmgilman/go/fs/core"
)

// util package to fingerprint file content

const BufferSize = 8 * 1024

func init() {
	if !crypto.MD5.Available() {
		panic("hash: MD5 digest is not linked into the binary")
	}
}

type Result struct {
	Size int64
	MD5  string // 32 lowercase hex chars
}

// Compute streams the file at path through MD5.
func Compute(fsys core.ReadFS, path string) (Result, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	return Sum(f)
}

// Sum hashes everything read from r.
func Sum(r io.Reader) (Result, error) {
	h := crypto.MD5.New()
	buf := make([]byte, BufferSize)
	n, err := io.CopyBuffer(h, r, buf)
	if err != nil {
		return Result{}, err
	}
	return Result{Size: n, MD5: hex.EncodeToString(h.Sum(nil))}, nil
}

// Fingerprint returns the hex MD5 of the file at path.
func Fingerprint(fsys core.ReadFS, path string) (string, error) {
	r, err := Compute(fsys, path)
	if err != nil {
		return "", err
	}
	return r.MD5, nil
}

// FilesMatch compares sizes first and only hashes when they agree.
func FilesMatch(fsys core.ReadFS, a, b string) (bool, error) {
	ai, err := fsys.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := fsys.Stat(b)
	if err != nil {
		return false, err
	}
	if ai.Size() != bi.Size() {
		return false, nil
	}

	ah, err := Fingerprint(fsys, a)
	if err != nil {
		return false, err
	}
	bh, err := Fingerprint(fsys, b)
	if err != nil {
		return false, err
	}
	return ah == bh, nil
}
