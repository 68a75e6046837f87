package model

import (
	"path/filepath"
	"strings"
	"time"
)

// This package models move requests and image rows in the media catalog

type OpState string

const (
	StateIdle               OpState = "IDLE"
	StateAwaitingPermission OpState = "AWAITING_PERMISSION"
	StateResumedGranted     OpState = "RESUMED_GRANTED"
	StateResolvedDenied     OpState = "RESOLVED_DENIED"
)

type MoveRequest struct {
	SourcePath string
	DestPath   string
}

type Entry struct {
	ID           int64
	Path         string
	MimeType     string
	Size         int64
	DateModified time.Time
	Pending      bool // hidden from other readers until finalized
}

const WildcardMime = "image/*"

var supported = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// Extension returns the lowercased text after the last dot in path, or "".
func Extension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

func IsSupported(path string) bool {
	_, ok := supported[Extension(path)]
	return ok
}

// MimeType maps the extension of path to an image MIME type.
func MimeType(path string) string {
	if m, ok := supported[Extension(path)]; ok {
		return m
	}
	return WildcardMime
}
