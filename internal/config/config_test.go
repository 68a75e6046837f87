package config

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sortogram/internal/permission"
)

func parse(args ...string) (Config, error) {
	fs := flag.NewFlagSet("sortogram", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return Parse(fs, args)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse()
	require.NoError(t, err)

	assert.Equal(t, "./sortogram.db", cfg.DBPath)
	assert.Equal(t, AccessLegacy, cfg.Access)
	assert.False(t, cfg.Granted)
	assert.True(t, cfg.DeferredVisibility)
	assert.Empty(t, cfg.IndexRoot)
	assert.Empty(t, cfg.Platform)

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, l)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parse(
		"-db", "/data/catalog.db",
		"-access", "manage-all",
		"-granted",
		"-deferred-visibility=false",
		"-index-root", "/sdcard/DCIM",
		"-platform", "Android 14",
		"-log-level", "debug",
	)
	require.NoError(t, err)

	assert.Equal(t, "/data/catalog.db", cfg.DBPath)
	assert.Equal(t, AccessManageAll, cfg.Access)
	assert.True(t, cfg.Granted)
	assert.False(t, cfg.DeferredVisibility)
	assert.Equal(t, "/sdcard/DCIM", cfg.IndexRoot)
	assert.Equal(t, "Android 14", cfg.Platform)
	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown access", []string{"-access", "root"}},
		{"empty db", []string{"-db", ""}},
		{"bad level", []string{"-log-level", "loud"}},
		{"unknown flag", []string{"-workers", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCapability(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		access  string
		granted bool
		perm    string
		want    permission.Access
	}{
		{AccessManageAll, false, permission.PermManageAllFiles, permission.Requestable},
		{AccessManageAll, true, permission.PermManageAllFiles, permission.Granted},
		{AccessWriteStorage, false, permission.PermWriteStorage, permission.Requestable},
		{AccessWriteStorage, true, permission.PermWriteStorage, permission.Granted},
		{AccessLegacy, false, "", permission.Granted},
		{"bogus", false, "", permission.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.access, func(t *testing.T) {
			c := Config{Access: tt.access, Granted: tt.granted}.Capability(permission.NewGrants())
			assert.Equal(t, tt.want, c.Probe(ctx))
			assert.Equal(t, tt.perm, c.Permission())
		})
	}
}
