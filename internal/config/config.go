package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"sortogram/internal/permission"
)

// Storage access tiers.
const (
	AccessManageAll    = "manage-all"
	AccessWriteStorage = "write-storage"
	AccessLegacy       = "legacy"
)

type Config struct {
	DBPath string

	// Access selects the storage permission model. Granted says whether its
	// grant is already held at start-up.
	Access  string
	Granted bool

	DeferredVisibility bool
	IndexRoot          string

	Platform string
	LogLevel string
}

func FromFlags() Config {
	cfg, err := Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

// Parse reads cfg from args using fs and validates it.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.DBPath, "db", "./sortogram.db", "path to sqlite media catalog")
	fs.StringVar(&cfg.Access, "access", AccessLegacy, "storage access tier: manage-all, write-storage or legacy")
	fs.BoolVar(&cfg.Granted, "granted", false, "storage grant already held at start-up")
	fs.BoolVar(&cfg.DeferredVisibility, "deferred-visibility", true, "insert catalog rows hidden and publish them once written")
	fs.StringVar(&cfg.IndexRoot, "index-root", "", "directory to index into the catalog at start-up")
	fs.StringVar(&cfg.Platform, "platform", "", "platform version override (default from uname)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: -db is required")
	}
	switch c.Access {
	case AccessManageAll, AccessWriteStorage, AccessLegacy:
	default:
		return fmt.Errorf("config: unknown -access %q", c.Access)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: bad -log-level %q", c.LogLevel)
	}
	return l, nil
}

// Capability builds the access model for c, recording the start-up grant in
// grants.
func (c Config) Capability(grants *permission.Grants) permission.Capability {
	switch c.Access {
	case AccessManageAll:
		grants.Set(permission.PermManageAllFiles, c.Granted)
		return permission.ManageAllFiles{Grants: grants}
	case AccessWriteStorage:
		grants.Set(permission.PermWriteStorage, c.Granted)
		return permission.WriteStorage{Grants: grants}
	case AccessLegacy:
		return permission.Legacy{}
	default:
		return permission.Denied{}
	}
}
