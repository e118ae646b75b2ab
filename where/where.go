// Package where resolves application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/lectern-player/lectern/constant"
	"github.com/lectern-player/lectern/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "LECTERN_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the configuration directory, honouring LECTERN_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Lectern))
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Lectern))
}

// Logs resolves the directory holding dated log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Positions resolves the resume position store.
func Positions() string {
	return filepath.Join(Config(), "positions.json")
}

// Analytics resolves the JSON-lines queue of session snapshots awaiting upload.
func Analytics() string {
	return filepath.Join(ensureDir(filepath.Join(Config(), "analytics")), "queue.jsonl")
}

// Temp resolves a volatile directory for IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Lectern))
}
