package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	BaseDir       string
	ConfigPath    string
	DBPath        string
	TrackCacheDir string
	CoverCacheDir string
}

func ResolvePaths(appSlug string) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
	}

	baseDir := filepath.Join(configDir, appSlug)
	paths := Paths{
		BaseDir:       baseDir,
		ConfigPath:    filepath.Join(baseDir, "config.toml"),
		DBPath:        filepath.Join(baseDir, "state.db"),
		TrackCacheDir: filepath.Join(baseDir, "tracks"),
		CoverCacheDir: filepath.Join(baseDir, "covers"),
	}

	for _, dir := range []string{paths.BaseDir, paths.TrackCacheDir, paths.CoverCacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("create app dir %s: %w", dir, err)
		}
	}

	return paths, nil
}
