package config

import (
	"os"
	"path/filepath"
)

const defaultRuntimeDir = ".bokjirang"

// GetRuntimePath is used before the .env file is loaded, so it reads the
// environment directly instead of going through AppConfig.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("BOKJI_RUNTIME_PATH"))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = defaultRuntimeDir
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
