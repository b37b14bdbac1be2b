package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindRoot looks upwards from startDir for a project-local data home, i.e. a
// .wtf directory holding a res/ folder (the layout of the shared dictionary
// repository). It returns the path of the .wtf directory itself.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		home := filepath.Join(dir, DefaultHomeDir)
		if isDir(home) && isDir(filepath.Join(home, "res")) {
			return home, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no %s directory found above %s", DefaultHomeDir, abs)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
