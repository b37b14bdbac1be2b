package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultHomeDir is the data home created under the user's home directory.
const DefaultHomeDir = ".wtf"

// devNamespace groups sandboxed data homes inside the system temp dir.
const devNamespace = "wtf-dev"

// DefaultHome returns ~/.wtf, or ./.wtf when the user home is unknown.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultHomeDir
	}
	return filepath.Join(home, DefaultHomeDir)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	// go test
	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveHome determines the actual data home based on safety rules.
// An empty path means DefaultHome. With forceTemp the path is re-rooted into
// a namespaced temporary directory, unless it already lives under the temp dir.
func ResolveHome(userPath string, forceTemp bool) string {
	if userPath == "" {
		userPath = DefaultHome()
	}
	if !forceTemp {
		return userPath
	}

	// Paths created by t.TempDir() or explicitly placed in the temp dir are trusted.
	cleanUserPath := filepath.Clean(userPath)
	rel, err := filepath.Rel(os.TempDir(), cleanUserPath)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return cleanUserPath
	}

	subName := filepath.Base(cleanUserPath)
	if subName == "." || subName == string(os.PathSeparator) {
		subName = "default"
	}

	return filepath.Join(os.TempDir(), devNamespace, subName)
}
