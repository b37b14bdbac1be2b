package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/wtf/internal/platform"
)

func TestResolveHome(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, "wtf-dev")

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{
			name:      "Normal Mode - Current Dir",
			userPath:  ".",
			forceTemp: false,
			expected:  ".",
		},
		{
			name:      "Normal Mode - Specific Path",
			userPath:  "/some/path/.wtf",
			forceTemp: false,
			expected:  "/some/path/.wtf",
		},
		{
			name:      "Dev Mode - Current Dir",
			userPath:  ".",
			forceTemp: true,
			expected:  filepath.Join(devBase, "default"),
		},
		{
			name:      "Dev Mode - Relative Name",
			userPath:  "my-slang",
			forceTemp: true,
			expected:  filepath.Join(devBase, "my-slang"),
		},
		{
			name:      "Dev Mode - Clean Name",
			userPath:  "../bad/path",
			forceTemp: true,
			expected:  filepath.Join(devBase, "path"),
		},
		{
			name:      "Dev Mode - Exception for Temp Dir",
			userPath:  filepath.Join(tempRoot, "my-test"),
			forceTemp: true,
			expected:  filepath.Join(tempRoot, "my-test"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := platform.ResolveHome(tt.userPath, tt.forceTemp)
			if got != tt.expected {
				t.Errorf("ResolveHome(%q, %v) = %q; want %q", tt.userPath, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestResolveHomeDefault(t *testing.T) {
	got := platform.ResolveHome("", false)
	if filepath.Base(got) != platform.DefaultHomeDir {
		t.Errorf("ResolveHome(\"\") = %q; want a %s directory", got, platform.DefaultHomeDir)
	}
}

func TestIsDevRun(t *testing.T) {
	// This test runs inside "go test", so IsDevRun() MUST return true.
	if !platform.IsDevRun() {
		t.Errorf("IsDevRun() = false; want true inside go test")
	}
}
