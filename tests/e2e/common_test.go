package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// buildWTFBinary builds the wtf binary in the specified directory and returns its path.
func buildWTFBinary(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "wtf.exe")
	// Assumes tests are running from tests/e2e.
	buildCmd := exec.Command("go", "build", "-o", bin, "../../cmd/wtf")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build wtf: %v\n%s", err, string(out))
	}
	return bin
}

// cli runs the binary against an isolated home.
type cli struct {
	t    *testing.T
	bin  string
	home string
	env  []string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	tmpDir := t.TempDir()
	return &cli{
		t:    t,
		bin:  buildWTFBinary(t, tmpDir),
		home: filepath.Join(tmpDir, ".wtf"),
		env: []string{
			"HOME=" + tmpDir,
			"WTF_HOME=" + filepath.Join(tmpDir, ".wtf"),
			// Keep the suite offline unless a test points the remote somewhere.
			"WTF_SYNC_AUTO=false",
			"WTF_REMOTE_API=http://127.0.0.1:1",
			"WTF_REMOTE_RAW=http://127.0.0.1:1",
		},
	}
}

// exec runs the binary and returns stdout and the exit error, if any.
func (c *cli) exec(args ...string) (string, error) {
	c.t.Helper()
	cmd := exec.Command(c.bin, args...)
	cmd.Env = append(os.Environ(), c.env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	fmt.Printf("Executing: wtf %v\n", args)
	err := cmd.Run()
	if stderr.Len() > 0 {
		c.t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), err
}

// run is exec that fails the test on a non-zero exit.
func (c *cli) run(args ...string) string {
	c.t.Helper()
	out, err := c.exec(args...)
	if err != nil {
		c.t.Fatalf("Command wtf %v failed: %v\n%s", args, err, out)
	}
	return out
}
