package integration

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type result struct {
	stdout string
	stderr string
	exit   int
}

// runTypelint runs the binary in dir with a clean typelint environment.
func runTypelint(t *testing.T, dir string, args ...string) result {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GOCOVERDIR="+coverageDir,
		"NO_COLOR=1",
	)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("command failed to start: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return result{stdout: stdoutBuf.String(), stderr: stderrBuf.String(), exit: exitCode}
}

// project writes files (relative path to content) into a fresh directory
// holding an empty root config, so configs above the temp dir are ignored.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if _, ok := files[".typelint.toml"]; !ok {
		files[".typelint.toml"] = ""
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}
