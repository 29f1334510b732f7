//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedFlowcastPath holds the path to a shared flowcast binary built once for all tests.
	sharedFlowcastPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getFlowcastBinary returns the path to the flowcast binary, building it once if needed.
func getFlowcastBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "flowcast-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		flowcastPath := filepath.Join(tempDir, "flowcast")
		buildCmd := exec.Command("go", "build", "-o", flowcastPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build flowcast: %v", err))
		}

		sharedFlowcastPath = flowcastPath
	})

	return sharedFlowcastPath
}

// runFlowcast runs the binary from the project root and returns its stdout.
// The home directory is pointed at a temp dir so default SQLite files stay isolated.
func runFlowcast(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getFlowcastBinary(), args...)
	cmd.Dir = "../" // Run from project root
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), string(output), stderr)
		return "", err
	}
	return string(output), nil
}

// generateTickets writes a small reproducible ticket table and returns its path.
func generateTickets(t *testing.T, env []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickets.csv")
	_, err := runFlowcast(t, env,
		"generate", "--tickets", "300", "--gen-seed", "5", "--gen-end", "2023-04-15",
		"--output", "csv", "--output-file", path, "--cache-backend", "none")
	require.NoError(t, err)
	return path
}

// isolatedHome returns environment entries pointing HOME at a fresh temp dir.
func isolatedHome(t *testing.T) []string {
	t.Helper()
	return []string{"HOME=" + t.TempDir()}
}
