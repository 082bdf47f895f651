// Package exe runs external test-fixture commands (the real `git`
// binary, mostly) and surfaces their stderr as a Go error.
package exe

import (
	"errors"
	"io"
	"os/exec"
	"strings"
)

// Run executes name with arg and returns trimmed stdout. If the
// command exits with output on stderr, that text becomes the error.
func Run(name string, arg ...string) (string, error) {
	cmd := exec.Command(name, arg...) //nolint:gosec // name is controlled by the test, not user input
	stdout, stderr, err := runCaptured(cmd)
	if err != nil && stderr != "" {
		return stdout, errors.New(stderr) //nolint:goerr113 // stderr text is only known at runtime
	}
	return stdout, err
}

func runCaptured(cmd *exec.Cmd) (stdout, stderr string, err error) {
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", "", err
	}

	if err := cmd.Start(); err != nil {
		return "", "", err
	}

	stderrBytes, err := io.ReadAll(stderrPipe)
	if err != nil {
		return "", "", err
	}
	stdoutBytes, err := io.ReadAll(stdoutPipe)
	if err != nil {
		return "", "", err
	}

	stdout = strings.TrimSuffix(string(stdoutBytes), "\n")
	stderr = strings.TrimSuffix(string(stderrBytes), "\n")
	return stdout, stderr, cmd.Wait()
}
