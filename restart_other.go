//go:build !windows

package main

import (
	"fmt"
	"os/exec"
)

// setDetachedProcess is a no-op on non-Windows platforms.
// On Unix-like systems, child processes survive parent exit by default.
func setDetachedProcess(cmd *exec.Cmd) {}

// launchRestartHelper is unavailable off Windows; the caller falls back to a
// direct child process launch, which is reliable there.
func launchRestartHelper(targetPath string) error {
	return fmt.Errorf("not supported on this platform")
}
