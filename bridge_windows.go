//go:build windows
// +build windows

package apophis

import "os/exec"

// setProcessGroup is a no-op on Windows; exec.CommandContext's default
// kill is used for cancellation.
func setProcessGroup(cmd *exec.Cmd) {}
