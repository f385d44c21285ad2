//go:build !windows

package terminal

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the shell in its own process group and makes
// cancellation kill the whole group, so children of the shell exit too.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
