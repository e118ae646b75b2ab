//go:build !windows

package player

import (
	"os/exec"
	"syscall"
)

// ownGroup puts mpv in its own process group so terminal signals aimed at
// the interface do not reach it.
func ownGroup() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// terminate kills mpv together with any helper processes it spawned.
func terminate(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	return cmd.Process.Kill()
}
