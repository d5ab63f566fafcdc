//go:build !windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

var errProcessDone = os.ErrProcessDone

func setProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(c *exec.Cmd) {
	if c.Process == nil {
		return
	}
	// pgid equals the leader pid because of Setpgid
	_ = syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
}
