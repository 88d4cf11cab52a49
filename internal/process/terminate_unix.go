//go:build !windows

package process

import "syscall"

// TerminateTree sends SIGKILL to the process group led by pid, which takes
// renderer and GPU helpers down with the browser.
func TerminateTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
