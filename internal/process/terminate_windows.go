//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// TerminateTree force-kills pid and its children with taskkill /F /T.
func TerminateTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
