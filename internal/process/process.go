// Package process terminates browser process trees left behind by a session.
package process

import "errors"

// ErrInvalidPID is returned for pids that cannot name a child process.
var ErrInvalidPID = errors.New("invalid process id")
