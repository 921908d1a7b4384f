//go:build unix

package terminal

import (
	"os"
	"syscall"
)

var resumeSignals = []os.Signal{syscall.SIGCONT}

func stopSelf() error {
	return syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
}
