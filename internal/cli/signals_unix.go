//go:build !windows

package cli

import (
	"os"
	"syscall"
)

var pauseSignals = []os.Signal{syscall.SIGUSR1}
