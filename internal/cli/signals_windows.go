//go:build windows

package cli

import "os"

// no pause signal on windows
var pauseSignals []os.Signal
