//go:build darwin

package runner

import (
	"os"
	"syscall"
)

// catchableSignals returns the platform-appropriate signal set. macOS/BSD
// adds EMT and INFO to the common set.
func catchableSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGABRT,
		syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGCONT, syscall.SIGUSR1,
		syscall.SIGUSR2, syscall.SIGEMT, syscall.SIGINFO, syscall.SIGTRAP,
		syscall.SIGBUS, syscall.SIGSYS, syscall.SIGPIPE, syscall.SIGALRM,
		syscall.SIGURG, syscall.SIGCHLD, syscall.SIGTTIN, syscall.SIGTTOU,
		syscall.SIGIO, syscall.SIGXCPU, syscall.SIGXFSZ, syscall.SIGVTALRM,
		syscall.SIGPROF, syscall.SIGWINCH,
	}
}
