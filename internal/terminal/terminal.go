// Package terminal wraps the handful of tty-ownership syscalls the
// shell needs: reading/setting the foreground process group of the
// controlling terminal, and putting the shell itself into its own
// process group at startup.
package terminal

import (
	"os"

	"golang.org/x/sys/unix"

	"jsh/internal/jsherr"
)

// Fd is the file descriptor treated as the controlling terminal.
// Standard input, per the terminal contract in SPEC_FULL.md §6.
var Fd = int(os.Stdin.Fd())

// SetForeground designates pgid as the terminal's foreground process
// group (tcsetpgrp equivalent). Callers must have SIGTTOU ignored
// process-wide before calling this from a process that is not already
// in the foreground group, or the kernel will stop the caller.
func SetForeground(pgid int) error {
	if err := unix.IoctlSetInt(Fd, unix.TIOCSPGRP, pgid); err != nil {
		return &jsherr.TerminalControlFailed{Op: "tcsetpgrp", Cause: err}
	}
	return nil
}

// Foreground returns the terminal's current foreground process group
// (tcgetpgrp equivalent).
func Foreground() (int, error) {
	pgid, err := unix.IoctlGetInt(Fd, unix.TIOCGPGRP)
	if err != nil {
		return 0, &jsherr.TerminalControlFailed{Op: "tcgetpgrp", Cause: err}
	}
	return pgid, nil
}

// ClaimShellProcessGroup puts the calling process into its own
// process group (if it isn't already a group leader) and returns that
// group's id. Called once at startup before the terminal is claimed.
func ClaimShellProcessGroup() (int, error) {
	pid := unix.Getpid()
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		return 0, err
	}
	if pgid != pid {
		if err := unix.Setpgid(pid, pid); err != nil {
			return 0, err
		}
		pgid = pid
	}
	return pgid, nil
}
