// Package signalcenter installs the shell's signal watchers and
// translates wait-status changes into JobTable transitions.
//
// In C, stsh installs SA_RESTART handlers that run with the signal
// itself blocked for their duration; the Go restatement of that
// design (see SPEC_FULL.md §4.3/§5) uses os/signal.Notify to deliver
// signals onto a channel and a dedicated goroutine per concern to
// drain it. The runtime guarantees no signal is lost between delivery
// and the channel read, which is the property the original design
// needed blocking for.
package signalcenter

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"jsh/internal/job"
	"jsh/internal/terminal"
)

// Center owns the signal-watching goroutines and the JobTable they
// mutate.
type Center struct {
	table     *job.Table
	shellPgid int

	sigchld   chan os.Signal
	terminals chan os.Signal
	quit      chan os.Signal

	stop chan struct{}
}

// New constructs a Center bound to table, reporting terminal-signal
// forwarding against shellPgid (the process group to restore terminal
// ownership to once no job is foreground).
func New(table *job.Table, shellPgid int) *Center {
	return &Center{
		table:     table,
		shellPgid: shellPgid,
		sigchld:   make(chan os.Signal, 8),
		terminals: make(chan os.Signal, 8),
		quit:      make(chan os.Signal, 1),
		stop:      make(chan struct{}),
	}
}

// Install registers the shell's signal dispositions and starts the
// watcher goroutines: SIGCHLD is reaped, SIGINT/SIGTSTP are forwarded
// to the foreground group, SIGQUIT exits the shell, and
// SIGTTIN/SIGTTOU are ignored so terminal.SetForeground calls never stop the
// shell itself.
func (c *Center) Install() {
	signal.Notify(c.sigchld, syscall.SIGCHLD)
	signal.Notify(c.terminals, syscall.SIGINT, syscall.SIGTSTP)
	signal.Notify(c.quit, syscall.SIGQUIT)
	signal.Ignore(syscall.SIGTTIN, syscall.SIGTTOU)

	go c.watchChildren()
	go c.watchTerminalSignals()
	go c.watchQuit()
}

// Stop halts the watcher goroutines. Used by tests and by a clean
// shutdown path; it does not restore default dispositions since the
// process is expected to exit shortly after.
func (c *Center) Stop() {
	close(c.stop)
}

func (c *Center) watchChildren() {
	for {
		select {
		case <-c.stop:
			return
		case <-c.sigchld:
			c.reapAll()
		}
	}
}

// reapAll drains every immediately-reapable child, translating each
// one's wait status into a JobTable transition. It loops until
// Wait4 reports no more children are ready, so that SIGCHLD
// deliveries coalesced by the kernel are not lost.
func (c *Center) reapAll() {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err != nil || pid <= 0 {
			return
		}
		if !c.table.ContainsProcess(pid) {
			continue
		}

		// Snapshot whether pid belongs to the current foreground job
		// before mutating its state: SetProcessState -> Synchronize
		// removes the job the instant every process is Terminated, so
		// looking this up afterward would always miss the ordinary
		// "foreground command exits" case.
		fg, wasForeground := c.table.Foreground()
		belongsToForeground := wasForeground && fg.ContainsProcess(pid)

		switch {
		case status.Exited() || status.Signaled():
			_ = c.table.SetProcessState(pid, job.Terminated)
		case status.Stopped():
			_ = c.table.SetProcessState(pid, job.Stopped)
		case status.Continued():
			_ = c.table.SetProcessState(pid, job.Running)
		}

		if belongsToForeground {
			c.reclaimTerminalIfForegroundSettled(fg.Num)
		}
	}
}

// reclaimTerminalIfForegroundSettled restores terminal ownership to
// the shell once the job numbered num — the foreground job just
// before the state change that triggered this call — has either
// fully terminated (no longer present in the table at all) or fully
// stopped, demoting it out of the Foreground state in the latter
// case. num is captured by the caller before its triggering
// SetProcessState call, so this decision never depends on whether
// Synchronize already removed the job.
func (c *Center) reclaimTerminalIfForegroundSettled(num int) {
	j, err := c.table.JobByNum(num)
	if err != nil {
		_ = terminal.SetForeground(c.shellPgid)
		return
	}
	if !j.AllStopped() {
		return
	}
	_ = terminal.SetForeground(c.shellPgid)
	_ = c.table.SetJobState(j.Num, job.Background)
}

func (c *Center) watchTerminalSignals() {
	for {
		select {
		case <-c.stop:
			return
		case sig := <-c.terminals:
			fg, ok := c.table.Foreground()
			if !ok {
				continue
			}
			_ = unix.Kill(-fg.Gid, sig.(syscall.Signal))
		}
	}
}

func (c *Center) watchQuit() {
	select {
	case <-c.stop:
		return
	case <-c.quit:
		os.Exit(0)
	}
}
