// Package launch implements the pipeline launcher: fork/exec
// orchestration, process-group assembly, pipe wiring, I/O
// redirection, and terminal-control handoff (SPEC_FULL.md §4.2).
package launch

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"jsh/internal/job"
	"jsh/internal/jsherr"
	"jsh/internal/pipeline"
	"jsh/internal/terminal"
)

// MissingProgramFlag is a hidden first argument this same binary
// recognizes as a request to act as a stand-in child process (see
// ReportMissingProgram). Go's os/exec resolves a program's path via
// LookPath before forking, unlike a C execvp which forks
// unconditionally and only discovers the failure from inside the
// child; to keep the spec's "a process is created and then exits
// nonzero" semantics for a missing program, the launcher re-execs
// itself with this flag instead of calling exec.Command(missingName).
const MissingProgramFlag = "-jsh-missing-program"

// ReportMissingProgram is what a stand-in child actually runs: it
// writes the command-not-found diagnostic to its own stderr and exits
// 127, exactly as a real exec failure would from inside a forked
// child. main calls this when it detects MissingProgramFlag among its
// own arguments, before anything else in the shell starts up.
func ReportMissingProgram(program string) {
	fmt.Fprintf(os.Stderr, "%s: Command not found.\n", program)
	os.Exit(127)
}

// Launcher spawns pipelines and records them in a job.Table.
type Launcher struct {
	table *job.Table
}

// New constructs a Launcher bound to table.
func New(table *job.Table) *Launcher {
	return &Launcher{table: table}
}

// Launch spawns p as a new job. It returns once the job is fully
// spawned: immediately for a background pipeline, or after the job
// has left the foreground (terminated, stopped, or explicitly
// backgrounded) for a foreground one.
func (l *Launcher) Launch(p *pipeline.Pipeline) error {
	initial := job.Foreground
	if p.Background {
		initial = job.Background
	}
	j := l.table.AddJob(initial)

	cmds, err := l.spawnStages(j.Num, p)
	if err != nil {
		return err
	}

	gid := cmds[0].Process.Pid
	if p.Background {
		fmt.Printf("[%d]", j.Num)
		for _, c := range cmds {
			fmt.Printf(" %d", c.Process.Pid)
		}
		fmt.Println()
		return nil
	}

	if err := terminal.SetForeground(gid); err != nil {
		// Degraded but not fatal: the job still runs, it just may not
		// receive terminal-generated signals correctly.
		fmt.Fprintln(os.Stderr, err)
	}
	l.table.WaitForForeground()
	return nil
}

// spawnStages forks and execs every stage of p in order, wiring pipes
// between adjacent stages and redirecting the first stage's stdin /
// last stage's stdout per p.Input/p.Output. On any failure it signals
// already-spawned stages with SIGTERM and removes the job entry if no
// stage was spawned; otherwise the job is left for normal reaping.
func (l *Launcher) spawnStages(jobNum int, p *pipeline.Pipeline) ([]*exec.Cmd, error) {
	n := len(p.Commands)
	cmds := make([]*exec.Cmd, 0, n)
	var gid int

	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}

	var prevRead *os.File
	var openFiles []*os.File
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()

	cleanupOnError := func(stage int, cause error) ([]*exec.Cmd, error) {
		for _, c := range cmds {
			_ = c.Process.Signal(syscall.SIGTERM)
		}
		if len(cmds) == 0 {
			l.table.RemoveJob(jobNum)
		}
		return nil, &jsherr.SpawnFailed{Stage: stage, Cause: cause}
	}

	for i, stageCmd := range p.Commands {
		var cmd *exec.Cmd
		if path, lookErr := exec.LookPath(stageCmd.Program); lookErr != nil {
			cmd = exec.Command(self, MissingProgramFlag, stageCmd.Program)
		} else {
			cmd = exec.Command(path, stageCmd.Arguments...)
			cmd.Args[0] = stageCmd.Program
		}
		cmd.Env = os.Environ()
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: gid}

		// stdin
		switch {
		case i == 0 && p.Input != "":
			f, err := os.Open(p.Input)
			if err != nil {
				return cleanupOnError(i, err)
			}
			openFiles = append(openFiles, f)
			cmd.Stdin = f
		case i == 0:
			cmd.Stdin = os.Stdin
		default:
			cmd.Stdin = prevRead
		}

		// stdout
		var pipeWrite, pipeRead *os.File
		switch {
		case i == n-1 && p.Output != "":
			flags := os.O_CREATE | os.O_WRONLY
			if p.Append {
				flags |= os.O_APPEND
			} else {
				flags |= os.O_TRUNC
			}
			f, err := os.OpenFile(p.Output, flags, 0644)
			if err != nil {
				return cleanupOnError(i, err)
			}
			openFiles = append(openFiles, f)
			cmd.Stdout = f
		case i == n-1:
			cmd.Stdout = os.Stdout
		default:
			var err error
			pipeRead, pipeWrite, err = os.Pipe()
			if err != nil {
				return cleanupOnError(i, err)
			}
			cmd.Stdout = pipeWrite
		}

		cmd.Stderr = os.Stderr

		if err := cmd.Start(); err != nil {
			return cleanupOnError(i, err)
		}

		// The parent's copies of the pipe ends it just handed to the
		// child are no longer needed: the write end was duplicated
		// into this stage's stdout, and the previous pipe's read end
		// (if any) was duplicated into this stage's stdin.
		if pipeWrite != nil {
			pipeWrite.Close()
		}
		if prevRead != nil {
			prevRead.Close()
		}
		prevRead = pipeRead

		if i == 0 {
			gid = cmd.Process.Pid
		}

		if err := l.table.AddProcess(jobNum, job.Process{
			Pid: cmd.Process.Pid,
			Command: job.Command{
				Program:   stageCmd.Program,
				Arguments: stageCmd.Arguments,
			},
			State: job.Running,
		}); err != nil {
			return cleanupOnError(i, err)
		}

		cmds = append(cmds, cmd)
	}

	return cmds, nil
}
