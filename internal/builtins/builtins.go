// Package builtins implements the shell-internal commands that
// manipulate the job table directly: fg, bg, slay, halt, cont, jobs,
// quit, exit (SPEC_FULL.md §4.4).
package builtins

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"

	"jsh/internal/job"
	"jsh/internal/jsherr"
	"jsh/internal/pipeline"
	"jsh/internal/terminal"
)

var names = map[string]bool{
	"quit": true, "exit": true,
	"fg": true, "bg": true,
	"slay": true, "halt": true, "cont": true,
	"jobs": true,
}

// IsBuiltin reports whether name is one of the fixed builtin commands.
func IsBuiltin(name string) bool {
	return names[name]
}

// Dispatcher executes builtins against a job table.
type Dispatcher struct {
	table *job.Table
}

// New constructs a Dispatcher bound to table.
func New(table *job.Table) *Dispatcher {
	return &Dispatcher{table: table}
}

// Dispatch runs the builtin named by p's first command. It returns
// jsherr.NotABuiltin if the command isn't one of the fixed set, so the
// caller can fall back to the launcher.
func (d *Dispatcher) Dispatch(p *pipeline.Pipeline) error {
	if len(p.Commands) == 0 {
		return nil
	}
	cmd := p.Commands[0]
	if !IsBuiltin(cmd.Program) {
		return &jsherr.NotABuiltin{Name: cmd.Program}
	}

	switch cmd.Program {
	case "quit", "exit":
		os.Exit(0)
		return nil
	case "jobs":
		fmt.Print(d.table.Render())
		return nil
	case "fg":
		return d.fg(cmd.Arguments)
	case "bg":
		return d.bg(cmd.Arguments)
	case "slay":
		return d.signalTarget(cmd.Program, cmd.Arguments, unix.SIGKILL)
	case "halt":
		return d.signalTarget(cmd.Program, cmd.Arguments, unix.SIGSTOP)
	case "cont":
		return d.signalTarget(cmd.Program, cmd.Arguments, unix.SIGCONT)
	}
	return &jsherr.NotABuiltin{Name: cmd.Program}
}

func (d *Dispatcher) fg(args []string) error {
	num, err := parseJobNum("fg", args)
	if err != nil {
		return err
	}
	j, err := d.table.JobByNum(num)
	if err != nil {
		return err
	}
	if err := unix.Kill(-j.Gid, unix.SIGCONT); err != nil {
		return err
	}
	if fg, ok := d.table.Foreground(); ok && fg.Num != j.Num {
		_ = d.table.SetJobState(fg.Num, job.Background)
	}
	if err := d.table.SetJobState(j.Num, job.Foreground); err != nil {
		return err
	}
	if err := terminal.SetForeground(j.Gid); err != nil {
		return err
	}
	d.table.WaitForForeground()
	return nil
}

func (d *Dispatcher) bg(args []string) error {
	num, err := parseJobNum("bg", args)
	if err != nil {
		return err
	}
	j, err := d.table.JobByNum(num)
	if err != nil {
		return err
	}
	if err := unix.Kill(-j.Gid, unix.SIGCONT); err != nil {
		return err
	}
	return d.table.SetJobState(j.Num, job.Background)
}

// signalTarget resolves the slay/halt/cont target (a bare pid, or a
// job-num/index pair) and sends sig to it.
func (d *Dispatcher) signalTarget(command string, args []string, sig unix.Signal) error {
	switch len(args) {
	case 1:
		pid, err := strconv.Atoi(args[0])
		if err != nil || pid <= 0 {
			return &jsherr.BuiltinUsage{Command: command, Message: "usage: " + command + " <pid> | <job> <index>"}
		}
		if !d.table.ContainsProcess(pid) {
			return &jsherr.NoSuchProcess{Pid: pid}
		}
		return unix.Kill(pid, sig)
	case 2:
		num, err1 := strconv.Atoi(args[0])
		idx, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil || num <= 0 || idx < 0 {
			return &jsherr.BuiltinUsage{Command: command, Message: "usage: " + command + " <pid> | <job> <index>"}
		}
		j, err := d.table.JobByNum(num)
		if err != nil {
			return err
		}
		if idx >= len(j.Processes) {
			return &jsherr.NoSuchIndex{Num: num, Index: idx}
		}
		return unix.Kill(j.Processes[idx].Pid, sig)
	default:
		return &jsherr.BuiltinUsage{Command: command, Message: "usage: " + command + " <pid> | <job> <index>"}
	}
}

func parseJobNum(command string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, &jsherr.BuiltinUsage{Command: command, Message: "usage: " + command + " <job>"}
	}
	num, err := strconv.Atoi(args[0])
	if err != nil || num < 1 {
		return 0, &jsherr.BuiltinUsage{Command: command, Message: "usage: " + command + " <job>"}
	}
	return num, nil
}
