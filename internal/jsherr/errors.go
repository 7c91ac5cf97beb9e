// Package jsherr defines the shell's error taxonomy.
//
// The errors the core raises itself are the handful of types below;
// errors from system calls (such as kill) are passed through unwrapped.
// The REPL never does more with them than log and print to stderr, but
// builtins and the launcher need to distinguish them (e.g. a missing
// job vs. a missing process), so they carry structured fields instead
// of being bare fmt.Errorf strings.
package jsherr

import "fmt"

// ParseError is raised by the pipeline parser for malformed input.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

// BuiltinUsage is raised when a builtin is called with bad arguments.
type BuiltinUsage struct {
	Command string
	Message string
}

func (e *BuiltinUsage) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// NoSuchJob is raised when a job number does not name a live job.
type NoSuchJob struct {
	Num int
}

func (e *NoSuchJob) Error() string {
	return fmt.Sprintf("%d: No such job", e.Num)
}

// NoSuchProcess is raised when a pid does not name a known process.
type NoSuchProcess struct {
	Pid int
}

func (e *NoSuchProcess) Error() string {
	return fmt.Sprintf("%d: No such process", e.Pid)
}

// NoSuchIndex is raised when a job/index pair has no matching process.
type NoSuchIndex struct {
	Num   int
	Index int
}

func (e *NoSuchIndex) Error() string {
	return fmt.Sprintf("%d: no process at index %d", e.Num, e.Index)
}

// AlreadyForeground is raised by SetJobState when promoting a job to
// Foreground would leave two jobs in that state (invariant I1).
type AlreadyForeground struct {
	Existing int
}

func (e *AlreadyForeground) Error() string {
	return fmt.Sprintf("job %d is already in the foreground", e.Existing)
}

// SpawnFailed is raised by the launcher when a pipeline could not be
// fully spawned (pipe creation, fork, or a pre-fork redirection open
// failed).
type SpawnFailed struct {
	Stage int
	Cause error
}

func (e *SpawnFailed) Error() string {
	return fmt.Sprintf("stage %d: %v", e.Stage, e.Cause)
}

func (e *SpawnFailed) Unwrap() error { return e.Cause }

// TerminalControlFailed is raised when a tcsetpgrp-equivalent call
// fails; the shell logs it and continues in a degraded state for the
// affected job rather than aborting.
type TerminalControlFailed struct {
	Op    string
	Cause error
}

func (e *TerminalControlFailed) Error() string {
	return fmt.Sprintf("terminal control failed during %s: %v", e.Op, e.Cause)
}

func (e *TerminalControlFailed) Unwrap() error { return e.Cause }

// NotABuiltin is returned internally by the builtin dispatcher to mean
// "this isn't one of mine, hand it to the launcher"; it is never
// printed.
type NotABuiltin struct {
	Name string
}

func (e *NotABuiltin) Error() string {
	return fmt.Sprintf("%s: not a builtin", e.Name)
}
