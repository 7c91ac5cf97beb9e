// Package readline provides the shell's interactive line source: a
// thin wrapper over github.com/chzyer/readline that turns its
// io.EOF / readline.ErrInterrupt sentinels into the three outcomes the
// REPL actually needs to distinguish (SPEC_FULL.md §4.6): a line, an
// end-of-input, and a bare Ctrl+C that should just redraw the prompt.
package readline

import (
	"errors"
	"io"

	"github.com/chzyer/readline"

	"jsh/internal/jsherr"
)

// ErrEOF is returned by Next when the input stream is exhausted
// (Ctrl+D on an empty line, or stdin closed).
var ErrEOF = io.EOF

// ErrInterrupted is returned by Next when the line was abandoned via
// Ctrl+C. The caller should treat this as "no command", not an error
// worth reporting.
var ErrInterrupted = readline.ErrInterrupt

// Source reads interactive input lines, maintaining history across
// calls.
type Source struct {
	inst *readline.Instance
}

// Open constructs a Source with the given prompt and, if non-empty, a
// history file persisted across sessions.
func Open(prompt, historyFile string) (*Source, error) {
	inst, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, &jsherr.TerminalControlFailed{Op: "readline.NewEx", Cause: err}
	}
	return &Source{inst: inst}, nil
}

// Close releases the underlying terminal state.
func (s *Source) Close() error {
	return s.inst.Close()
}

// SetPrompt changes the prompt shown before the next read.
func (s *Source) SetPrompt(prompt string) {
	s.inst.SetPrompt(prompt)
}

// Next blocks for one line of input. It returns ErrEOF at end of
// input and ErrInterrupted on a bare Ctrl+C with no pending text;
// both are sentinel values the caller compares with errors.Is.
func (s *Source) Next() (string, error) {
	line, err := s.inst.Readline()
	if err == nil {
		return line, nil
	}
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	if errors.Is(err, io.EOF) {
		return "", ErrEOF
	}
	return "", err
}
