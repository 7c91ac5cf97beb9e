// Package shell implements the REPL loop: read a line, parse it into
// a pipeline, try the builtins first, and fall back to the launcher.
// This is the Go-native restatement of the teacher's repl package,
// generalized from a bufio.Reader prompt loop to the readline front
// end and job-table-backed builtins SPEC_FULL.md §4.7 describes.
package shell

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"jsh/internal/builtins"
	"jsh/internal/job"
	"jsh/internal/jsherr"
	"jsh/internal/launch"
	"jsh/internal/pipeline"
	"jsh/internal/readline"
)

// Shell owns the components a running session wires together: the
// job table, the pipeline launcher, the builtin dispatcher, and the
// interactive line source.
type Shell struct {
	table    *job.Table
	launcher *launch.Launcher
	builtin  *builtins.Dispatcher
	line     *readline.Source
	log      *zap.Logger
}

// New constructs a Shell. line is owned by the caller and closed by
// the caller once Run returns.
func New(table *job.Table, line *readline.Source, log *zap.Logger) *Shell {
	return &Shell{
		table:    table,
		launcher: launch.New(table),
		builtin:  builtins.New(table),
		line:     line,
		log:      log,
	}
}

// Run reads and executes commands until end of input.
func (s *Shell) Run() {
	for {
		text, err := s.line.Next()
		switch {
		case errors.Is(err, readline.ErrInterrupted):
			continue
		case errors.Is(err, readline.ErrEOF):
			return
		case err != nil:
			fmt.Fprintln(os.Stderr, err)
			return
		}

		if isBlank(text) {
			continue
		}

		s.execute(text)
	}
}

func (s *Shell) execute(line string) {
	p, err := pipeline.Parse(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsh: %v\n", err)
		return
	}
	if p == nil || len(p.Commands) == 0 {
		return
	}

	err = s.builtin.Dispatch(p)
	if err == nil {
		return
	}

	var notBuiltin *jsherr.NotABuiltin
	if !errors.As(err, &notBuiltin) {
		s.log.Warn("builtin failed", zap.String("command", p.Commands[0].Program), zap.Error(err))
		fmt.Fprintf(os.Stderr, "jsh: %v\n", err)
		return
	}

	if err := s.launcher.Launch(p); err != nil {
		s.log.Warn("launch failed", zap.String("command", p.Commands[0].Program), zap.Error(err))
		fmt.Fprintf(os.Stderr, "jsh: %v\n", err)
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
