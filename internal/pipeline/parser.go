package pipeline

import (
	"strings"

	"github.com/google/shlex"

	"jsh/internal/jsherr"
)

// Parse tokenizes a raw input line (quote-aware, via shlex) and turns
// it into a Pipeline, or a *jsherr.ParseError describing what went
// wrong. This is the implementation of the parser contract in
// SPEC_FULL.md §6: the core only ever sees the resulting Pipeline.
func Parse(line string) (*Pipeline, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, &jsherr.ParseError{Msg: "parse error: " + err.Error()}
	}
	if len(tokens) == 0 {
		return nil, &jsherr.ParseError{Msg: "parse error: empty command"}
	}

	background := false
	if tokens[len(tokens)-1] == "&" {
		background = true
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return nil, &jsherr.ParseError{Msg: "parse error: empty command"}
	}

	stages, err := splitOnPipe(tokens)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Background: background}
	for i, stageTokens := range stages {
		cmd, inFile, outFile, appendMode, err := parseStage(stageTokens)
		if err != nil {
			return nil, err
		}
		if inFile != "" {
			if i != 0 {
				return nil, &jsherr.ParseError{Msg: "parse error: input redirection only valid on the first stage"}
			}
			p.Input = inFile
		}
		if outFile != "" {
			if i != len(stages)-1 {
				return nil, &jsherr.ParseError{Msg: "parse error: output redirection only valid on the last stage"}
			}
			p.Output = outFile
			p.Append = appendMode
		}
		p.Commands = append(p.Commands, cmd)
	}

	return p, nil
}

// splitOnPipe splits tokens into stage groups on bare "|" tokens,
// rejecting leading/trailing/doubled pipes.
func splitOnPipe(tokens []string) ([][]string, error) {
	var stages [][]string
	var current []string
	for _, tok := range tokens {
		if tok == "|" {
			if len(current) == 0 {
				return nil, &jsherr.ParseError{Msg: "parse error: unexpected '|'"}
			}
			stages = append(stages, current)
			current = nil
			continue
		}
		current = append(current, tok)
	}
	if len(current) == 0 {
		return nil, &jsherr.ParseError{Msg: "parse error: trailing '|' with no command"}
	}
	stages = append(stages, current)
	return stages, nil
}

// parseStage extracts redirection operators from a single stage's
// tokens and returns the resulting Command plus any input/output file
// it named. Redirection tokens may be written with a space ("< file")
// or attached directly to the filename ("<file"), matching what a
// real shell's users expect (see SPEC_FULL.md §9).
func parseStage(tokens []string) (cmd Command, inFile, outFile string, appendMode bool, err error) {
	var args []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "<":
			if i+1 >= len(tokens) {
				return Command{}, "", "", false, &jsherr.ParseError{Msg: "parse error: '<' with no filename"}
			}
			inFile = tokens[i+1]
			i++
		case strings.HasPrefix(tok, "<") && len(tok) > 1:
			inFile = tok[1:]
		case tok == ">>":
			if i+1 >= len(tokens) {
				return Command{}, "", "", false, &jsherr.ParseError{Msg: "parse error: '>>' with no filename"}
			}
			outFile = tokens[i+1]
			appendMode = true
			i++
		case strings.HasPrefix(tok, ">>") && len(tok) > 2:
			outFile = tok[2:]
			appendMode = true
		case tok == ">":
			if i+1 >= len(tokens) {
				return Command{}, "", "", false, &jsherr.ParseError{Msg: "parse error: '>' with no filename"}
			}
			outFile = tokens[i+1]
			appendMode = false
			i++
		case strings.HasPrefix(tok, ">") && len(tok) > 1:
			outFile = tok[1:]
			appendMode = false
		default:
			args = append(args, tok)
		}
	}
	if len(args) == 0 {
		return Command{}, "", "", false, &jsherr.ParseError{Msg: "parse error: empty command"}
	}
	cmd.Program = args[0]
	cmd.Arguments = args[1:]
	return cmd, inFile, outFile, appendMode, nil
}
