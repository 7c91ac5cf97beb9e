package pipeline

import "testing"

func TestParseSimpleCommand(t *testing.T) {
	p, err := Parse("echo hello world")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(p.Commands))
	}
	cmd := p.Commands[0]
	if cmd.Program != "echo" || len(cmd.Arguments) != 2 || cmd.Arguments[0] != "hello" || cmd.Arguments[1] != "world" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	if p.Background {
		t.Fatal("should not be background")
	}
}

func TestParseQuotedArgument(t *testing.T) {
	p, err := Parse(`echo "two words"`)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Commands[0].Arguments) != 1 || p.Commands[0].Arguments[0] != "two words" {
		t.Fatalf("expected single quoted argument, got %+v", p.Commands[0].Arguments)
	}
}

func TestParseBackground(t *testing.T) {
	p, err := Parse("sleep 100 &")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Background {
		t.Fatal("expected background pipeline")
	}
	if p.Commands[0].Program != "sleep" {
		t.Fatalf("unexpected program: %s", p.Commands[0].Program)
	}
}

func TestParsePipeline(t *testing.T) {
	p, err := Parse("cat | wc -l")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Commands) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(p.Commands))
	}
	if p.Commands[0].Program != "cat" || p.Commands[1].Program != "wc" {
		t.Fatalf("unexpected stages: %+v", p.Commands)
	}
}

func TestParseRedirectionWithSpaces(t *testing.T) {
	p, err := Parse("cmd < in.txt > out.txt")
	if err != nil {
		t.Fatal(err)
	}
	if p.Input != "in.txt" || p.Output != "out.txt" || p.Append {
		t.Fatalf("unexpected redirection: in=%q out=%q append=%v", p.Input, p.Output, p.Append)
	}
}

func TestParseRedirectionAttached(t *testing.T) {
	p, err := Parse("cmd <in.txt >>out.txt")
	if err != nil {
		t.Fatal(err)
	}
	if p.Input != "in.txt" || p.Output != "out.txt" || !p.Append {
		t.Fatalf("unexpected redirection: in=%q out=%q append=%v", p.Input, p.Output, p.Append)
	}
}

func TestParseInputRedirectionOnlyOnFirstStage(t *testing.T) {
	_, err := Parse("a | b < in.txt")
	if err == nil {
		t.Fatal("expected parse error for input redirection on non-first stage")
	}
}

func TestParseOutputRedirectionOnlyOnLastStage(t *testing.T) {
	_, err := Parse("a > out.txt | b")
	if err == nil {
		t.Fatal("expected parse error for output redirection on non-last stage")
	}
}

func TestParseEmptyCommandIsError(t *testing.T) {
	if _, err := Parse("   "); err == nil {
		t.Fatal("expected parse error for blank input")
	}
}

func TestParseEmptyStageBetweenPipesIsError(t *testing.T) {
	if _, err := Parse("a | | b"); err == nil {
		t.Fatal("expected parse error for empty stage between pipes")
	}
}

func TestParseTrailingPipeIsError(t *testing.T) {
	if _, err := Parse("a |"); err == nil {
		t.Fatal("expected parse error for trailing '|'")
	}
}
