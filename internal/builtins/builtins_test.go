package builtins

import (
	"errors"
	"testing"

	"jsh/internal/job"
	"jsh/internal/jsherr"
	"jsh/internal/pipeline"
)

func cmd(program string, args ...string) *pipeline.Pipeline {
	return &pipeline.Pipeline{Commands: []pipeline.Command{{Program: program, Arguments: args}}}
}

func TestIsBuiltinRecognizesFixedSet(t *testing.T) {
	for _, name := range []string{"quit", "exit", "fg", "bg", "slay", "halt", "cont", "jobs"} {
		if !IsBuiltin(name) {
			t.Errorf("expected %q to be a builtin", name)
		}
	}
	if IsBuiltin("ls") {
		t.Error("ls must not be treated as a builtin")
	}
}

func TestDispatchReturnsNotABuiltinForExternalCommand(t *testing.T) {
	d := New(job.NewTable())
	err := d.Dispatch(cmd("ls"))
	var nb *jsherr.NotABuiltin
	if !errors.As(err, &nb) {
		t.Fatalf("expected NotABuiltin, got %v", err)
	}
}

func TestDispatchJobsRendersEmptyTable(t *testing.T) {
	d := New(job.NewTable())
	if err := d.Dispatch(cmd("jobs")); err != nil {
		t.Fatalf("jobs should never fail: %v", err)
	}
}

func TestFgRejectsMissingArgument(t *testing.T) {
	d := New(job.NewTable())
	err := d.Dispatch(cmd("fg"))
	var usage *jsherr.BuiltinUsage
	if !errors.As(err, &usage) {
		t.Fatalf("expected BuiltinUsage, got %v", err)
	}
}

func TestFgRejectsUnknownJob(t *testing.T) {
	d := New(job.NewTable())
	err := d.Dispatch(cmd("fg", "9"))
	var nsj *jsherr.NoSuchJob
	if !errors.As(err, &nsj) {
		t.Fatalf("expected NoSuchJob, got %v", err)
	}
}

func TestBgRejectsNonNumericArgument(t *testing.T) {
	d := New(job.NewTable())
	err := d.Dispatch(cmd("bg", "x"))
	var usage *jsherr.BuiltinUsage
	if !errors.As(err, &usage) {
		t.Fatalf("expected BuiltinUsage, got %v", err)
	}
}

func TestSlayRejectsNonNumericPid(t *testing.T) {
	d := New(job.NewTable())
	err := d.Dispatch(cmd("slay", "abc"))
	var usage *jsherr.BuiltinUsage
	if !errors.As(err, &usage) {
		t.Fatalf("expected BuiltinUsage, got %v", err)
	}
}

func TestSlayRejectsUntrackedPid(t *testing.T) {
	d := New(job.NewTable())
	err := d.Dispatch(cmd("slay", "999999"))
	var nsp *jsherr.NoSuchProcess
	if !errors.As(err, &nsp) {
		t.Fatalf("expected NoSuchProcess, got %v", err)
	}
}

func TestHaltRejectsIndexOutOfRange(t *testing.T) {
	tbl := job.NewTable()
	j := tbl.AddJob(job.Background)
	_ = tbl.AddProcess(j.Num, job.Process{Pid: 123})

	d := New(tbl)
	err := d.Dispatch(cmd("halt", "1", "5"))
	var nsi *jsherr.NoSuchIndex
	if !errors.As(err, &nsi) {
		t.Fatalf("expected NoSuchIndex, got %v", err)
	}
}

func TestDispatchIgnoresEmptyPipeline(t *testing.T) {
	d := New(job.NewTable())
	if err := d.Dispatch(&pipeline.Pipeline{}); err != nil {
		t.Fatalf("empty pipeline should be a no-op, got %v", err)
	}
}
