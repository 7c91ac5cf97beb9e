package launch

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"jsh/internal/job"
	"jsh/internal/jsherr"
	"jsh/internal/pipeline"
)

func TestLaunchBackgroundRegistersProcessAndGid(t *testing.T) {
	tbl := job.NewTable()
	l := New(tbl)

	p := &pipeline.Pipeline{
		Commands:   []pipeline.Command{{Program: "sleep", Arguments: []string{"5"}}},
		Background: true,
	}
	if err := l.Launch(p); err != nil {
		t.Fatalf("launch failed: %v", err)
	}

	j, err := tbl.JobByNum(1)
	if err != nil {
		t.Fatalf("expected job 1 to exist: %v", err)
	}
	if j.State != job.Background {
		t.Fatalf("expected background job, got %v", j.State)
	}
	if j.Gid != j.Processes[0].Pid {
		t.Fatalf("expected gid to equal first process pid")
	}

	_ = unix.Kill(-j.Gid, unix.SIGKILL)
	reapUntilGone(t, tbl, j.Processes[0].Pid, j.Num)
}

func TestLaunchMissingProgramSpawnsReplacementThatIsReaped(t *testing.T) {
	tbl := job.NewTable()
	l := New(tbl)

	p := &pipeline.Pipeline{
		Commands:   []pipeline.Command{{Program: "definitely-not-a-real-program-xyz"}},
		Background: true,
	}
	if err := l.Launch(p); err != nil {
		t.Fatalf("launch of a missing program should still spawn a process, got: %v", err)
	}
	j, err := tbl.JobByNum(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(j.Processes) != 1 {
		t.Fatalf("expected exactly one process, got %d", len(j.Processes))
	}
	reapUntilGone(t, tbl, j.Processes[0].Pid, j.Num)
}

func TestSpawnStagesCleansUpJobOnBadInputFile(t *testing.T) {
	tbl := job.NewTable()
	l := New(tbl)

	p := &pipeline.Pipeline{
		Commands: []pipeline.Command{{Program: "cat"}},
		Input:    "/no/such/file/for/jsh/tests",
	}
	j := tbl.AddJob(job.Foreground)
	_, err := l.spawnStages(j.Num, p)
	var sf *jsherr.SpawnFailed
	if !errors.As(err, &sf) {
		t.Fatalf("expected SpawnFailed, got %v", err)
	}
	if tbl.ContainsJob(j.Num) {
		t.Fatal("expected job to be removed after a stage-0 spawn failure")
	}
}

// reapUntilGone simulates the signal center's reaping loop so tests
// don't need a live SIGCHLD watcher: it waits on pid directly and
// feeds the result into the table.
func reapUntilGone(t *testing.T, tbl *job.Table, pid, jobNum int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var status unix.WaitStatus
		got, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
		if err == nil && got == pid {
			_ = tbl.SetProcessState(pid, job.Terminated)
		}
		if !tbl.ContainsJob(jobNum) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job was not reaped in time")
}
