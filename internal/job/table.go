package job

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"jsh/internal/jsherr"
)

// Table is the process-wide job database. It is safe for concurrent
// use by the REPL goroutine and the signal-watching goroutines: every
// exported method takes the table's mutex for its whole critical
// section, which is the Go-idiomatic restatement of the original
// design's "block SIGCHLD during multi-step mutation" discipline (see
// SPEC_FULL.md §4.1/§5).
type Table struct {
	mu       sync.Mutex
	cond     *sync.Cond
	jobs     map[int]*Job
	byPid    map[int]int // pid -> job num
	nextHint int
}

// NewTable constructs an empty job table.
func NewTable() *Table {
	t := &Table{
		jobs:  make(map[int]*Job),
		byPid: make(map[int]int),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// nextNum computes the smallest unused positive integer (invariant
// I3). Must be called with mu held.
func (t *Table) nextNum() int {
	n := 1
	for {
		if _, ok := t.jobs[n]; !ok {
			return n
		}
		n++
	}
}

// AddJob allocates a new job number and inserts a job in the given
// initial state with no processes yet. The caller must populate its
// processes via AddProcess before the job is usable.
func (t *Table) AddJob(initial State) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	num := t.nextNum()
	j := &Job{Num: num, State: initial}
	t.jobs[num] = j
	return j
}

// AddProcess appends a process to the job numbered num. The first
// process appended to a job fixes that job's Gid (invariant I4).
func (t *Table) AddProcess(num int, p Process) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[num]
	if !ok {
		return &jsherr.NoSuchJob{Num: num}
	}
	if len(j.Processes) == 0 {
		j.Gid = p.Pid
	}
	j.Processes = append(j.Processes, p)
	t.byPid[p.Pid] = num
	return nil
}

// AttachGroup sets a job's Gid explicitly; used when the group leader
// was determined by a means other than "first process added" (it is
// rarely needed given AddProcess's behavior, but is kept as an escape
// hatch for callers that know the Gid before any Process exists).
func (t *Table) AttachGroup(num, gid int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[num]
	if !ok {
		return &jsherr.NoSuchJob{Num: num}
	}
	j.Gid = gid
	return nil
}

// RemoveJob deletes a job and its pid index entries unconditionally.
// Used by the launcher to clean up a job that failed to spawn any
// process at all.
func (t *Table) RemoveJob(num int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(num)
}

func (t *Table) removeLocked(num int) {
	j, ok := t.jobs[num]
	if !ok {
		return
	}
	for _, p := range j.Processes {
		delete(t.byPid, p.Pid)
	}
	delete(t.jobs, num)
	t.cond.Broadcast()
}

// ContainsJob reports whether num names a live job.
func (t *Table) ContainsJob(num int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.jobs[num]
	return ok
}

// ContainsProcess reports whether pid names a known process.
func (t *Table) ContainsProcess(pid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.byPid[pid]
	return ok
}

// JobByNum returns a snapshot copy of the job numbered num.
func (t *Table) JobByNum(num int) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[num]
	if !ok {
		return Job{}, &jsherr.NoSuchJob{Num: num}
	}
	return cloneJob(j), nil
}

// JobByPid returns a snapshot copy of the job containing pid.
func (t *Table) JobByPid(pid int) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	num, ok := t.byPid[pid]
	if !ok {
		return Job{}, &jsherr.NoSuchProcess{Pid: pid}
	}
	return cloneJob(t.jobs[num]), nil
}

func cloneJob(j *Job) Job {
	cp := *j
	cp.Processes = append([]Process(nil), j.Processes...)
	return cp
}

// SetProcessState updates the state of the process identified by pid
// and then synchronizes its job (removing it if every process has
// terminated). Returns NoSuchProcess if pid is unknown.
func (t *Table) SetProcessState(pid int, state ProcessState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	num, ok := t.byPid[pid]
	if !ok {
		return &jsherr.NoSuchProcess{Pid: pid}
	}
	j := t.jobs[num]
	for i := range j.Processes {
		if j.Processes[i].Pid == pid {
			j.Processes[i].State = state
			break
		}
	}
	t.synchronizeLocked(j)
	t.cond.Broadcast()
	return nil
}

// SetJobState updates a job's Foreground/Background tag. Promoting a
// job to Foreground while another job already holds that state fails
// with AlreadyForeground (invariant I1); the caller is responsible for
// demoting the existing foreground job first.
func (t *Table) SetJobState(num int, state State) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[num]
	if !ok {
		return &jsherr.NoSuchJob{Num: num}
	}
	if state == Foreground {
		for n, other := range t.jobs {
			if n != num && other.State == Foreground {
				return &jsherr.AlreadyForeground{Existing: n}
			}
		}
	}
	j.State = state
	t.cond.Broadcast()
	return nil
}

// Foreground returns the current foreground job, if any.
func (t *Table) Foreground() (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		if j.State == Foreground {
			return cloneJob(j), true
		}
	}
	return Job{}, false
}

// HasForeground reports whether any job currently holds the
// Foreground state.
func (t *Table) HasForeground() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasForegroundLocked()
}

func (t *Table) hasForegroundLocked() bool {
	for _, j := range t.jobs {
		if j.State == Foreground {
			return true
		}
	}
	return false
}

// WaitForForeground blocks until no job holds the Foreground state.
// It is the Go-native restatement of the original spec's
// sigsuspend-based suspension primitive: every mutation that could
// affect foreground status broadcasts the table's condition variable,
// and the predicate is re-checked on every wakeup.
func (t *Table) WaitForForeground() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.hasForegroundLocked() {
		t.cond.Wait()
	}
}

// Synchronize removes the job numbered num if every one of its processes
// has terminated. This is the only place a job is ever removed as a
// result of process-state changes (invariant I2).
func (t *Table) Synchronize(num int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[num]
	if !ok {
		return
	}
	t.synchronizeLocked(j)
}

func (t *Table) synchronizeLocked(j *Job) {
	if !j.Alive() {
		t.removeLocked(j.Num)
	}
}

// Render produces the deterministic jobs listing: one line per live
// job in ascending Num order, each followed by one line per process.
func (t *Table) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	nums := make([]int, 0, len(t.jobs))
	for n := range t.jobs {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var b strings.Builder
	for _, n := range nums {
		j := t.jobs[n]
		b.WriteString("[" + strconv.Itoa(j.Num) + "] " + j.State.String() + " gid=" + strconv.Itoa(j.Gid) + "\n")
		for _, p := range j.Processes {
			b.WriteString("\t" + p.String() + "\n")
		}
	}
	return b.String()
}
