package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/oj-engine/gojudge/internal/core"
	"go.uber.org/zap"
)

// snapshotInterval matches the judge's fixed 500ms persistence tick.
const snapshotInterval = 500 * time.Millisecond

const (
	jobsFile     = "jobs.json"
	usersFile    = "users.json"
	contestsFile = "contests.json"
)

// Registries bundles the three process-wide stores the persister snapshots
// together.
type Registries struct {
	Jobs     *JobRegistry
	Users    *UserRegistry
	Contests *ContestRegistry
}

func New() *Registries {
	return &Registries{
		Jobs:     NewJobRegistry(),
		Users:    NewUserRegistry(),
		Contests: NewContestRegistry(),
	}
}

// Bootstrap either starts the registries empty (flushData) or reloads
// them from the three snapshot files. A missing or malformed snapshot
// file is a startup failure when not flushing.
func (rs *Registries) Bootstrap(flushData bool) error {
	if flushData {
		rs.Users.SeedRoot()
		rs.Contests.SeedImplicit()
		return nil
	}
	return rs.reload()
}

func (rs *Registries) reload() error {
	var jobs []core.Job
	if err := readJSON(jobsFile, &jobs); err != nil {
		return fmt.Errorf("load %s: %w", jobsFile, err)
	}
	var users []core.User
	if err := readJSON(usersFile, &users); err != nil {
		return fmt.Errorf("load %s: %w", usersFile, err)
	}
	var contests []core.Contest
	if err := readJSON(contestsFile, &contests); err != nil {
		return fmt.Errorf("load %s: %w", contestsFile, err)
	}

	rs.Jobs.Restore(jobs)
	rs.Users.Restore(users)
	rs.Contests.Restore(contests)
	rs.recoverInterrupted()
	return nil
}

// recoverInterrupted marks any job left Queueing or Running by a crash or
// unclean shutdown as Finished/SystemError, the same treatment the
// judge's startup recovery step gives orphaned submissions.
func (rs *Registries) recoverInterrupted() {
	jobs := rs.Jobs.Snapshot()
	recovered := 0
	for i := range jobs {
		j := &jobs[i]
		if j.State == core.Queueing || j.State == core.JobRunning {
			j.State = core.Finished
			j.Result = core.SystemError
			j.Touch()
			recovered++
		}
	}
	if recovered > 0 {
		zap.S().Warnf("recovered %d job(s) interrupted by restart", recovered)
		rs.Jobs.Restore(jobs)
	}
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Persister periodically snapshots the registries to disk.
type Persister struct {
	registries *Registries
	stop       chan struct{}
	done       chan struct{}
}

func NewPersister(rs *Registries) *Persister {
	return &Persister{registries: rs, stop: make(chan struct{}), done: make(chan struct{})}
}

// Run ticks every snapshotInterval until Stop is called, then performs one
// final snapshot before returning.
func (p *Persister) Run() {
	defer close(p.done)
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.snapshotOnce()
		case <-p.stop:
			p.snapshotOnce()
			return
		}
	}
}

// Stop requests the persister's goroutine to take a final snapshot and
// exit, blocking until it has.
func (p *Persister) Stop() {
	close(p.stop)
	<-p.done
}

func (p *Persister) snapshotOnce() {
	// Clone under each registry's own lock, then write outside any lock,
	// per the judge's "lock -> copy -> unlock -> do the slow part" rule.
	jobs := p.registries.Jobs.Snapshot()
	users := p.registries.Users.Snapshot()
	contests := p.registries.Contests.Snapshot()

	if err := writeJSON(jobsFile, jobs); err != nil {
		zap.S().Errorf("snapshot %s: %v", jobsFile, err)
	}
	if err := writeJSON(usersFile, users); err != nil {
		zap.S().Errorf("snapshot %s: %v", usersFile, err)
	}
	if err := writeJSON(contestsFile, contests); err != nil {
		zap.S().Errorf("snapshot %s: %v", contestsFile, err)
	}
}
