// Package registry holds the judge's process-wide state: Jobs, Users and
// Contests, each a dense-id slice guarded by its own coarse RWMutex,
// mirroring the coarse per-registry locking discipline the judge's
// scheduler uses for its cluster/node maps.
package registry

import (
	"sync"

	"github.com/oj-engine/gojudge/internal/core"
)

// JobRegistry is the append-only, update-in-place store of Jobs.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs []core.Job
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{}
}

// Allocate appends a new Job with an id equal to the registry's current
// length and returns a clone of it. Long-running judging must happen
// outside any registry lock; callers take the clone, run the pipeline,
// then call Commit.
func (r *JobRegistry) Allocate(sub core.Submission) *core.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := core.Now()
	job := core.Job{
		ID:          len(r.jobs),
		CreatedTime: now,
		UpdatedTime: now,
		Submission:  sub,
		State:       core.Queueing,
		Result:      core.Waiting,
	}
	r.jobs = append(r.jobs, job)
	return job.Clone()
}

// Commit overwrites the stored job at job.ID, preserving CreatedTime.
func (r *JobRegistry) Commit(job *core.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.ID < 0 || job.ID >= len(r.jobs) {
		return
	}
	job.CreatedTime = r.jobs[job.ID].CreatedTime
	r.jobs[job.ID] = *job.Clone()
}

// Get returns a clone of the job with the given id, or false if unknown.
func (r *JobRegistry) Get(id int) (*core.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || id >= len(r.jobs) {
		return nil, false
	}
	return r.jobs[id].Clone(), true
}

// All returns a clone of every job, in id order.
func (r *JobRegistry) All() []core.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Job, len(r.jobs))
	for i := range r.jobs {
		out[i] = *r.jobs[i].Clone()
	}
	return out
}

// CountByUserProblemContest returns how many jobs the given user has
// submitted for problemID within contestID, used to enforce a contest's
// per-problem submission limit.
func (r *JobRegistry) CountByUserProblemContest(userID, problemID, contestID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for i := range r.jobs {
		s := r.jobs[i].Submission
		if s.UserID == userID && s.ProblemID == problemID && s.ContestID == contestID {
			n++
		}
	}
	return n
}

// CountByUserProblemContestExcluding is CountByUserProblemContest but
// ignores excludeJobID, used by PUT re-evaluation so a job that used the
// contest's last submission slot can still be re-judged.
func (r *JobRegistry) CountByUserProblemContestExcluding(userID, problemID, contestID, excludeJobID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for i := range r.jobs {
		if r.jobs[i].ID == excludeJobID {
			continue
		}
		s := r.jobs[i].Submission
		if s.UserID == userID && s.ProblemID == problemID && s.ContestID == contestID {
			n++
		}
	}
	return n
}

// Snapshot returns a deep copy of every job for persistence.
func (r *JobRegistry) Snapshot() []core.Job {
	return r.All()
}

// Restore replaces the registry's contents, used when reloading from a
// snapshot file at startup.
func (r *JobRegistry) Restore(jobs []core.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append([]core.Job(nil), jobs...)
}

// Len reports how many jobs exist.
func (r *JobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
