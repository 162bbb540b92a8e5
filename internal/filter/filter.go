// Package filter implements the conjunction-of-optional-fields predicate
// GET /jobs applies to the job list.
package filter

import (
	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/registry"
)

// Filter holds the optional query fields of GET /jobs. A nil field
// imposes no constraint; From/To are exclusive bounds.
type Filter struct {
	UserID    *int
	UserName  *string
	ContestID *int
	ProblemID *int
	Language  *string
	From      *core.Timestamp
	To        *core.Timestamp
	State     *core.State
	Result    *core.Verdict
}

// Apply returns the subset of jobs matching every provided field.
// ContestID is honored as a real filter rather than silently ignored.
func Apply(jobs []core.Job, users *registry.UserRegistry, f Filter) []core.Job {
	out := make([]core.Job, 0, len(jobs))
	for _, job := range jobs {
		if matches(job, users, f) {
			out = append(out, job)
		}
	}
	return out
}

func matches(job core.Job, users *registry.UserRegistry, f Filter) bool {
	s := job.Submission

	if f.UserID != nil && s.UserID != *f.UserID {
		return false
	}
	if f.UserName != nil {
		u, ok := users.Get(s.UserID)
		if !ok || u.Name != *f.UserName {
			return false
		}
	}
	if f.ContestID != nil && s.ContestID != *f.ContestID {
		return false
	}
	if f.ProblemID != nil && s.ProblemID != *f.ProblemID {
		return false
	}
	if f.Language != nil && s.Language != *f.Language {
		return false
	}
	if f.From != nil && !job.CreatedTime.After(*f.From) {
		return false
	}
	if f.To != nil && !job.CreatedTime.Before(*f.To) {
		return false
	}
	if f.State != nil && job.State != *f.State {
		return false
	}
	if f.Result != nil && job.Result != *f.Result {
		return false
	}
	return true
}
