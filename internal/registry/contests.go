package registry

import (
	"math"
	"sync"
	"time"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/core"
)

// ContestRegistry is the append/update store of Contests. Contest 0 is
// the implicit global contest and always exists.
type ContestRegistry struct {
	mu       sync.RWMutex
	contests []core.Contest
}

func NewContestRegistry() *ContestRegistry {
	return &ContestRegistry{}
}

// minTime / maxTime bound the implicit contest 0's window.
var (
	minTime = core.Timestamp(time.Unix(math.MinInt32, 0).UTC())
	maxTime = core.Timestamp(time.Unix(math.MaxInt32, 0).UTC())
)

// SeedImplicit appends contest 0, used only when starting with
// --flush-data.
func (r *ContestRegistry) SeedImplicit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.contests) == 0 {
		r.contests = append(r.contests, core.Contest{
			ID:      0,
			Name:    "Global",
			From:    minTime,
			To:      maxTime,
			UserIDs: []int{0},
		})
	}
}

// Upsert validates user_ids against users and problem_ids against cfg,
// then appends a new contest (id nil) or replaces an existing one (id
// set and in range).
func (r *ContestRegistry) Upsert(id *int, c core.Contest, users *UserRegistry, cfg *config.Config) (*core.Contest, error) {
	for _, uid := range c.UserIDs {
		if !users.Exists(uid) {
			return nil, core.NotFound("user %d not found", uid)
		}
	}
	for _, pid := range c.ProblemIDs {
		if _, ok := cfg.FindProblem(pid); !ok {
			return nil, core.NotFound("problem %d not found", pid)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id == nil {
		c.ID = len(r.contests)
		r.contests = append(r.contests, c)
		out := c
		return &out, nil
	}

	if *id < 0 || *id >= len(r.contests) {
		return nil, core.NotFound("contest %d not found", *id)
	}
	c.ID = *id
	r.contests[*id] = c
	out := c
	return &out, nil
}

// Get looks up a contest by id.
func (r *ContestRegistry) Get(id int) (*core.Contest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.contests) {
		return nil, false
	}
	c := r.contests[id]
	return &c, true
}

// All returns every contest, in id order.
func (r *ContestRegistry) All() []core.Contest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]core.Contest(nil), r.contests...)
}

// Snapshot returns a copy of every contest for persistence.
func (r *ContestRegistry) Snapshot() []core.Contest {
	return r.All()
}

// Restore replaces the registry's contents.
func (r *ContestRegistry) Restore(contests []core.Contest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contests = append([]core.Contest(nil), contests...)
}
