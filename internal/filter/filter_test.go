package filter

import (
	"testing"
	"time"

	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/registry"
	"github.com/stretchr/testify/require"
)

func ts(sec int64) core.Timestamp {
	return core.Timestamp(time.Unix(sec, 0).UTC())
}

func TestApplyTimeBoundsExclusive(t *testing.T) {
	users := registry.NewUserRegistry()
	jobs := []core.Job{
		{ID: 0, CreatedTime: ts(100), Submission: core.Submission{UserID: 0}},
		{ID: 1, CreatedTime: ts(200), Submission: core.Submission{UserID: 0}},
		{ID: 2, CreatedTime: ts(300), Submission: core.Submission{UserID: 0}},
	}
	from, to := ts(100), ts(300)

	out := Apply(jobs, users, Filter{From: &from, To: &to})
	require.Len(t, out, 1)
	require.Equal(t, 1, out[0].ID)
}

func TestApplyUserNameResolvesThroughRegistry(t *testing.T) {
	users := registry.NewUserRegistry()
	users.Upsert(nil, "alice")
	users.Upsert(nil, "bob")

	jobs := []core.Job{
		{ID: 0, Submission: core.Submission{UserID: 0}},
		{ID: 1, Submission: core.Submission{UserID: 1}},
	}
	name := "bob"
	out := Apply(jobs, users, Filter{UserName: &name})
	require.Len(t, out, 1)
	require.Equal(t, 1, out[0].ID)
}

func TestApplyConjunction(t *testing.T) {
	users := registry.NewUserRegistry()
	jobs := []core.Job{
		{ID: 0, Submission: core.Submission{UserID: 1, ProblemID: 2, ContestID: 3}},
		{ID: 1, Submission: core.Submission{UserID: 1, ProblemID: 2, ContestID: 4}},
	}
	uid, pid, cid := 1, 2, 3
	out := Apply(jobs, users, Filter{UserID: &uid, ProblemID: &pid, ContestID: &cid})
	require.Len(t, out, 1)
	require.Equal(t, 0, out[0].ID)
}
