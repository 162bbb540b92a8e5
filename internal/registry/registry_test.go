package registry

import (
	"testing"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/core"
	"github.com/stretchr/testify/require"
)

func TestJobRegistryAllocateCommit(t *testing.T) {
	jr := NewJobRegistry()

	j0 := jr.Allocate(core.Submission{UserID: 1, ProblemID: 1})
	j1 := jr.Allocate(core.Submission{UserID: 1, ProblemID: 1})
	require.Equal(t, 0, j0.ID)
	require.Equal(t, 1, j1.ID)

	j0.State = core.Finished
	j0.Result = core.Accepted
	jr.Commit(j0)

	got, ok := jr.Get(0)
	require.True(t, ok)
	require.Equal(t, core.Finished, got.State)
	require.Equal(t, core.Accepted, got.Result)
	require.Equal(t, j0.CreatedTime, got.CreatedTime)
}

func TestJobRegistryCountByUserProblemContest(t *testing.T) {
	jr := NewJobRegistry()
	jr.Allocate(core.Submission{UserID: 1, ProblemID: 1, ContestID: 5})
	jr.Allocate(core.Submission{UserID: 1, ProblemID: 1, ContestID: 5})
	jr.Allocate(core.Submission{UserID: 2, ProblemID: 1, ContestID: 5})

	require.Equal(t, 2, jr.CountByUserProblemContest(1, 1, 5))
	require.Equal(t, 1, jr.CountByUserProblemContest(2, 1, 5))
	require.Equal(t, 0, jr.CountByUserProblemContest(1, 2, 5))
}

func TestUserRegistryUniqueNames(t *testing.T) {
	ur := NewUserRegistry()

	u, err := ur.Upsert(nil, "alice")
	require.NoError(t, err)
	require.Equal(t, 0, u.ID)

	_, err = ur.Upsert(nil, "alice")
	require.Error(t, err)

	id := 0
	u, err = ur.Upsert(&id, "alice2")
	require.NoError(t, err)
	require.Equal(t, "alice2", u.Name)

	missing := 9
	_, err = ur.Upsert(&missing, "bob")
	require.Error(t, err)
}

func TestContestRegistryValidatesReferences(t *testing.T) {
	ur := NewUserRegistry()
	ur.Upsert(nil, "alice")
	cfg := &config.Config{Problems: []config.Problem{{ID: 1}}}

	cr := NewContestRegistry()
	_, err := cr.Upsert(nil, core.Contest{UserIDs: []int{42}}, ur, cfg)
	require.Error(t, err)

	_, err = cr.Upsert(nil, core.Contest{UserIDs: []int{0}, ProblemIDs: []int{99}}, ur, cfg)
	require.Error(t, err)

	c, err := cr.Upsert(nil, core.Contest{UserIDs: []int{0}, ProblemIDs: []int{1}}, ur, cfg)
	require.NoError(t, err)
	require.Equal(t, 0, c.ID)
}
