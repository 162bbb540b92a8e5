package rank

import (
	"testing"
	"time"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/registry"
	"github.com/stretchr/testify/require"
)

func ts(sec int64) core.Timestamp {
	return core.Timestamp(time.Unix(sec, 0).UTC())
}

func setup(t *testing.T, problems []config.Problem, userNames []string) (*registry.Registries, *config.Config) {
	t.Helper()
	cfg := &config.Config{Problems: problems}
	rs := registry.New()
	rs.Contests.SeedImplicit()
	var ids []int
	for _, name := range userNames {
		u, err := rs.Users.Upsert(nil, name)
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	_, err := rs.Contests.Upsert(nil, core.Contest{
		Name: "c", From: ts(0), To: ts(1_000_000), UserIDs: ids, ProblemIDs: problemIDs(problems),
	}, rs.Users, cfg)
	require.NoError(t, err)
	return rs, cfg
}

func problemIDs(problems []config.Problem) []int {
	ids := make([]int, len(problems))
	for i, p := range problems {
		ids[i] = p.ID
	}
	return ids
}

func TestComputeTieBreakBySubmissionCount(t *testing.T) {
	problems := []config.Problem{{ID: 1, Cases: []config.Case{{Score: 100}}}}
	rs, cfg := setup(t, problems, []string{"alice", "bob"})

	// alice: one submission, score 100.
	j := rs.Jobs.Allocate(core.Submission{UserID: 0, ProblemID: 1, ContestID: 1})
	j.Score, j.Result, j.CreatedTime = 100, core.Accepted, ts(10)
	rs.Jobs.Commit(j)

	// bob: three submissions, best is also 100.
	for i, sc := range []float64{40, 60, 100} {
		jb := rs.Jobs.Allocate(core.Submission{UserID: 1, ProblemID: 1, ContestID: 1})
		jb.Score = sc
		jb.CreatedTime = ts(20 + int64(i))
		if sc == 100 {
			jb.Result = core.Accepted
		}
		rs.Jobs.Commit(jb)
	}

	out, err := Compute(1, rs.Contests, rs.Jobs.All(), rs.Users, cfg, Rule{ScoringRule: Highest, TieBreaker: BySubmissionCount})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "alice", out[0].UserName)
	require.Equal(t, 1, out[0].Rank)
	require.Equal(t, "bob", out[1].UserName)
	require.Equal(t, 2, out[1].Rank)
}

func TestComputeDenseRankTies(t *testing.T) {
	problems := []config.Problem{{ID: 1, Cases: []config.Case{{Score: 100}}}}
	rs, cfg := setup(t, problems, []string{"a", "b", "c"})

	for uid := 0; uid < 3; uid++ {
		j := rs.Jobs.Allocate(core.Submission{UserID: uid, ProblemID: 1, ContestID: 1})
		j.Score, j.Result, j.CreatedTime = 100, core.Accepted, ts(int64(uid))
		rs.Jobs.Commit(j)
	}

	out, err := Compute(1, rs.Contests, rs.Jobs.All(), rs.Users, cfg, Rule{ScoringRule: Highest, TieBreaker: NoTieBreaker})
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, row := range out {
		require.Equal(t, 1, row.Rank)
	}
}

func TestComputeNoActivityStillAppearsAtZero(t *testing.T) {
	problems := []config.Problem{{ID: 1, Cases: []config.Case{{Score: 100}}}}
	rs, cfg := setup(t, problems, []string{"idle"})

	out, err := Compute(1, rs.Contests, rs.Jobs.All(), rs.Users, cfg, Rule{ScoringRule: Latest, TieBreaker: NoTieBreaker})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 0.0, out[0].Score)
	require.Equal(t, 1, out[0].Rank)
}
