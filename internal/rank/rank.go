// Package rank computes a contest's rank list: per-user effective scores
// across its problem set, the dynamic-ranking bonus, and dense-rank
// assignment under a configurable scoring rule and tie-breaker.
package rank

import (
	"sort"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/registry"
)

type ScoringRule string

const (
	Latest  ScoringRule = "latest"
	Highest ScoringRule = "highest"
)

type TieBreaker string

const (
	BySubmissionTime  TieBreaker = "submission_time"
	BySubmissionCount TieBreaker = "submission_count"
	ByUserID          TieBreaker = "user_id"
	NoTieBreaker      TieBreaker = "none"
)

type Rule struct {
	ScoringRule ScoringRule
	TieBreaker  TieBreaker
}

// UserRank is one row of a computed rank list.
type UserRank struct {
	Rank            int     `json:"rank"`
	UserID          int     `json:"user_id"`
	UserName        string  `json:"user_name"`
	Score           float64 `json:"score"`
	SubmissionCount int     `json:"submission_count"`
}

type userAgg struct {
	userID          int
	userName        string
	score           float64
	latestTime      core.Timestamp
	hasLatestTime   bool
	submissionCount int
}

// Compute builds the rank list for the given contest (0 is the implicit
// global contest, whose problem set is every configured problem).
func Compute(contestID int, contests *registry.ContestRegistry, jobs []core.Job, users *registry.UserRegistry, cfg *config.Config, rule Rule) ([]UserRank, error) {
	contest, ok := contests.Get(contestID)
	if !ok {
		return nil, core.NotFound("contest %d not found", contestID)
	}

	problemIDs := contest.ProblemIDs
	if contestID == 0 {
		problemIDs = make([]int, len(cfg.Problems))
		for i, p := range cfg.Problems {
			problemIDs[i] = p.ID
		}
	}

	aggs := make(map[int]*userAgg, len(contest.UserIDs))
	for _, uid := range contest.UserIDs {
		name := ""
		if u, ok := users.Get(uid); ok {
			name = u.Name
		}
		aggs[uid] = &userAgg{userID: uid, userName: name}
	}

	for _, pid := range problemIDs {
		prob, ok := cfg.FindProblem(pid)
		if !ok {
			continue
		}
		scoreProblem(contestID, prob, jobs, rule.ScoringRule, aggs)
	}

	list := make([]*userAgg, 0, len(aggs))
	for _, a := range aggs {
		list = append(list, a)
	}
	sortAggs(list, rule.TieBreaker)

	out := make([]UserRank, len(list))
	for i, a := range list {
		rankPos := i + 1
		if i > 0 && tiedForRank(list[i-1], a, rule.TieBreaker) {
			rankPos = out[i-1].Rank
		}
		out[i] = UserRank{
			Rank:            rankPos,
			UserID:          a.userID,
			UserName:        a.userName,
			Score:           a.score,
			SubmissionCount: a.submissionCount,
		}
	}
	return out, nil
}

// scoreProblem selects each relevant user's effective job for prob and
// folds its score (plus any dynamic-ranking bonus) into aggs.
func scoreProblem(contestID int, prob *config.Problem, jobs []core.Job, rule ScoringRule, aggs map[int]*userAgg) {
	byUser := make(map[int][]int) // userID -> indices into jobs, in order
	for i, j := range jobs {
		if j.Submission.ProblemID != prob.ID {
			continue
		}
		if contestID != 0 && j.Submission.ContestID != contestID {
			continue
		}
		byUser[j.Submission.UserID] = append(byUser[j.Submission.UserID], i)
	}

	var minCaseTime map[int]int64
	if prob.Type == config.DynamicRanking {
		minCaseTime = minAcceptedCaseTimes(prob, jobs, byUser)
	}

	for userID, agg := range aggs {
		indices := byUser[userID]
		agg.submissionCount += len(indices)
		if len(indices) == 0 {
			continue
		}

		selected := selectJob(jobs, indices, rule)
		job := jobs[selected]

		agg.score += job.Score
		if !agg.hasLatestTime || job.CreatedTime.After(agg.latestTime) {
			agg.latestTime = job.CreatedTime
			agg.hasLatestTime = true
		}

		if prob.Type == config.DynamicRanking && job.Result == core.Accepted {
			agg.score += dynamicBonus(prob, job, minCaseTime, prob.Misc.Ratio())
		}
	}
}

func selectJob(jobs []core.Job, indices []int, rule ScoringRule) int {
	best := indices[0]
	for _, idx := range indices[1:] {
		switch rule {
		case Highest:
			if jobs[idx].Score > jobs[best].Score {
				best = idx
			}
		default: // Latest
			if !jobs[idx].CreatedTime.Before(jobs[best].CreatedTime) {
				best = idx
			}
		}
	}
	return best
}

// minAcceptedCaseTimes computes, for each 1-based case index of prob, the
// minimum cases[c].Time across every Accepted job on this problem within
// the same candidate set used for selection.
func minAcceptedCaseTimes(prob *config.Problem, jobs []core.Job, byUser map[int][]int) map[int]int64 {
	mins := make(map[int]int64)
	for _, indices := range byUser {
		for _, idx := range indices {
			job := jobs[idx]
			if job.Result != core.Accepted {
				continue
			}
			for caseID := 1; caseID <= len(prob.Cases); caseID++ {
				if caseID >= len(job.Cases) {
					continue
				}
				t := job.Cases[caseID].Time
				if cur, ok := mins[caseID]; !ok || t < cur {
					mins[caseID] = t
				}
			}
		}
	}
	return mins
}

func dynamicBonus(prob *config.Problem, job core.Job, minCaseTime map[int]int64, ratio float64) float64 {
	bonus := 0.0
	for caseID := 1; caseID <= len(prob.Cases); caseID++ {
		if caseID >= len(job.Cases) {
			continue
		}
		uT := job.Cases[caseID].Time
		if uT == 0 {
			continue
		}
		minT, ok := minCaseTime[caseID]
		if !ok {
			continue
		}
		caseScore := prob.Cases[caseID-1].Score
		bonus += caseScore * ratio * (float64(minT) / float64(uT))
	}
	return bonus
}

func sortAggs(list []*userAgg, tb TieBreaker) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if less, ok := tieLess(a, b, tb); ok {
			return less
		}
		return a.userID < b.userID
	})
}

// tieLess reports the tie-breaker's ordering of a vs b, and whether the
// tie-breaker actually distinguishes them.
func tieLess(a, b *userAgg, tb TieBreaker) (less bool, distinguishes bool) {
	switch tb {
	case BySubmissionTime:
		if !a.latestTime.Time().Equal(b.latestTime.Time()) {
			return a.latestTime.Before(b.latestTime), true
		}
		return false, false
	case BySubmissionCount:
		if a.submissionCount != b.submissionCount {
			return a.submissionCount < b.submissionCount, true
		}
		return false, false
	case ByUserID:
		if a.userID != b.userID {
			return a.userID < b.userID, true
		}
		return false, false
	default: // NoTieBreaker
		return false, false
	}
}

func tiedForRank(a, b *userAgg, tb TieBreaker) bool {
	if a.score != b.score {
		return false
	}
	_, distinguishes := tieLess(a, b, tb)
	return !distinguishes
}
