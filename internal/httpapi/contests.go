package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/rank"
)

type contestRequest struct {
	ID              *int           `json:"id"`
	Name            string         `json:"name"`
	From            core.Timestamp `json:"from"`
	To              core.Timestamp `json:"to"`
	ProblemIDs      []int          `json:"problem_ids"`
	UserIDs         []int          `json:"user_ids"`
	SubmissionLimit int            `json:"submission_limit"`
}

// createContest implements POST /contests: appends a new contest, or
// replaces an existing one when `id` is supplied.
func (h *Handler) createContest(c *gin.Context) {
	var req contestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, core.InvalidArgument("malformed request body: %v", err))
		return
	}

	contest := core.Contest{
		Name:            req.Name,
		From:            req.From,
		To:              req.To,
		ProblemIDs:      req.ProblemIDs,
		UserIDs:         req.UserIDs,
		SubmissionLimit: req.SubmissionLimit,
	}

	out, err := h.rs.Contests.Upsert(req.ID, contest, h.rs.Users, h.cfg)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, out)
}

// listContests implements GET /contests, excluding the implicit contest 0.
func (h *Handler) listContests(c *gin.Context) {
	all := h.rs.Contests.All()
	out := make([]core.Contest, 0, len(all))
	for _, ct := range all {
		if ct.ID == 0 {
			continue
		}
		out = append(out, ct)
	}
	Success(c, out)
}

// getContest implements GET /contests/{id}.
func (h *Handler) getContest(c *gin.Context) {
	id, err := pathInt(c, "id")
	if err != nil {
		Fail(c, err)
		return
	}
	contest, ok := h.rs.Contests.Get(id)
	if !ok {
		Fail(c, core.NotFound("contest %d not found", id))
		return
	}
	Success(c, contest)
}

// getRanklist implements GET /contests/{id}/ranklist.
func (h *Handler) getRanklist(c *gin.Context) {
	id, err := pathInt(c, "id")
	if err != nil {
		Fail(c, err)
		return
	}

	rule := rank.Rule{
		ScoringRule: rank.ScoringRule(queryOr(c, "scoring_rule", string(rank.Latest))),
		TieBreaker:  rank.TieBreaker(queryOr(c, "tie_breaker", string(rank.NoTieBreaker))),
	}

	out, err := rank.Compute(id, h.rs.Contests, h.rs.Jobs.All(), h.rs.Users, h.cfg, rule)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, out)
}

func queryOr(c *gin.Context, name, def string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return def
}
