package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/filter"
)

// createJob implements POST /jobs: validate + run a submission
// synchronously, returning the finished job.
func (h *Handler) createJob(c *gin.Context) {
	var sub core.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		Fail(c, core.InvalidArgument("malformed request body: %v", err))
		return
	}

	job, err := h.pipeline.Submit(c.Request.Context(), sub)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, job)
}

// listJobs implements GET /jobs?…, applying the query's filter to every
// stored job.
func (h *Handler) listJobs(c *gin.Context) {
	f, err := parseJobFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}

	jobs := filter.Apply(h.rs.Jobs.All(), h.rs.Users, f)
	Success(c, jobs)
}

// getJob implements GET /jobs/{id}.
func (h *Handler) getJob(c *gin.Context) {
	id, err := pathInt(c, "id")
	if err != nil {
		Fail(c, err)
		return
	}
	job, ok := h.rs.Jobs.Get(id)
	if !ok {
		Fail(c, core.NotFound("job %d not found", id))
		return
	}
	Success(c, job)
}

// rerunJob implements PUT /jobs/{id}: re-judges the stored submission.
func (h *Handler) rerunJob(c *gin.Context) {
	id, err := pathInt(c, "id")
	if err != nil {
		Fail(c, err)
		return
	}
	job, err := h.pipeline.Rerun(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, job)
}

func pathInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, core.InvalidArgument("%s must be an integer", name)
	}
	return v, nil
}

func parseJobFilter(c *gin.Context) (filter.Filter, error) {
	var f filter.Filter

	if v := c.Query("user_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, core.InvalidArgument("user_id must be an integer")
		}
		f.UserID = &n
	}
	if v := c.Query("user_name"); v != "" {
		f.UserName = &v
	}
	if v := c.Query("contest_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, core.InvalidArgument("contest_id must be an integer")
		}
		f.ContestID = &n
	}
	if v := c.Query("problem_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, core.InvalidArgument("problem_id must be an integer")
		}
		f.ProblemID = &n
	}
	if v := c.Query("language"); v != "" {
		f.Language = &v
	}
	if v := c.Query("from"); v != "" {
		ts, err := core.ParseTimestamp(v)
		if err != nil {
			return f, core.InvalidArgument("from: %v", err)
		}
		f.From = &ts
	}
	if v := c.Query("to"); v != "" {
		ts, err := core.ParseTimestamp(v)
		if err != nil {
			return f, core.InvalidArgument("to: %v", err)
		}
		f.To = &ts
	}
	if v := c.Query("state"); v != "" {
		s := core.State(v)
		f.State = &s
	}
	if v := c.Query("result"); v != "" {
		verdict, ok := core.ParseVerdict(v)
		if !ok {
			return f, core.InvalidArgument("result: unknown verdict %q", v)
		}
		f.Result = &verdict
	}

	return f, nil
}
