// Package judge implements the per-submission judging pipeline: source
// materialization, compile step, per-case execution under a wall-clock
// budget, output comparison, and packed-case scoring.
package judge

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/registry"
)

// UpdateFunc is called with a clone of the job after every state change
// during a run, letting the HTTP surface stream progress (see
// internal/httpapi's job-stream websocket). May be nil.
type UpdateFunc func(job *core.Job)

// Pipeline runs submissions against the judge's registries and config.
type Pipeline struct {
	Config    *config.Config
	Jobs      *registry.JobRegistry
	Users     *registry.UserRegistry
	Contests  *registry.ContestRegistry
	WorkRoot  string
	OnUpdate  UpdateFunc
}

func NewPipeline(cfg *config.Config, rs *registry.Registries, workRoot string) *Pipeline {
	return &Pipeline{
		Config:   cfg,
		Jobs:     rs.Jobs,
		Users:    rs.Users,
		Contests: rs.Contests,
		WorkRoot: workRoot,
	}
}

// Submit validates a new submission, allocates its Job, runs the judge,
// and commits the finished Job. It never holds a registry lock across
// process execution: allocate -> clone -> unlock -> run -> commit.
func (p *Pipeline) Submit(ctx context.Context, sub core.Submission) (*core.Job, error) {
	lang, prob, err := p.validateSubmission(sub)
	if err != nil {
		return nil, err
	}

	job := p.Jobs.Allocate(sub)
	p.runAndCommit(ctx, job, lang, prob)
	return job, nil
}

// Rerun re-judges the stored submission of an existing job. It skips
// the contest-window check (the window may have since closed, and that
// shouldn't block re-judging a submission that was valid when made) but
// still enforces the submission limit, excluding this job's own prior
// count.
func (p *Pipeline) Rerun(ctx context.Context, jobID int) (*core.Job, error) {
	existing, ok := p.Jobs.Get(jobID)
	if !ok {
		return nil, core.NotFound("job %d not found", jobID)
	}
	sub := existing.Submission

	lang, ok := p.Config.FindLanguage(sub.Language)
	if !ok {
		return nil, core.NotFound("language %q not found", sub.Language)
	}
	prob, ok := p.Config.FindProblem(sub.ProblemID)
	if !ok {
		return nil, core.NotFound("problem %d not found", sub.ProblemID)
	}
	if !p.Users.Exists(sub.UserID) {
		return nil, core.NotFound("user %d not found", sub.UserID)
	}

	if sub.ContestID != 0 {
		contest, ok := p.Contests.Get(sub.ContestID)
		if !ok {
			return nil, core.NotFound("contest %d not found", sub.ContestID)
		}
		count := p.Jobs.CountByUserProblemContestExcluding(sub.UserID, sub.ProblemID, sub.ContestID, jobID)
		if contest.SubmissionLimit > 0 && count >= contest.SubmissionLimit {
			return nil, core.RateLimit("submission limit reached for this problem in this contest")
		}
	}

	existing.State = core.Queueing
	existing.Result = core.Waiting
	existing.Score = 0
	p.Jobs.Commit(existing)

	p.runAndCommit(ctx, existing, lang, prob)
	return existing, nil
}

func (p *Pipeline) validateSubmission(sub core.Submission) (*config.Language, *config.Problem, error) {
	lang, ok := p.Config.FindLanguage(sub.Language)
	if !ok {
		return nil, nil, core.NotFound("language %q not found", sub.Language)
	}
	prob, ok := p.Config.FindProblem(sub.ProblemID)
	if !ok {
		return nil, nil, core.NotFound("problem %d not found", sub.ProblemID)
	}

	if sub.ContestID != 0 {
		contest, ok := p.Contests.Get(sub.ContestID)
		if !ok {
			return nil, nil, core.NotFound("contest %d not found", sub.ContestID)
		}
		if !contest.HasUser(sub.UserID) {
			return nil, nil, core.InvalidArgument("user %d is not registered for contest %d", sub.UserID, sub.ContestID)
		}
		if !contest.HasProblem(sub.ProblemID) {
			return nil, nil, core.InvalidArgument("problem %d is not part of contest %d", sub.ProblemID, sub.ContestID)
		}
		if !contest.InWindow(core.Now()) {
			return nil, nil, core.InvalidArgument("contest %d is not currently active", sub.ContestID)
		}
		count := p.Jobs.CountByUserProblemContest(sub.UserID, sub.ProblemID, sub.ContestID)
		if contest.SubmissionLimit > 0 && count >= contest.SubmissionLimit {
			return nil, nil, core.RateLimit("submission limit reached for this problem in this contest")
		}
	}

	if !p.Users.Exists(sub.UserID) {
		return nil, nil, core.NotFound("user %d not found", sub.UserID)
	}

	return lang, prob, nil
}

// runAndCommit runs the judge for job against lang/prob and commits the
// result, regardless of outcome: there are no retries, and the Job is
// always committed Finished.
func (p *Pipeline) runAndCommit(ctx context.Context, job *core.Job, lang *config.Language, prob *config.Problem) {
	p.notify(job)
	if err := p.run(ctx, job, lang, prob); err != nil {
		zap.S().Errorf("job %d: %v", job.ID, err)
		if job.Result == core.Waiting {
			job.Result = core.SystemError
		}
		job.State = core.Finished
		job.Touch()
	}
	p.Jobs.Commit(job)
	p.notify(job)
}

func (p *Pipeline) notify(job *core.Job) {
	if p.OnUpdate != nil {
		p.OnUpdate(job.Clone())
	}
}

func (p *Pipeline) run(ctx context.Context, job *core.Job, lang *config.Language, prob *config.Problem) error {
	job.Cases = make([]core.CaseResult, len(prob.Cases)+1)
	for i := range job.Cases {
		job.Cases[i] = core.NewCaseResult(i)
	}
	job.Score = 0
	job.Result = core.Waiting
	job.State = core.Queueing
	job.Touch()

	workDir := filepath.Join(p.WorkRoot, fmt.Sprintf("problem_%d_%s", prob.ID, uuid.NewString()))
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return core.Internal("create working directory: %v", err)
	}
	defer os.RemoveAll(workDir)

	sourcePath := filepath.Join(workDir, lang.FileName)
	outputPath := filepath.Join(workDir, fmt.Sprintf("job_%d", job.Submission.UserID))

	cmdTokens, err := substituteCommand(lang.Command, sourcePath, outputPath)
	if err != nil {
		return core.Internal("%v", err)
	}

	if err := os.WriteFile(sourcePath, []byte(job.Submission.SourceCode), 0644); err != nil {
		return core.Internal("write source file: %v", err)
	}

	if err := p.compile(ctx, job, cmdTokens); err != nil {
		return err
	}
	if job.State == core.Finished {
		// Compile failed; job already finalized by p.compile.
		return nil
	}

	p.executePacks(ctx, job, prob, workDir, outputPath)

	ratio := prob.Misc.Ratio()
	if job.Result == core.Waiting && math.Abs(job.Score-100*(1-ratio)) < 1e-6 {
		job.Result = core.Accepted
	}
	job.State = core.Finished
	job.Touch()
	return nil
}

func (p *Pipeline) compile(ctx context.Context, job *core.Job, cmdTokens []string) error {
	start := time.Now()
	cmd := exec.CommandContext(ctx, cmdTokens[0], cmdTokens[1:]...)
	runErr := cmd.Run()
	elapsed := time.Since(start).Microseconds()

	job.Cases[0].Time = elapsed
	if runErr != nil {
		job.Cases[0].Result = core.CompilationError
		job.Cases[0].Info = runErr.Error()
		job.Result = core.CompilationError
		job.State = core.Finished
		job.Touch()
		return nil
	}

	job.Cases[0].Result = core.CompilationSuccess
	job.State = core.JobRunning
	job.Touch()
	p.notify(job)
	return nil
}

// executePacks runs each pack in order, short-circuiting the rest of a
// pack as Skipped once a non-Accepted case is hit.
func (p *Pipeline) executePacks(ctx context.Context, job *core.Job, prob *config.Problem, workDir, outputPath string) {
	ratio := prob.Misc.Ratio()

	for _, pack := range prob.Packs() {
		accepted := true
		packScore := 0.0

		for _, caseID := range pack {
			if !accepted {
				job.Cases[caseID] = core.CaseResult{ID: caseID, Result: core.Skipped}
				continue
			}

			caseCfg := prob.Cases[caseID-1]
			result, elapsed, info := p.runCase(ctx, workDir, outputPath, prob, caseCfg)
			job.Cases[caseID] = core.CaseResult{ID: caseID, Result: result, Time: elapsed, Info: info}
			job.Touch()
			p.notify(job)

			if result == core.Accepted {
				packScore += caseCfg.Score * (1 - ratio)
			} else {
				accepted = false
				packScore = 0
				if job.Result == core.Waiting {
					job.Result = result
				}
			}
		}

		job.Score += packScore
	}
}

// substituteCommand replaces the single %INPUT% and %OUTPUT% tokens of
// command with sourcePath and outputPath, without mutating the shared
// Language template.
func substituteCommand(command []string, sourcePath, outputPath string) ([]string, error) {
	out := make([]string, len(command))
	copy(out, command)

	inputIdx, outputIdx := -1, -1
	for i, tok := range out {
		switch tok {
		case "%INPUT%":
			inputIdx = i
		case "%OUTPUT%":
			outputIdx = i
		}
	}
	if inputIdx < 0 || outputIdx < 0 {
		return nil, fmt.Errorf("language command missing %%INPUT%% or %%OUTPUT%% token")
	}
	out[inputIdx] = sourcePath
	out[outputIdx] = outputPath
	return out, nil
}
