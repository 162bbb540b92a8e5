package judge

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/core"
)

// runCase spawns the compiled artifact, pipes the case's input to its
// stdin, waits up to the case's time limit, and applies the problem's
// comparison policy to its stdout.
func (p *Pipeline) runCase(ctx context.Context, workDir, outputPath string, prob *config.Problem, c config.Case) (core.Verdict, int64, string) {
	input, err := os.ReadFile(c.InputFile)
	if err != nil {
		return core.SystemError, 0, err.Error()
	}

	timeout := time.Duration(c.TimeLimitUS) * time.Microsecond
	caseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(caseCtx, outputPath)
	cmd.Stdin = bytes.NewReader(input)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Microseconds()

	if caseCtx.Err() == context.DeadlineExceeded {
		return core.TimeLimitExceeded, elapsed, ""
	}
	if runErr != nil {
		return core.RuntimeError, elapsed, runErr.Error()
	}

	if prob.Type == config.SPJ {
		verdict, info, err := p.runSpecialJudge(ctx, workDir, prob, c, stdout.String())
		if err != nil {
			return core.SystemError, elapsed, err.Error()
		}
		return verdict, elapsed, info
	}

	answer, err := os.ReadFile(c.AnswerFile)
	if err != nil {
		return core.SystemError, elapsed, err.Error()
	}

	if compare(prob.Type, stdout.String(), string(answer)) {
		return core.Accepted, elapsed, ""
	}
	return core.WrongAnswer, elapsed, ""
}
