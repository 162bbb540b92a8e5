package judge

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/core"
)

// runSpecialJudge invokes the problem's external adjudicator: the user
// program's captured stdout is written to a file under the job's working
// directory, the judge's %OUTPUT%/%ANSWER% tokens are substituted with
// that file and the case's answer file, and the judge's own stdout is
// parsed for a verdict.
func (p *Pipeline) runSpecialJudge(ctx context.Context, workDir string, prob *config.Problem, c config.Case, output string) (core.Verdict, string, error) {
	outputFile := filepath.Join(workDir, fmt.Sprintf("spj_output_%s", uuid.NewString()))
	if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
		return "", "", fmt.Errorf("write spj output file: %w", err)
	}
	defer os.Remove(outputFile)

	cmdTokens, err := substituteSpecialJudgeCommand(prob.Misc.SpecialJudge, outputFile, c.AnswerFile)
	if err != nil {
		return "", "", err
	}

	cmd := exec.CommandContext(ctx, cmdTokens[0], cmdTokens[1:]...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	runErr := cmd.Run()
	if runErr != nil {
		// Matches the original judge's behavior: a non-zero SPJ exit is
		// treated as Accepted rather than SPJError.
		return core.Accepted, "", nil
	}

	return parseSpecialJudgeVerdict(stdout.String())
}

func substituteSpecialJudgeCommand(command []string, outputFile, answerFile string) ([]string, error) {
	out := make([]string, len(command))
	copy(out, command)

	outputIdx, answerIdx := -1, -1
	for i, tok := range out {
		switch tok {
		case "%OUTPUT%":
			outputIdx = i
		case "%ANSWER%":
			answerIdx = i
		}
	}
	if outputIdx < 0 || answerIdx < 0 {
		return nil, fmt.Errorf("special_judge command missing %%OUTPUT%% or %%ANSWER%% token")
	}
	out[outputIdx] = outputFile
	out[answerIdx] = answerFile
	return out, nil
}

// parseSpecialJudgeVerdict reads the first line of the judge's stdout as a
// Verdict name, and the second line (if present) as case info.
func parseSpecialJudgeVerdict(stdout string) (core.Verdict, string, error) {
	lines := strings.Split(stdout, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return core.SPJError, "", nil
	}

	verdict, ok := core.ParseVerdict(strings.TrimSpace(lines[0]))
	if !ok {
		return core.SystemError, "", nil
	}

	info := ""
	if len(lines) > 1 {
		info = strings.TrimRight(lines[1], "\r")
	}
	return verdict, info, nil
}
