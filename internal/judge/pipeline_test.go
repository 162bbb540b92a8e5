package judge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/core"
	"github.com/oj-engine/gojudge/internal/registry"
)

// shellLanguage returns a Language whose "compile" step just copies the
// submitted shell script into place and makes it executable, so tests can
// exercise the pipeline without a real compiler toolchain.
func shellLanguage() config.Language {
	return config.Language{
		Name:     "shell",
		FileName: "solution.sh",
		Command:  []string{"/bin/sh", "-c", "cp \"$0\" \"$1\" && chmod +x \"$1\"", "%INPUT%", "%OUTPUT%"},
	}
}

func writeCaseFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newFixture(t *testing.T, problems ...config.Problem) (*Pipeline, *registry.Registries) {
	t.Helper()
	cfg := &config.Config{
		Problems:  problems,
		Languages: []config.Language{shellLanguage()},
	}
	rs := registry.New()
	rs.Users.SeedRoot()
	rs.Contests.SeedImplicit()
	workRoot := t.TempDir()
	return NewPipeline(cfg, rs, workRoot), rs
}

const sumScript = "#!/bin/sh\nread a\nread b\necho $((a + b))\n"

func TestSubmitStandardAccepted(t *testing.T) {
	dir := t.TempDir()
	input := writeCaseFile(t, dir, "1.in", "1\n2\n")
	answer := writeCaseFile(t, dir, "1.ans", "3\n")

	prob := config.Problem{
		ID:   1,
		Name: "a+b",
		Type: config.Standard,
		Cases: []config.Case{
			{Score: 100, InputFile: input, AnswerFile: answer, TimeLimitUS: 1_000_000},
		},
	}
	pipeline, _ := newFixture(t, prob)

	job, err := pipeline.Submit(context.Background(), core.Submission{
		SourceCode: sumScript, Language: "shell", UserID: 0, ProblemID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, core.Accepted, job.Result)
	require.Equal(t, 100.0, job.Score)
	require.Equal(t, core.Accepted, job.Cases[1].Result)
	require.Len(t, job.Cases, 2)
}

func TestSubmitStrictWrongAnswerOnWhitespace(t *testing.T) {
	dir := t.TempDir()
	input := writeCaseFile(t, dir, "1.in", "1\n2\n")
	answer := writeCaseFile(t, dir, "1.ans", "3\n")

	prob := config.Problem{
		ID:   1,
		Type: config.Strict,
		Cases: []config.Case{
			{Score: 100, InputFile: input, AnswerFile: answer, TimeLimitUS: 1_000_000},
		},
	}
	pipeline, _ := newFixture(t, prob)

	noNewlineScript := "#!/bin/sh\nread a\nread b\nprintf '%s' $((a + b))\n"
	job, err := pipeline.Submit(context.Background(), core.Submission{
		SourceCode: noNewlineScript, Language: "shell", UserID: 0, ProblemID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, core.WrongAnswer, job.Result)
	require.Equal(t, 0.0, job.Score)
	require.Equal(t, core.WrongAnswer, job.Cases[1].Result)
}

func TestSubmitTimeLimitExceeded(t *testing.T) {
	dir := t.TempDir()
	input := writeCaseFile(t, dir, "1.in", "")
	answer := writeCaseFile(t, dir, "1.ans", "")

	prob := config.Problem{
		ID:   1,
		Type: config.Standard,
		Cases: []config.Case{
			{Score: 100, InputFile: input, AnswerFile: answer, TimeLimitUS: 1000},
		},
	}
	pipeline, _ := newFixture(t, prob)

	sleepScript := "#!/bin/sh\nsleep 0.1\n"
	job, err := pipeline.Submit(context.Background(), core.Submission{
		SourceCode: sleepScript, Language: "shell", UserID: 0, ProblemID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, core.TimeLimitExceeded, job.Cases[1].Result)
}

func TestSubmitPackedSkip(t *testing.T) {
	dir := t.TempDir()
	in1 := writeCaseFile(t, dir, "1.in", "bad\n")
	ans1 := writeCaseFile(t, dir, "1.ans", "good\n")
	in2 := writeCaseFile(t, dir, "2.in", "x\n")
	ans2 := writeCaseFile(t, dir, "2.ans", "x\n")
	in3 := writeCaseFile(t, dir, "3.in", "y\n")
	ans3 := writeCaseFile(t, dir, "3.ans", "y\n")

	prob := config.Problem{
		ID:   1,
		Type: config.Standard,
		Misc: config.Misc{Packing: [][]int{{1, 2}, {3}}},
		Cases: []config.Case{
			{Score: 50, InputFile: in1, AnswerFile: ans1, TimeLimitUS: 1_000_000},
			{Score: 25, InputFile: in2, AnswerFile: ans2, TimeLimitUS: 1_000_000},
			{Score: 25, InputFile: in3, AnswerFile: ans3, TimeLimitUS: 1_000_000},
		},
	}
	pipeline, _ := newFixture(t, prob)

	echoScript := "#!/bin/sh\nread a\necho $a\n"
	job, err := pipeline.Submit(context.Background(), core.Submission{
		SourceCode: echoScript, Language: "shell", UserID: 0, ProblemID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, core.WrongAnswer, job.Cases[1].Result)
	require.Equal(t, core.Skipped, job.Cases[2].Result)
	require.Equal(t, core.Accepted, job.Cases[3].Result)
	require.Equal(t, 25.0, job.Score)
	require.Equal(t, core.WrongAnswer, job.Result)
}

func TestSubmitUnknownLanguageRejected(t *testing.T) {
	pipeline, _ := newFixture(t, config.Problem{ID: 1, Cases: []config.Case{{Score: 100}}})
	_, err := pipeline.Submit(context.Background(), core.Submission{
		Language: "nope", UserID: 0, ProblemID: 1,
	})
	require.Error(t, err)
	e, ok := core.AsError(err)
	require.True(t, ok)
	require.Equal(t, core.ReasonNotFound, e.Reason)
}
