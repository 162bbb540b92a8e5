package judge

import (
	"strings"

	"github.com/oj-engine/gojudge/internal/config"
)

// compare applies the problem type's output-comparison policy. SPJ
// problems never reach here: they're dispatched to the special-judge
// driver before a verdict is known.
func compare(ty config.ProblemType, output, answer string) bool {
	switch ty {
	case config.Strict:
		return output == answer
	default: // Standard, DynamicRanking
		return linesEqual(trimLines(output), trimLines(answer))
	}
}

// trimLines splits s on '\n' and right-trims each resulting line, per the
// "standard"/"dynamic_ranking" comparison policy.
func trimLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return lines
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
