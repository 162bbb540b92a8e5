// Package config loads the judge's immutable problem/language/server
// configuration. It is read once at startup and never reloaded.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ProblemType selects the output-comparison policy a problem's cases are
// judged under.
type ProblemType string

const (
	Standard       ProblemType = "standard"
	Strict         ProblemType = "strict"
	SPJ            ProblemType = "spj"
	DynamicRanking ProblemType = "dynamic_ranking"
)

// Case is one (input, expected-answer, score, limits) tuple of a problem.
type Case struct {
	Score         float64 `json:"score" yaml:"score"`
	InputFile     string  `json:"input_file" yaml:"input_file"`
	AnswerFile    string  `json:"answer_file" yaml:"answer_file"`
	TimeLimitUS   int64   `json:"time_limit" yaml:"time_limit"`
	MemoryLimitKB int64   `json:"memory_limit" yaml:"memory_limit"`
}

// Misc carries the type-specific knobs of a Problem.
type Misc struct {
	Packing             [][]int  `json:"packing,omitempty" yaml:"packing,omitempty"`
	SpecialJudge        []string `json:"special_judge,omitempty" yaml:"special_judge,omitempty"`
	DynamicRankingRatio *float64 `json:"dynamic_ranking_ratio,omitempty" yaml:"dynamic_ranking_ratio,omitempty"`
}

// Ratio returns the configured dynamic-ranking ratio, defaulting to 0.
func (m *Misc) Ratio() float64 {
	if m.DynamicRankingRatio == nil {
		return 0
	}
	return *m.DynamicRankingRatio
}

// Problem is a judge problem: its scoring cases and how they pack.
type Problem struct {
	ID    int         `json:"id" yaml:"id"`
	Name  string      `json:"name" yaml:"name"`
	Type  ProblemType `json:"type" yaml:"type"`
	Misc  Misc        `json:"misc" yaml:"misc"`
	Cases []Case      `json:"cases" yaml:"cases"`
}

// Packs returns the problem's case packing, defaulting to a single pack
// containing every case in order when Misc.Packing is absent.
func (p *Problem) Packs() [][]int {
	if len(p.Misc.Packing) > 0 {
		return p.Misc.Packing
	}
	all := make([]int, len(p.Cases))
	for i := range p.Cases {
		all[i] = i + 1
	}
	return [][]int{all}
}

// Language is a compile/run command template. Command must contain the
// literal tokens %INPUT% and %OUTPUT%, each exactly once.
type Language struct {
	Name     string   `json:"name"`
	FileName string   `json:"file_name"`
	Command  []string `json:"command"`
}

type server struct {
	BindAddress string `json:"bind_address"`
	BindPort    int    `json:"bind_port"`
}

// Config is the top-level, immutable judge configuration.
type Config struct {
	Server    server     `json:"server"`
	Problems  []Problem  `json:"problems"`
	Languages []Language `json:"languages"`
}

// Listen returns "host:port" for the server to bind.
func (c *Config) Listen() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.BindPort)
}

// FindLanguage looks up a language by name.
func (c *Config) FindLanguage(name string) (*Language, bool) {
	for i := range c.Languages {
		if c.Languages[i].Name == name {
			return &c.Languages[i], true
		}
	}
	return nil, false
}

// FindProblem looks up a problem by id.
func (c *Config) FindProblem(id int) (*Problem, bool) {
	for i := range c.Problems {
		if c.Problems[i].ID == id {
			return &c.Problems[i], true
		}
	}
	return nil, false
}

// Load reads and validates the judge config from a JSON file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{Server: server{BindAddress: "127.0.0.1", BindPort: 12345}}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	for _, lang := range cfg.Languages {
		if countToken(lang.Command, "%INPUT%") != 1 || countToken(lang.Command, "%OUTPUT%") != 1 {
			return fmt.Errorf("language %q: command must contain %%INPUT%% and %%OUTPUT%% exactly once each", lang.Name)
		}
	}
	for _, p := range cfg.Problems {
		sum := 0.0
		for _, c := range p.Cases {
			sum += c.Score
		}
		if len(p.Cases) > 0 && math.Abs(sum-100) > 1e-6 {
			zap.S().Warnf("problem %d (%s): case scores sum to %.4f, expected 100", p.ID, p.Name, sum)
		}
		if p.Type == SPJ {
			misc := p.Misc
			if countToken(misc.SpecialJudge, "%OUTPUT%") != 1 || countToken(misc.SpecialJudge, "%ANSWER%") != 1 {
				return fmt.Errorf("problem %d: special_judge must contain %%OUTPUT%% and %%ANSWER%% exactly once each", p.ID)
			}
		}
		if err := validatePacking(&p); err != nil {
			return err
		}
	}
	return nil
}

// validatePacking checks that an explicit packing is a permutation of
// 1..len(cases) partitioned into packs: every case index appears in
// exactly one pack, and no index is out of range. A case left out of
// every pack would never run, and an out-of-range index would panic the
// pipeline's 1-based case lookup once judging reached it.
func validatePacking(p *Problem) error {
	if len(p.Misc.Packing) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(p.Cases))
	for _, pack := range p.Misc.Packing {
		for _, idx := range pack {
			if idx < 1 || idx > len(p.Cases) {
				return fmt.Errorf("problem %d: packing references case %d, but there are %d case(s)", p.ID, idx, len(p.Cases))
			}
			if seen[idx] {
				return fmt.Errorf("problem %d: packing references case %d more than once", p.ID, idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != len(p.Cases) {
		return fmt.Errorf("problem %d: packing omits %d of %d case(s)", p.ID, len(p.Cases)-len(seen), len(p.Cases))
	}
	return nil
}

func countToken(tokens []string, want string) int {
	n := 0
	for _, t := range tokens {
		if t == want {
			n++
		}
	}
	return n
}

// problemFixture is the on-disk shape of a --problems-dir/<id>/problem.yaml
// file: the same fields as Problem, authored by hand instead of embedded in
// the monolithic JSON config.
type problemFixture struct {
	Problem `yaml:",inline"`
}

// LoadProblemSetDir scans dir for immediate subdirectories, each containing
// a problem.yaml, and returns the parsed problems. It supplements (does
// not replace) the problems embedded in the main JSON config: operators
// can author one problem per file instead of editing a single monolithic
// document. Loaded once at startup, before the config is frozen.
func LoadProblemSetDir(dir string) ([]Problem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read problems dir: %w", err)
	}

	var problems []Problem
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := dir + "/" + entry.Name() + "/problem.yaml"
		data, err := os.ReadFile(path)
		if err != nil {
			zap.S().Warnf("skipping %s: %v", path, err)
			continue
		}
		var fx problemFixture
		if err := yaml.Unmarshal(data, &fx); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		problems = append(problems, fx.Problem)
	}
	return problems, nil
}
