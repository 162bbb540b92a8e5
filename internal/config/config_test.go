package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"problems": [{"id": 1, "name": "a+b", "type": "standard", "cases": [{"score": 100, "input_file": "1.in", "answer_file": "1.ans", "time_limit": 1000000}]}],
		"languages": [{"name": "Rust", "file_name": "a.rs", "command": ["rustc", "%INPUT%", "-o", "%OUTPUT%"]}]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:12345", cfg.Listen())

	p, ok := cfg.FindProblem(1)
	require.True(t, ok)
	require.Equal(t, Standard, p.Type)
	require.Equal(t, [][]int{{1}}, p.Packs())

	lang, ok := cfg.FindLanguage("Rust")
	require.True(t, ok)
	require.Equal(t, "a.rs", lang.FileName)
}

func TestLoadRejectsBadCommandTokens(t *testing.T) {
	path := writeConfig(t, `{
		"problems": [],
		"languages": [{"name": "Bad", "file_name": "a.c", "command": ["gcc", "%INPUT%", "%INPUT%", "-o", "%OUTPUT%"]}]
	}`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestProblemPacksExplicit(t *testing.T) {
	p := Problem{
		Cases: make([]Case, 3),
		Misc:  Misc{Packing: [][]int{{1, 2}, {3}}},
	}
	require.Equal(t, [][]int{{1, 2}, {3}}, p.Packs())
}
