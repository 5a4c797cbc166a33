package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.78, cfg.ScoreThreshold)
	assert.Equal(t, 10, cfg.DigestMax)
	assert.Equal(t, 14, cfg.MaxAge)
	assert.Equal(t, 20*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, filepath.Join("data", "processed", "jobs.jsonl"), cfg.JobsPath())
	assert.Equal(t, filepath.Join("data", "processed", "job_state.json"), cfg.StatePath())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCORE_THRESHOLD", "0.85")
	t.Setenv("JOB_MAX_AGE", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.85, cfg.ScoreThreshold)
	assert.Equal(t, 7, cfg.MaxAge)
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireTelegram())

	cfg.TelegramToken = "tok"
	assert.Error(t, cfg.RequireTelegram())

	cfg.TelegramChatID = 42
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoadBoards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards.yaml")
	content := `titles:
  - Head of DevOps
  - Director of Infrastructure
locations:
  - Israel
  - Tel Aviv
sources:
  greenhouse:
    companies: [acme, globex]
  lever:
    companies: [initech]
excluded_roles:
  - architect
required_leadership:
  - head
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	boards, err := LoadBoards(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Head of DevOps", "Director of Infrastructure"}, boards.Titles)
	assert.Equal(t, []string{"acme", "globex"}, boards.Sources.Greenhouse.Companies)
	assert.Equal(t, []string{"initech"}, boards.Sources.Lever.Companies)
	assert.Equal(t, []string{"architect"}, boards.ExcludedRoles)
}

func TestLoadBoards_Missing(t *testing.T) {
	_, err := LoadBoards(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
