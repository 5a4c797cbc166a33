// Load envs from .env
// Parse env var struct
// Load YAML boards config
// Provide default values

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`
	OpenAIKey      string `env:"OPENAI_API_KEY"`

	//Digest tuning
	ScoreThreshold float64 `env:"SCORE_THRESHOLD" envDefault:"0.78"`
	DigestMax      int     `env:"DIGEST_MAX" envDefault:"10"`
	MaxAge         int     `env:"JOB_MAX_AGE" envDefault:"14"`

	//Paths
	DataDir     string `env:"DATA_DIR" envDefault:"data/processed"`
	OutputDir   string `env:"OUTPUT_DIR" envDefault:"outputs"`
	RepoDir     string `env:"REPO_DIR" envDefault:"."`
	BoardsPath  string `env:"BOARDS_PATH" envDefault:"configs/boards.yaml"`
	ProfilePath string `env:"PROFILE_PATH" envDefault:"configs/profile.md"`

	//Remote sync
	GitHubToken  string `env:"GITHUB_TOKEN"`
	GitHubOwner  string `env:"GITHUB_OWNER"`
	GitHubRepo   string `env:"GITHUB_REPO"`
	GitHubBranch string `env:"GITHUB_BRANCH" envDefault:"main"`

	//Scheduling
	PipelineCron string        `env:"PIPELINE_CRON" envDefault:"@daily"`
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"30s"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"20s"`
}

// Boards is the search configuration loaded from boards.yaml.
type Boards struct {
	Titles    []string `yaml:"titles"`
	Locations []string `yaml:"locations"`
	Sources   struct {
		Greenhouse struct {
			Companies []string `yaml:"companies"`
		} `yaml:"greenhouse"`
		Lever struct {
			Companies []string `yaml:"companies"`
		} `yaml:"lever"`
	} `yaml:"sources"`
	ExcludedRoles      []string `yaml:"excluded_roles"`
	RequiredLeadership []string `yaml:"required_leadership"`
}

// Load reads .env (if present) and parses the environment. Validation
// of process-specific requirements (telegram creds, github repo) is the
// caller's job; the ledgers-only CLI needs none of them.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// RequireTelegram validates the bot credentials.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	return nil
}

// LoadBoards parses the boards yaml file.
func LoadBoards(path string) (*Boards, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boards config: %w", err)
	}
	boards := &Boards{}
	if err := yaml.Unmarshal(data, boards); err != nil {
		return nil, fmt.Errorf("parse boards config: %w", err)
	}
	return boards, nil
}

// LoadProfile reads the candidate profile text used for scoring.
func (c *Config) LoadProfile() (string, error) {
	data, err := os.ReadFile(c.ProfilePath)
	if err != nil {
		return "", fmt.Errorf("read profile: %w", err)
	}
	return string(data), nil
}

func (c *Config) JobsPath() string     { return filepath.Join(c.DataDir, "jobs.jsonl") }
func (c *Config) TrackerPath() string  { return filepath.Join(c.DataDir, "job_tracker.json") }
func (c *Config) StatePath() string    { return filepath.Join(c.DataDir, "job_state.json") }
func (c *Config) LearningPath() string { return filepath.Join(c.DataDir, "learning_patterns.json") }
func (c *Config) ScoresPath() string   { return filepath.Join(c.OutputDir, "scores.jsonl") }
