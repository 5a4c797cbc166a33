// Reconciler between the local ledgers and their remote copy. The shared
// git repository is the single source of truth; merge conflicts resolve
// at whatever granularity git's own line-level merge provides, last
// writer wins at commit granularity.

package gitsync

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// DefaultFiles are the ledgers staged on every push.
var DefaultFiles = []string{
	"data/processed/job_state.json",
	"data/processed/job_tracker.json",
	"data/processed/jobs.jsonl",
}

// Runner executes a git subcommand and returns its combined output.
// Factored out so tests can run without a real repository.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

type execRunner struct {
	dir string
}

func (r execRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

type Syncer struct {
	runner Runner
	files  []string
	branch string
	now    func() time.Time
}

// NewSyncer builds a Syncer over the repository at repoDir, staging the
// given ledger files (DefaultFiles when empty) on push.
func NewSyncer(repoDir, branch string, files []string) *Syncer {
	if branch == "" {
		branch = "main"
	}
	if len(files) == 0 {
		files = DefaultFiles
	}
	return &Syncer{
		runner: execRunner{dir: repoDir},
		files:  files,
		branch: branch,
		now:    time.Now,
	}
}

// Configure sets the git identity used for automated commits.
func (s *Syncer) Configure(ctx context.Context) error {
	if _, err := s.runner.Run(ctx, "config", "user.name", "Job Search Bot"); err != nil {
		return err
	}
	_, err := s.runner.Run(ctx, "config", "user.email", "bot@jobsearch-pipeline.local")
	return err
}

// Pull fetches and merges the latest remote ledger state. Single
// attempt; a failure is returned for reporting but must not stop the
// caller, the local ledgers stay correct either way.
func (s *Syncer) Pull(ctx context.Context) error {
	if _, err := s.runner.Run(ctx, "pull", "origin", s.branch); err != nil {
		return fmt.Errorf("pull ledger state: %w", err)
	}
	log.Printf("🔄 Pulled latest ledger state from origin/%s", s.branch)
	return nil
}

// Push commits and pushes the ledger files when the working copy differs
// from the last known remote state. Returns false when there was nothing
// to commit. Single attempt, no retry; the next successful sync catches
// up whatever this one missed.
func (s *Syncer) Push(ctx context.Context) (bool, error) {
	//scoped to the ledger paths so unrelated dirty files never trigger
	//a commit attempt with nothing staged
	statusArgs := append([]string{"status", "--porcelain", "--"}, s.files...)
	status, err := s.runner.Run(ctx, statusArgs...)
	if err != nil {
		return false, fmt.Errorf("check ledger status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		log.Printf("ℹ️ No ledger changes to commit")
		return false, nil
	}

	args := append([]string{"add"}, s.files...)
	if _, err := s.runner.Run(ctx, args...); err != nil {
		return false, fmt.Errorf("stage ledger files: %w", err)
	}

	msg := fmt.Sprintf("Update job state - %s", s.now().UTC().Format("2006-01-02 15:04 UTC"))
	if _, err := s.runner.Run(ctx, "commit", "-m", msg); err != nil {
		return false, fmt.Errorf("commit ledger files: %w", err)
	}

	if _, err := s.runner.Run(ctx, "push", "origin", s.branch); err != nil {
		return false, fmt.Errorf("push ledger files: %w", err)
	}

	log.Printf("💾 Pushed ledger changes (%d files)", len(s.files))
	return true, nil
}
