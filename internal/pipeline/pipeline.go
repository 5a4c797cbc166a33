// Full batch run: pull remote ledger state, collect postings, accept and
// dedup into the store, advance ages, score against the profile, select
// and deliver the digest, push the ledgers back.

package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-jobsearch-pipeline/internal/collector"
	"go-jobsearch-pipeline/internal/config"
	"go-jobsearch-pipeline/internal/digest"
	"go-jobsearch-pipeline/internal/gitsync"
	"go-jobsearch-pipeline/internal/httpclient"
	"go-jobsearch-pipeline/internal/learning"
	"go-jobsearch-pipeline/internal/models"
	"go-jobsearch-pipeline/internal/score"
	"go-jobsearch-pipeline/internal/state"
	"go-jobsearch-pipeline/internal/store"
	"go-jobsearch-pipeline/internal/tracker"
)

// Pipeline wires the stages together. Scorer and Notifier are injected
// so the bot process and tests can swap the external boundaries.
type Pipeline struct {
	cfg      *config.Config
	boards   *config.Boards
	scorer   score.Scorer
	notifier digest.Notifier
	syncer   *gitsync.Syncer
}

func New(cfg *config.Config, boards *config.Boards, scorer score.Scorer, notifier digest.Notifier, syncer *gitsync.Syncer) *Pipeline {
	return &Pipeline{cfg: cfg, boards: boards, scorer: scorer, notifier: notifier, syncer: syncer}
}

// Run executes one full batch pass. Collector and sync failures are
// logged and worked around; only a broken local store is fatal.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.syncer != nil {
		if err := p.syncer.Pull(ctx); err != nil {
			log.Printf("⚠️ Remote pull failed, continuing with local state: %v", err)
		}
	}

	ledger := state.NewLedger(p.cfg.StatePath())
	jobs := store.New(p.cfg.JobsPath(), store.NewTitleFilter(p.boards.ExcludedRoles, p.boards.RequiredLeadership))

	if err := p.collectAndStore(ctx, jobs); err != nil {
		return err
	}

	records, err := p.age(jobs)
	if err != nil {
		return err
	}

	scored, err := p.score(ctx, records)
	if err != nil {
		return err
	}

	p.deliver(scored, ledger)

	if p.syncer != nil {
		if _, err := p.syncer.Push(ctx); err != nil {
			log.Printf("⚠️ Remote push failed, local ledgers remain correct: %v", err)
		}
	}
	return nil
}

func (p *Pipeline) collectAndStore(ctx context.Context, jobs *store.Store) error {
	client := httpclient.New(p.cfg.HTTPTimeout)
	matcher := collector.NewMatcher(p.boards.Titles, p.boards.Locations)
	collectors := []collector.Collector{
		collector.NewGreenhouse(client, matcher, p.boards.Sources.Greenhouse.Companies),
		collector.NewLever(client, matcher, p.boards.Sources.Lever.Companies),
	}

	var incoming []models.JobRecord
	rejected := 0
	for _, c := range collectors {
		log.Printf("▶️ Collecting from %s", c.Name())
		postings, err := c.Collect(ctx)
		if err != nil {
			log.Printf("⚠️ Collector %s failed: %v", c.Name(), err)
			continue
		}
		for _, posting := range postings {
			rec, ok := jobs.Accept(posting)
			if !ok {
				rejected++
				continue
			}
			incoming = append(incoming, rec)
		}
	}
	log.Printf("📦 Collected %d postings (%d rejected by title policy)", len(incoming), rejected)

	existing, skipped, err := jobs.Load()
	if err != nil {
		return fmt.Errorf("load job store: %w", err)
	}
	if skipped > 0 {
		log.Printf("⚠️ %d malformed store lines skipped", skipped)
	}

	merged := store.Deduplicate(store.Merge(existing, incoming))
	log.Printf("🔍 Deduplication: %d -> %d jobs", len(existing)+len(incoming), len(merged))

	return jobs.Save(merged)
}

func (p *Pipeline) age(jobs *store.Store) ([]models.JobRecord, error) {
	records, _, err := jobs.Load()
	if err != nil {
		return nil, fmt.Errorf("reload job store: %w", err)
	}

	tr := tracker.New(p.cfg.TrackerPath(), p.cfg.MaxAge)
	res, err := tr.Update(records)
	if err != nil {
		return nil, fmt.Errorf("update job ages: %w", err)
	}

	//drop expired records from the store itself and annotate survivors.
	//On a same-day rerun the aging pass is skipped, so jobs collected
	//since the last pass are not tracked yet; those stay.
	var alive []models.JobRecord
	for _, rec := range records {
		if _, tracked := tr.Entry(rec.ID); tracked || res.Skipped {
			alive = append(alive, rec)
		}
	}
	alive = tr.Annotate(alive)

	if err := jobs.Save(alive); err != nil {
		return nil, fmt.Errorf("save aged job store: %w", err)
	}
	return alive, nil
}

func (p *Pipeline) score(ctx context.Context, records []models.JobRecord) ([]models.ScoredJob, error) {
	profile, err := p.cfg.LoadProfile()
	if err != nil {
		return nil, err
	}

	rows := score.ScoreAll(ctx, p.scorer, profile, records)
	if err := score.WriteScores(p.cfg.ScoresPath(), rows); err != nil {
		return nil, err
	}
	log.Printf("⭐ Scored %d roles", len(rows))
	return rows, nil
}

func (p *Pipeline) deliver(scored []models.ScoredJob, ledger *state.Ledger) {
	patterns := learning.Analyze(ledger)
	if err := learning.Save(p.cfg.LearningPath(), patterns); err != nil {
		log.Printf("⚠️ Failed to save learning patterns: %v", err)
	}

	selector := digest.NewSelector(ledger, p.cfg.ScoreThreshold, p.cfg.DigestMax).
		WithAdjustment(patterns.Adjustment)

	selection := selector.Select(scored)
	switch selection.Outcome {
	case digest.OutcomeNoJobs:
		log.Printf("ℹ️ No matches above threshold today")
		p.notify("No matches above threshold today. Try lowering SCORE_THRESHOLD.")
		return
	case digest.OutcomeAllHandled:
		log.Printf("ℹ️ Jobs matched but all were already handled")
		return
	}

	if header, ok := p.notifier.(interface {
		SendDigestHeader(count int, date string) error
	}); ok {
		if err := header.SendDigestHeader(len(selection.Jobs), time.Now().Format("2006-01-02")); err != nil {
			log.Printf("⚠️ Failed to send digest header: %v", err)
		}
	}

	res, err := selector.Deliver(selection, p.notifier)
	if err != nil {
		log.Printf("⚠️ Digest delivery incomplete: %v", err)
	}
	log.Printf("✅ Sent digest: %d delivered, %d failed", res.Sent, res.Failed)
}

func (p *Pipeline) notify(text string) {
	if status, ok := p.notifier.(interface{ SendStatus(string) error }); ok {
		if err := status.SendStatus(text); err != nil {
			log.Printf("⚠️ Failed to send status: %v", err)
		}
	}
}
