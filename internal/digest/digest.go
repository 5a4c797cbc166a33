// Digest selection and delivery. Takes the scored job list (already
// sorted by score descending upstream), gates it through the interaction
// ledger, caps it, and marks each job sent only after its own delivery
// succeeded — a crash mid-digest must not cause the delivered prefix to
// go out again on retry.

package digest

import (
	"fmt"
	"log"

	"go-jobsearch-pipeline/internal/models"
	"go-jobsearch-pipeline/internal/state"
)

// Outcome distinguishes the two zero-result cases callers must be able
// to tell apart.
type Outcome int

const (
	// OutcomeSelected means at least one job is deliverable.
	OutcomeSelected Outcome = iota
	// OutcomeNoJobs means nothing scored above the threshold at all.
	OutcomeNoJobs
	// OutcomeAllHandled means jobs existed but every one was already
	// applied, ignored or sent.
	OutcomeAllHandled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelected:
		return "selected"
	case OutcomeNoJobs:
		return "no jobs above threshold"
	case OutcomeAllHandled:
		return "all jobs already handled"
	}
	return "unknown"
}

type Selection struct {
	Jobs    []models.ScoredJob
	Outcome Outcome
}

// Notifier delivers one digest item. The telegram bot implements it;
// tests stub it.
type Notifier interface {
	SendJob(job models.ScoredJob) error
}

// DeliveryResult reports per-item delivery bookkeeping.
type DeliveryResult struct {
	Sent   int
	Failed int
}

type Selector struct {
	ledger    *state.Ledger
	threshold float64
	maxItems  int
	adjust    func(models.ScoredJob) float64
}

func NewSelector(ledger *state.Ledger, threshold float64, maxItems int) *Selector {
	return &Selector{ledger: ledger, threshold: threshold, maxItems: maxItems}
}

// WithAdjustment plugs in an optional score adjustment (the learning
// heuristic). The adjusted value is only used against the threshold; the
// upstream score ordering is kept as-is.
func (s *Selector) WithAdjustment(adjust func(models.ScoredJob) float64) *Selector {
	s.adjust = adjust
	return s
}

// Select computes the deliverable subset. scored is assumed pre-sorted
// by score descending; order is preserved, never re-sorted.
func (s *Selector) Select(scored []models.ScoredJob) Selection {
	var above []models.ScoredJob
	for _, job := range scored {
		score := job.Score
		if s.adjust != nil {
			score += s.adjust(job)
		}
		if score >= s.threshold {
			above = append(above, job)
		}
	}
	if len(above) == 0 {
		return Selection{Outcome: OutcomeNoJobs}
	}

	eligible := s.ledger.FilterEligible(above)
	if len(eligible) == 0 {
		return Selection{Outcome: OutcomeAllHandled}
	}

	if s.maxItems > 0 && len(eligible) > s.maxItems {
		eligible = eligible[:s.maxItems]
	}
	return Selection{Jobs: eligible, Outcome: OutcomeSelected}
}

// Deliver sends each selected job and marks it sent immediately after
// its own successful delivery. A failed item stays unmarked and remains
// eligible for the next attempt; delivery continues with the rest.
func (s *Selector) Deliver(sel Selection, notifier Notifier) (DeliveryResult, error) {
	var res DeliveryResult
	var firstErr error

	for _, job := range sel.Jobs {
		if err := notifier.SendJob(job); err != nil {
			log.Printf("⚠️ Failed to deliver %s @ %s: %v", job.Title, job.Company, err)
			res.Failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("deliver %s: %w", job.ID, err)
			}
			continue
		}
		if err := s.ledger.Mark(state.CategorySent, job.ID, state.Meta{}); err != nil {
			log.Printf("⚠️ Delivered %s but failed to record it as sent: %v", job.ID, err)
		}
		res.Sent++
	}
	return res, firstErr
}
