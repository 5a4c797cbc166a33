package digest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-pipeline/internal/models"
	"go-jobsearch-pipeline/internal/state"
)

type fakeNotifier struct {
	sent   []string
	failOn map[string]bool
}

func (f *fakeNotifier) SendJob(job models.ScoredJob) error {
	if f.failOn[job.ID] {
		return errors.New("telegram unreachable")
	}
	f.sent = append(f.sent, job.ID)
	return nil
}

func newTestLedger(t *testing.T) *state.Ledger {
	t.Helper()
	return state.NewLedger(filepath.Join(t.TempDir(), "job_state.json"))
}

func TestSelect_ThresholdAndCap(t *testing.T) {
	sel := NewSelector(newTestLedger(t), 0.78, 2)

	scored := []models.ScoredJob{
		{ID: "a", Score: 0.95},
		{ID: "b", Score: 0.90},
		{ID: "c", Score: 0.80},
		{ID: "d", Score: 0.50},
	}

	got := sel.Select(scored)
	assert.Equal(t, OutcomeSelected, got.Outcome)
	require.Len(t, got.Jobs, 2)
	//order preserved from input, never re-sorted
	assert.Equal(t, "a", got.Jobs[0].ID)
	assert.Equal(t, "b", got.Jobs[1].ID)
}

func TestSelect_DistinguishesZeroResultCases(t *testing.T) {
	ledger := newTestLedger(t)
	sel := NewSelector(ledger, 0.78, 10)

	//nothing above threshold at all
	got := sel.Select([]models.ScoredJob{{ID: "a", Score: 0.5}})
	assert.Equal(t, OutcomeNoJobs, got.Outcome)
	assert.Empty(t, got.Jobs)

	//jobs existed but the user already handled every one
	require.NoError(t, ledger.Mark(state.CategoryApplied, "a", state.Meta{}))
	got = sel.Select([]models.ScoredJob{{ID: "a", Score: 0.9}})
	assert.Equal(t, OutcomeAllHandled, got.Outcome)
	assert.Empty(t, got.Jobs)
}

func TestDeliver_MarksSentPerItem(t *testing.T) {
	ledger := newTestLedger(t)
	sel := NewSelector(ledger, 0.78, 10)

	notifier := &fakeNotifier{failOn: map[string]bool{"b": true}}
	selection := Selection{Outcome: OutcomeSelected, Jobs: []models.ScoredJob{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.85},
		{ID: "c", Score: 0.8},
	}}

	res, err := sel.Deliver(selection, notifier)
	require.Error(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)

	//per-item, not all-or-nothing: a and c are sent, b stays eligible
	assert.True(t, ledger.Has(state.CategorySent, "a"))
	assert.False(t, ledger.Has(state.CategorySent, "b"))
	assert.True(t, ledger.Has(state.CategorySent, "c"))
}

func TestSelect_WithAdjustment(t *testing.T) {
	sel := NewSelector(newTestLedger(t), 0.78, 10).
		WithAdjustment(func(job models.ScoredJob) float64 {
			if job.Company == "Globex" {
				return -0.5
			}
			return 0
		})

	scored := []models.ScoredJob{
		{ID: "a", Company: "Acme", Score: 0.8},
		{ID: "b", Company: "Globex", Score: 0.8},
	}
	got := sel.Select(scored)
	require.Len(t, got.Jobs, 1)
	assert.Equal(t, "a", got.Jobs[0].ID)
}

func TestEndToEnd_SecondCallReportsAllHandled(t *testing.T) {
	ledger := newTestLedger(t)
	sel := NewSelector(ledger, 0.78, 10)

	scored := []models.ScoredJob{
		{ID: "A", Title: "Head of DevOps", Score: 0.9},
		{ID: "B", Title: "Director of IT", Score: 0.5},
	}

	first := sel.Select(scored)
	require.Equal(t, OutcomeSelected, first.Outcome)
	require.Len(t, first.Jobs, 1)
	assert.Equal(t, "A", first.Jobs[0].ID)

	notifier := &fakeNotifier{}
	res, err := sel.Deliver(first, notifier)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	//same inputs again: A is sent now, so this is "all already handled",
	//not "no jobs"
	second := sel.Select(scored)
	assert.Equal(t, OutcomeAllHandled, second.Outcome)
	assert.Empty(t, second.Jobs)
}
