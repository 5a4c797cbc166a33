package learning

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-pipeline/internal/models"
	"go-jobsearch-pipeline/internal/state"
)

func TestAnalyze_CountsRepeatedPatterns(t *testing.T) {
	ledger := state.NewLedger(filepath.Join(t.TempDir(), "job_state.json"))
	require.NoError(t, ledger.Mark(state.CategoryApplied, "a", state.Meta{Title: "Head of DevOps", Company: "Acme"}))
	require.NoError(t, ledger.Mark(state.CategoryApplied, "b", state.Meta{Title: "DevOps Director", Company: "Acme"}))
	require.NoError(t, ledger.Mark(state.CategoryApplied, "c", state.Meta{Title: "VP Security", Company: "Initech"}))
	require.NoError(t, ledger.Mark(state.CategoryIgnored, "d", state.Meta{Title: "Platform Manager", Company: "Globex"}))
	require.NoError(t, ledger.Mark(state.CategoryIgnored, "e", state.Meta{Title: "Head of Platform", Company: "Globex"}))

	p := Analyze(ledger)
	//single occurrences (security, initech) don't count as preferences
	assert.Equal(t, []string{"devops"}, p.PreferredRoles)
	assert.Equal(t, []string{"acme"}, p.PreferredCompanies)
	assert.Equal(t, []string{"platform"}, p.AvoidedRoles)
	assert.Equal(t, []string{"globex"}, p.AvoidedCompanies)
}

func TestAdjustment(t *testing.T) {
	p := Patterns{
		PreferredRoles:     []string{"devops"},
		AvoidedRoles:       []string{"platform"},
		AvoidedCompanies:   []string{"globex"},
		PreferredCompanies: []string{"acme"},
	}

	assert.Equal(t, -0.1, p.Adjustment(models.ScoredJob{Title: "Head of DevOps", Company: "Globex"}))
	assert.Equal(t, -0.05, p.Adjustment(models.ScoredJob{Title: "Head of Platform", Company: "Hooli"}))
	assert.Equal(t, 0.05, p.Adjustment(models.ScoredJob{Title: "VP R&D", Company: "Acme"}))
	assert.Equal(t, 0.02, p.Adjustment(models.ScoredJob{Title: "DevOps Group Lead", Company: "Hooli"}))
	assert.Zero(t, p.Adjustment(models.ScoredJob{Title: "VP R&D", Company: "Hooli"}))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learning_patterns.json")
	p := Patterns{PreferredRoles: []string{"devops"}, LastUpdated: "2026-08-31"}
	require.NoError(t, Save(path, p))
	assert.Equal(t, p, Load(path))
}

func TestLoad_MissingIsEmpty(t *testing.T) {
	assert.Equal(t, Patterns{}, Load(filepath.Join(t.TempDir(), "nope.json")))
}
