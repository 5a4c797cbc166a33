package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-pipeline/internal/models"
)

func TestTitleFilter_Accept(t *testing.T) {
	f := NewTitleFilter(nil, nil)

	tests := []struct {
		title    string
		accepted bool
	}{
		{"Head of DevOps", true},
		{"Director of Engineering", true},
		{"Engineering Manager", true},
		{"VP R&D", true},
		{"Infrastructure Group Lead", true},
		//no leadership keyword
		{"Senior DevOps Engineer", false},
		{"DevOps", false},
		//excluded term present, exclusion wins even though "head" matches too
		{"Architect, Head of Platform", false},
		{"Head of Platform, Tech Lead", false},
		{"DevOps Team Lead", false},
		//case-insensitive on both sides
		{"HEAD OF INFRASTRUCTURE", true},
		{"staff engineer, head of tools", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.accepted, f.Accept(tt.title))
		})
	}
}

func TestStore_Accept(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "jobs.jsonl"), nil)

	rec, ok := s.Accept(models.Posting{Title: "Head of DevOps", Company: "Acme", URL: "https://acme.io/1"})
	require.True(t, ok)
	assert.Len(t, rec.ID, 20)
	assert.Equal(t, "Head of DevOps", rec.Title)

	_, ok = s.Accept(models.Posting{Title: "Senior DevOps Engineer", Company: "Acme"})
	assert.False(t, ok)
}

func TestDeduplicate_CoarseKey(t *testing.T) {
	//same title/company/location but different URLs collapse to one,
	//first-seen wins in input order
	records := []models.JobRecord{
		{Posting: models.Posting{Title: "Head of DevOps", Company: "Acme", Location: "Tel Aviv", URL: "https://boards.io/a"}, ID: "a"},
		{Posting: models.Posting{Title: "head of devops", Company: "ACME", Location: "tel aviv", URL: "https://other.io/b"}, ID: "b"},
		{Posting: models.Posting{Title: "Head of DevOps", Company: "Globex", Location: "Tel Aviv", URL: "https://boards.io/c"}, ID: "c"},
	}

	unique := Deduplicate(records)
	require.Len(t, unique, 2)
	assert.Equal(t, "a", unique[0].ID)
	assert.Equal(t, "c", unique[1].ID)
}

func TestMerge_SkipsSeenURLs(t *testing.T) {
	existing := []models.JobRecord{
		{Posting: models.Posting{Title: "Head of DevOps", URL: "https://acme.io/1"}, ID: "a"},
	}
	incoming := []models.JobRecord{
		{Posting: models.Posting{Title: "Head of DevOps", URL: "https://acme.io/1"}, ID: "a"},
		{Posting: models.Posting{Title: "Director of Platform", URL: "https://acme.io/2"}, ID: "b"},
	}

	merged := Merge(existing, incoming)
	require.Len(t, merged, 2)
	assert.Equal(t, "b", merged[1].ID)
}

func TestStore_LoadSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.jsonl")
	s := New(path, nil)

	records := []models.JobRecord{
		{Posting: models.Posting{Title: "Head of DevOps", Company: "Acme", Source: "greenhouse"}, ID: "aaa", Age: 3, FirstSeen: "2026-08-01"},
		{Posting: models.Posting{Title: "Director of Platform", Company: "Globex", Source: "lever"}, ID: "bbb"},
	}
	require.NoError(t, s.Save(records))

	loaded, skipped, err := s.Load()
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, records, loaded)
}

func TestStore_Load_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.jsonl")
	content := `{"title":"Head of DevOps","company":"Acme","location":"","url":"","source":"","posted_at":"","jd":"","id":"aaa"}
not json at all
{"title":"Director of Platform","company":"Globex","location":"","url":"","source":"","posted_at":"","jd":"","id":"bbb"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	loaded, skipped, err := New(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, loaded, 2)
	assert.Equal(t, "aaa", loaded[0].ID)
}

func TestStore_Load_MissingFile(t *testing.T) {
	loaded, skipped, err := New(filepath.Join(t.TempDir(), "nope.jsonl"), nil).Load()
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Empty(t, loaded)
}
