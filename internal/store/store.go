// JSONL job store. One JobRecord per line in jobs.jsonl; every pipeline
// run reloads the whole file and rewrites it after filtering and dedup,
// nothing is patched in place.

package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"

	"go-jobsearch-pipeline/internal/identity"
	"go-jobsearch-pipeline/internal/models"
)

type Store struct {
	path   string
	filter *TitleFilter
}

func New(path string, filter *TitleFilter) *Store {
	if filter == nil {
		filter = NewTitleFilter(nil, nil)
	}
	return &Store{path: path, filter: filter}
}

func (s *Store) Path() string { return s.path }

// Accept applies the title policy and, on success, assigns the posting
// its stable identity. The second return is false for rejected postings.
func (s *Store) Accept(p models.Posting) (models.JobRecord, bool) {
	if !s.filter.Accept(p.Title) {
		return models.JobRecord{}, false
	}
	return models.JobRecord{Posting: p, ID: identity.Assign(p)}, true
}

// Load reads all records from jobs.jsonl. Malformed lines are skipped and
// counted, never fatal. A missing file is an empty store.
func (s *Store) Load() ([]models.JobRecord, int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	var records []models.JobRecord
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.JobRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, skipped, fmt.Errorf("read %s: %w", s.path, err)
	}

	if skipped > 0 {
		log.Printf("⚠️ Skipped %d malformed lines in %s", skipped, s.path)
	}
	return records, skipped, nil
}

// Save wholly replaces the on-disk store with the given records,
// preserving their order.
func (s *Store) Save(records []models.JobRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
	}
	return w.Flush()
}

// Deduplicate collapses records sharing the same lower-cased
// (title, company, location) key, first-seen wins. The key deliberately
// ignores URL: the same role posted to two boards should appear once.
func Deduplicate(records []models.JobRecord) []models.JobRecord {
	seen := mapset.NewSet[string]()
	var unique []models.JobRecord

	for _, rec := range records {
		key := fold.String(rec.Title) + "|" + fold.String(rec.Company) + "|" + fold.String(rec.Location)
		if !seen.Add(key) {
			continue
		}
		unique = append(unique, rec)
	}
	return unique
}

// Merge appends incoming records whose URL is not already present in
// existing, keeping existing order intact.
func Merge(existing, incoming []models.JobRecord) []models.JobRecord {
	seen := mapset.NewSet[string]()
	for _, rec := range existing {
		seen.Add(rec.URL)
	}

	merged := existing
	for _, rec := range incoming {
		if rec.URL != "" && !seen.Add(rec.URL) {
			continue
		}
		merged = append(merged, rec)
	}
	return merged
}
