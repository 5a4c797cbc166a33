// Interaction state ledger. Records what the user (or the delivery path)
// did with each job id: applied, ignored, sent to telegram. The three
// sub-maps are independent facts, not exclusive states, and entries only
// ever leave through an explicit undo. Every mutation is written through
// to job_state.json immediately.

package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go-jobsearch-pipeline/internal/models"
)

// Category names double as JSON keys in job_state.json.
const (
	CategoryApplied = "applied"
	CategoryIgnored = "ignored"
	CategorySent    = "sent_to_telegram"
)

const dateLayout = "2006-01-02"

// DefaultIgnoreReason is recorded when an ignore arrives without one.
const DefaultIgnoreReason = "not_relevant"

type AppliedEntry struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

type IgnoredEntry struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Reason  string `json:"reason"`
}

type SentEntry struct {
	Date      string `json:"date"`
	SentCount int    `json:"sent_count"`
}

// Document is the full persisted shape of job_state.json.
type Document struct {
	Applied     map[string]AppliedEntry `json:"applied"`
	Ignored     map[string]IgnoredEntry `json:"ignored"`
	Sent        map[string]SentEntry    `json:"sent_to_telegram"`
	LastUpdated string                  `json:"last_updated"`
}

// Meta carries the denormalized display fields attached to a mark.
type Meta struct {
	Title   string
	Company string
	Reason  string
}

// Stats summarizes ledger sizes for the bot and the CLI.
type Stats struct {
	Applied     int
	Ignored     int
	Sent        int
	LastUpdated string
}

type Ledger struct {
	path string
	doc  Document
	now  func() time.Time
}

// NewLedger loads the ledger at path. A corrupt or missing file starts
// with all three sub-maps empty; prior state is lost, not fatal.
func NewLedger(path string) *Ledger {
	l := &Ledger{path: path, now: time.Now}
	l.load()
	return l
}

func (l *Ledger) load() {
	l.doc = Document{
		Applied:     make(map[string]AppliedEntry),
		Ignored:     make(map[string]IgnoredEntry),
		Sent:        make(map[string]SentEntry),
		LastUpdated: l.today(),
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read %s: %v", l.path, err)
		}
		return
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("⚠️ Failed to parse %s, starting fresh: %v", l.path, err)
		return
	}
	if doc.Applied == nil {
		doc.Applied = make(map[string]AppliedEntry)
	}
	if doc.Ignored == nil {
		doc.Ignored = make(map[string]IgnoredEntry)
	}
	if doc.Sent == nil {
		doc.Sent = make(map[string]SentEntry)
	}
	l.doc = doc
}

func (l *Ledger) save() error {
	l.doc.LastUpdated = l.today()
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(l.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job state: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	return nil
}

func (l *Ledger) today() string {
	return l.now().Format(dateLayout)
}

// Mark inserts (or refreshes) the id in the given category sub-map.
// A repeated sent mark increments sent_count instead of overwriting.
func (l *Ledger) Mark(category, id string, meta Meta) error {
	switch category {
	case CategoryApplied:
		l.doc.Applied[id] = AppliedEntry{Date: l.today(), Title: meta.Title, Company: meta.Company}
		log.Printf("✅ Marked as applied: %s @ %s", meta.Title, meta.Company)
	case CategoryIgnored:
		reason := meta.Reason
		if reason == "" {
			reason = DefaultIgnoreReason
		}
		l.doc.Ignored[id] = IgnoredEntry{Date: l.today(), Title: meta.Title, Company: meta.Company, Reason: reason}
		log.Printf("❌ Marked as ignored: %s @ %s (reason: %s)", meta.Title, meta.Company, reason)
	case CategorySent:
		entry, ok := l.doc.Sent[id]
		if ok {
			entry.SentCount++
		} else {
			entry = SentEntry{Date: l.today(), SentCount: 1}
		}
		l.doc.Sent[id] = entry
	default:
		return fmt.Errorf("unknown category %q", category)
	}
	return l.save()
}

// Unmark deletes the id from the given category sub-map. The bool
// reports whether anything existed; false is a no-op, not an error.
func (l *Ledger) Unmark(category, id string) (bool, error) {
	var existed bool
	switch category {
	case CategoryApplied:
		_, existed = l.doc.Applied[id]
		delete(l.doc.Applied, id)
	case CategoryIgnored:
		_, existed = l.doc.Ignored[id]
		delete(l.doc.Ignored, id)
	case CategorySent:
		_, existed = l.doc.Sent[id]
		delete(l.doc.Sent, id)
	default:
		return false, fmt.Errorf("unknown category %q", category)
	}
	if !existed {
		return false, nil
	}
	return true, l.save()
}

// Has reports whether the id is present in the given category.
func (l *Ledger) Has(category, id string) bool {
	switch category {
	case CategoryApplied:
		_, ok := l.doc.Applied[id]
		return ok
	case CategoryIgnored:
		_, ok := l.doc.Ignored[id]
		return ok
	case CategorySent:
		_, ok := l.doc.Sent[id]
		return ok
	}
	return false
}

// Eligible reports whether an id is absent from all three sub-maps.
func (l *Ledger) Eligible(id string) bool {
	if id == "" {
		return false
	}
	return !l.Has(CategoryApplied, id) && !l.Has(CategoryIgnored, id) && !l.Has(CategorySent, id)
}

// FilterEligible keeps only jobs absent from all three categories. A job
// that was merely sent and never acted on stays excluded; only an
// explicit undo reopens eligibility.
func (l *Ledger) FilterEligible(jobs []models.ScoredJob) []models.ScoredJob {
	var eligible []models.ScoredJob
	for _, job := range jobs {
		if l.Eligible(job.ID) {
			eligible = append(eligible, job)
		}
	}
	return eligible
}

// Applied returns the applied sub-map for listing.
func (l *Ledger) Applied() map[string]AppliedEntry { return l.doc.Applied }

// Ignored returns the ignored sub-map for listing.
func (l *Ledger) Ignored() map[string]IgnoredEntry { return l.doc.Ignored }

// SentCount returns how many times the id was delivered.
func (l *Ledger) SentCount(id string) int { return l.doc.Sent[id].SentCount }

func (l *Ledger) Stats() Stats {
	return Stats{
		Applied:     len(l.doc.Applied),
		Ignored:     len(l.doc.Ignored),
		Sent:        len(l.doc.Sent),
		LastUpdated: l.doc.LastUpdated,
	}
}
