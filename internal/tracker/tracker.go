// Aging tracker. Keeps a ledger of how long each job id has stayed
// visible: age starts at 1, advances by the calendar days elapsed between
// update passes, and an entry disappears once it ages past MaxAge or its
// id drops out of the current store snapshot.

package tracker

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"go-jobsearch-pipeline/internal/models"
)

const DefaultMaxAge = 14

const dateLayout = "2006-01-02"

// Entry is one tracked job inside job_tracker.json. Title/company/url are
// denormalized for display only.
type Entry struct {
	Age       int    `json:"age"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	URL       string `json:"url"`
}

// Document is the full persisted shape of job_tracker.json.
type Document struct {
	LastUpdated string           `json:"last_updated"`
	Jobs        map[string]Entry `json:"jobs"`
}

// UpdateResult summarizes one daily pass.
type UpdateResult struct {
	Skipped    bool
	DaysPassed int
	New        int
	Removed    int
	Active     int
}

type Tracker struct {
	path   string
	maxAge int
	doc    Document
	now    func() time.Time
}

// New loads (or freshly initializes) the tracker at path. A corrupt or
// missing file means zero tracked entries, never an error.
func New(path string, maxAge int) *Tracker {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	t := &Tracker{path: path, maxAge: maxAge, now: time.Now}
	t.load()
	return t
}

func (t *Tracker) load() {
	//a fresh ledger carries no last_updated so the first pass always runs
	t.doc = Document{Jobs: make(map[string]Entry)}

	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read %s: %v", t.path, err)
		}
		return
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("⚠️ Failed to parse %s, starting fresh: %v", t.path, err)
		return
	}
	if doc.Jobs == nil {
		doc.Jobs = make(map[string]Entry)
	}
	t.doc = doc
}

func (t *Tracker) save() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(t.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tracker: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	return nil
}

func (t *Tracker) today() string {
	return t.now().Format(dateLayout)
}

// daysSinceLastUpdate computes whole calendar days between the stored
// last_updated date and today. A missing or unparsable stored date
// counts as one day so the pass still runs.
func (t *Tracker) daysSinceLastUpdate() int {
	last, err := time.Parse(dateLayout, t.doc.LastUpdated)
	if err != nil {
		return 1
	}
	today, _ := time.Parse(dateLayout, t.today())
	return int(today.Sub(last).Hours() / 24)
}

// Update runs the single daily aging pass against the current store
// snapshot. Re-running within the same calendar day is a no-op.
func (t *Tracker) Update(records []models.JobRecord) (UpdateResult, error) {
	days := t.daysSinceLastUpdate()
	if days <= 0 {
		log.Printf("ℹ️ Job ages already updated today")
		return UpdateResult{Skipped: true, Active: len(t.doc.Jobs)}, nil
	}
	log.Printf("⏳ Updating job ages (%d days passed since last update)", days)

	current := mapset.NewSet[string]()
	for _, rec := range records {
		if rec.ID != "" {
			current.Add(rec.ID)
		}
	}

	today := t.today()
	res := UpdateResult{DaysPassed: days}

	for id, entry := range t.doc.Jobs {
		if !current.Contains(id) {
			//went away, remove regardless of age
			delete(t.doc.Jobs, id)
			res.Removed++
			log.Printf("🗑️ Job %s no longer found in current jobs", id)
			continue
		}

		entry.Age += days
		entry.LastSeen = today
		if entry.Age > t.maxAge {
			delete(t.doc.Jobs, id)
			res.Removed++
			log.Printf("🗑️ Job %s aged out (age: %d days)", id, entry.Age)
			continue
		}
		t.doc.Jobs[id] = entry
	}

	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, tracked := t.doc.Jobs[rec.ID]; tracked {
			continue
		}
		t.doc.Jobs[rec.ID] = Entry{
			Age:       1,
			FirstSeen: today,
			LastSeen:  today,
			Title:     rec.Title,
			Company:   rec.Company,
			URL:       rec.URL,
		}
		res.New++
		log.Printf("🆕 Job %s: %s @ %s", rec.ID, rec.Title, rec.Company)
	}

	t.doc.LastUpdated = today
	res.Active = len(t.doc.Jobs)

	if err := t.save(); err != nil {
		return res, err
	}
	log.Printf("✅ Tracked jobs updated: %d new, %d removed, %d active", res.New, res.Removed, res.Active)
	return res, nil
}

// Annotate stamps every record with its current age and first_seen for
// downstream scoring and display. Untracked ids get age 1 as of today.
func (t *Tracker) Annotate(records []models.JobRecord) []models.JobRecord {
	today := t.today()
	annotated := make([]models.JobRecord, 0, len(records))
	for _, rec := range records {
		if entry, ok := t.doc.Jobs[rec.ID]; ok {
			rec.Age = entry.Age
			rec.FirstSeen = entry.FirstSeen
		} else {
			rec.Age = 1
			rec.FirstSeen = today
		}
		annotated = append(annotated, rec)
	}
	return annotated
}

// Entry returns the tracked entry for an id, if present.
func (t *Tracker) Entry(id string) (Entry, bool) {
	entry, ok := t.doc.Jobs[id]
	return entry, ok
}

// Active returns the number of tracked jobs.
func (t *Tracker) Active() int { return len(t.doc.Jobs) }

// AgeHistogram groups tracked jobs by age for the stats command.
func (t *Tracker) AgeHistogram() map[int]int {
	hist := make(map[int]int)
	for _, entry := range t.doc.Jobs {
		hist[entry.Age]++
	}
	return hist
}

// LastUpdated returns the date of the most recent aging pass.
func (t *Tracker) LastUpdated() string { return t.doc.LastUpdated }
