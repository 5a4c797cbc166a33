// Frequency-count feedback heuristic. Looks at which jobs the user
// applied to versus ignored and turns repeated patterns into a small
// score adjustment. This is deliberately not a trained model; it sits
// outside the digest selector and plugs in as an adjustment func.

package learning

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-jobsearch-pipeline/internal/models"
	"go-jobsearch-pipeline/internal/state"
)

// roleKeywords are the title fragments worth counting.
var roleKeywords = []string{"devops", "infrastructure", "platform", "sre", "reliability", "security", "cloud"}

// minOccurrences is how many times a pattern must repeat before it
// counts as a preference.
const minOccurrences = 2

// Patterns is the persisted shape of learning_patterns.json.
type Patterns struct {
	PreferredKeywords  []string `json:"preferred_keywords"`
	AvoidedKeywords    []string `json:"avoided_keywords"`
	PreferredCompanies []string `json:"preferred_companies"`
	AvoidedCompanies   []string `json:"avoided_companies"`
	PreferredRoles     []string `json:"preferred_roles"`
	AvoidedRoles       []string `json:"avoided_roles"`
	LastUpdated        string   `json:"last_updated"`
}

// Analyze rebuilds patterns from the interaction ledger.
func Analyze(ledger *state.Ledger) Patterns {
	appliedRoles := make(map[string]int)
	appliedCompanies := make(map[string]int)
	for _, entry := range ledger.Applied() {
		countRoles(appliedRoles, entry.Title)
		countCompany(appliedCompanies, entry.Company)
	}

	ignoredRoles := make(map[string]int)
	ignoredCompanies := make(map[string]int)
	for _, entry := range ledger.Ignored() {
		countRoles(ignoredRoles, entry.Title)
		countCompany(ignoredCompanies, entry.Company)
	}

	p := Patterns{
		PreferredRoles:     frequent(appliedRoles),
		AvoidedRoles:       frequent(ignoredRoles),
		PreferredCompanies: frequent(appliedCompanies),
		AvoidedCompanies:   frequent(ignoredCompanies),
		LastUpdated:        time.Now().Format("2006-01-02"),
	}
	//keywords mirror roles for now; jd-level extraction would feed
	//these separately
	p.PreferredKeywords = p.PreferredRoles
	p.AvoidedKeywords = p.AvoidedRoles
	return p
}

func countRoles(counts map[string]int, title string) {
	t := strings.ToLower(title)
	for _, kw := range roleKeywords {
		if strings.Contains(t, kw) {
			counts[kw]++
		}
	}
}

func countCompany(counts map[string]int, company string) {
	c := strings.ToLower(strings.TrimSpace(company))
	if c != "" {
		counts[c]++
	}
}

func frequent(counts map[string]int) []string {
	var out []string
	for term, n := range counts {
		if n >= minOccurrences {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

// Adjustment returns a small score delta for a job based on the learned
// patterns: repeated applies push similar jobs up, repeated ignores push
// them down. Avoidance wins ties.
func (p Patterns) Adjustment(job models.ScoredJob) float64 {
	title := strings.ToLower(job.Title)
	company := strings.ToLower(strings.TrimSpace(job.Company))

	for _, c := range p.AvoidedCompanies {
		if company == c {
			return -0.1
		}
	}
	for _, kw := range p.AvoidedRoles {
		if strings.Contains(title, kw) {
			return -0.05
		}
	}
	for _, c := range p.PreferredCompanies {
		if company == c {
			return 0.05
		}
	}
	for _, kw := range p.PreferredRoles {
		if strings.Contains(title, kw) {
			return 0.02
		}
	}
	return 0
}

// Save writes the patterns document.
func Save(path string, p Patterns) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal patterns: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads the patterns document; missing or corrupt means empty
// patterns, never an error.
func Load(path string) Patterns {
	data, err := os.ReadFile(path)
	if err != nil {
		return Patterns{}
	}
	var p Patterns
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("⚠️ Failed to parse %s, ignoring learned patterns: %v", path, err)
		return Patterns{}
	}
	return p
}
