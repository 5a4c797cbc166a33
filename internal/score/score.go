// Profile scoring. The similarity call itself is an external AI service
// boundary hidden behind the Scorer interface; everything else here is
// plain bookkeeping around scores.jsonl.

package score

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-jobsearch-pipeline/internal/models"
)

// Scorer rates how well a job text matches the candidate profile,
// returning a similarity in the [0,1]-ish range.
type Scorer interface {
	Score(ctx context.Context, profile, jobText string) (float64, error)
}

// Cosine computes cosine similarity between two embedding vectors.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// WhyFit derives the short human-readable rationale shown in the digest.
func WhyFit(rec models.JobRecord) string {
	var reasons []string
	title := strings.ToLower(rec.Title)
	jd := strings.ToLower(rec.JD)

	if strings.Contains(title, "head") || strings.Contains(title, "director") {
		reasons = append(reasons, "senior leadership scope")
	}
	if strings.Contains(title, "devops") || strings.Contains(title, "platform") || strings.Contains(title, "sre") {
		reasons = append(reasons, "platform reliability focus")
	}
	if strings.Contains(jd, "kubernetes") || strings.Contains(jd, "eks") {
		reasons = append(reasons, "k8s scale")
	}

	if len(reasons) == 0 {
		return "strong profile alignment"
	}
	return strings.Join(reasons, ", ")
}

// ScoreAll rates every record against the profile and returns the rows
// sorted by score descending. A record whose scoring call fails is
// skipped and logged, not fatal to the batch.
func ScoreAll(ctx context.Context, scorer Scorer, profile string, records []models.JobRecord) []models.ScoredJob {
	var rows []models.ScoredJob

	for _, rec := range records {
		jobText := rec.Title + "\n" + rec.JD
		s, err := scorer.Score(ctx, profile, jobText)
		if err != nil {
			log.Printf("⚠️ Failed to score %s @ %s: %v", rec.Title, rec.Company, err)
			continue
		}

		age := rec.Age
		if age == 0 {
			age = 1
		}
		rows = append(rows, models.ScoredJob{
			ID:        rec.ID,
			Title:     rec.Title,
			Company:   rec.Company,
			Location:  rec.Location,
			URL:       rec.URL,
			Score:     math.Round(s*10000) / 10000,
			WhyFit:    WhyFit(rec),
			Age:       age,
			FirstSeen: rec.FirstSeen,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	return rows
}

// WriteScores rewrites scores.jsonl with the given rows.
func WriteScores(path string, rows []models.ScoredJob) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encode score row %s: %w", row.ID, err)
		}
	}
	return w.Flush()
}

// LoadScores reads scores.jsonl, skipping malformed lines.
func LoadScores(path string) ([]models.ScoredJob, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []models.ScoredJob
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row models.ScoredJob
		if err := json.Unmarshal(line, &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, scanner.Err()
}
