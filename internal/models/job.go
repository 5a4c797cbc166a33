package models

// Posting is a raw job record as produced by a collector, before identity
// assignment and before the store's title policy has looked at it.
// Duplicates across collectors are expected here.
type Posting struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	PostedAt string `json:"posted_at"`
	JD       string `json:"jd"`
}

// JobRecord is an accepted posting with its stable identity.
// Age and FirstSeen are stamped by the tracker's annotate pass.
// Serialized one record per line into jobs.jsonl.
type JobRecord struct {
	Posting
	ID        string `json:"id"`
	Age       int    `json:"age,omitempty"`
	FirstSeen string `json:"first_seen,omitempty"`
}

// ScoredJob is a job record after profile scoring, one per line in
// scores.jsonl, sorted by score descending.
type ScoredJob struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Company   string  `json:"company"`
	Location  string  `json:"location"`
	URL       string  `json:"url"`
	Score     float64 `json:"score"`
	WhyFit    string  `json:"why_fit"`
	Age       int     `json:"age"`
	FirstSeen string  `json:"first_seen"`
}
