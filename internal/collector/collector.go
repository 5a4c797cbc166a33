// Collectors pull postings from public job-board APIs and normalize them
// into Posting records. They do not dedupe or filter beyond the coarse
// title/location prefilter; the store owns the real policy.

package collector

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"go-jobsearch-pipeline/internal/models"
)

// Collector is the interface every job board source implements.
type Collector interface {
	//Collect fetches and normalizes postings from the board
	Collect(ctx context.Context) ([]models.Posting, error)

	//Name is the board name (greenhouse, lever, ...)
	Name() string
}

var fold = cases.Fold()

// Matcher is the coarse prefilter applied at collection time: the title
// must contain one of the configured search titles, and the location one
// of the configured locations. Empty lists match everything.
type Matcher struct {
	titles    []string
	locations []string
}

func NewMatcher(titles, locations []string) *Matcher {
	m := &Matcher{}
	for _, t := range titles {
		m.titles = append(m.titles, fold.String(t))
	}
	for _, l := range locations {
		m.locations = append(m.locations, fold.String(l))
	}
	return m
}

func (m *Matcher) Match(p models.Posting) bool {
	return m.matchAny(p.Title, m.titles) && m.matchAny(p.Location, m.locations)
}

func (m *Matcher) matchAny(value string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	v := fold.String(value)
	for _, term := range terms {
		if strings.Contains(v, term) {
			return true
		}
	}
	return false
}
