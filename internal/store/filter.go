package store

import (
	"strings"

	"golang.org/x/text/cases"
)

// Default title policy: leadership roles only, no IC or tech-lead style
// positions. Both lists are matched as case-insensitive substrings.
var (
	DefaultExcludedRoles = []string{
		"architect", "tech lead", "technical lead", "team lead", "staff engineer",
		"principal engineer", "senior engineer", "software engineer", "devops team lead",
	}

	DefaultRequiredLeadership = []string{
		"head", "director", "manager", "vp", "group lead",
	}
)

var fold = cases.Fold()

// TitleFilter is the two-sided inclusion policy applied before a posting
// enters the store: a title must avoid every excluded term AND contain at
// least one required leadership term. Exclusion wins when both match.
type TitleFilter struct {
	excluded []string
	required []string
}

// NewTitleFilter builds a filter from the configured term lists. Empty
// lists fall back to the defaults.
func NewTitleFilter(excluded, required []string) *TitleFilter {
	if len(excluded) == 0 {
		excluded = DefaultExcludedRoles
	}
	if len(required) == 0 {
		required = DefaultRequiredLeadership
	}

	f := &TitleFilter{}
	for _, term := range excluded {
		f.excluded = append(f.excluded, fold.String(term))
	}
	for _, term := range required {
		f.required = append(f.required, fold.String(term))
	}
	return f
}

// Accept reports whether a title passes the policy.
func (f *TitleFilter) Accept(title string) bool {
	t := fold.String(title)

	for _, term := range f.excluded {
		if strings.Contains(t, term) {
			return false
		}
	}

	for _, term := range f.required {
		if strings.Contains(t, term) {
			return true
		}
	}
	return false
}
