package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-jobsearch-pipeline/internal/models"
)

func TestAssign_Stable(t *testing.T) {
	p1 := models.Posting{Title: "Head of DevOps", Company: "Acme", Location: "Tel Aviv", URL: "https://acme.io/jobs/1"}
	p2 := models.Posting{Title: "Head of DevOps", Company: "Acme", Location: "Tel Aviv", URL: "https://acme.io/jobs/1", Source: "lever", JD: "different description"}

	//source and jd must not affect identity
	assert.Equal(t, Assign(p1), Assign(p2))
	assert.Len(t, Assign(p1), Length)
}

func TestAssign_FieldSensitivity(t *testing.T) {
	base := models.Posting{Title: "Head of DevOps", Company: "Acme", Location: "Tel Aviv", URL: "https://acme.io/jobs/1"}

	tests := []struct {
		name    string
		mutated models.Posting
	}{
		{"title changed", models.Posting{Title: "Director of DevOps", Company: base.Company, Location: base.Location, URL: base.URL}},
		{"company changed", models.Posting{Title: base.Title, Company: "Globex", Location: base.Location, URL: base.URL}},
		{"location changed", models.Posting{Title: base.Title, Company: base.Company, Location: "Herzliya", URL: base.URL}},
		{"url changed", models.Posting{Title: base.Title, Company: base.Company, Location: base.Location, URL: "https://acme.io/jobs/2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, Assign(base), Assign(tt.mutated))
		})
	}
}

func TestAssign_EmptyFields(t *testing.T) {
	//missing fields are empty strings, never an error
	assert.Len(t, Assign(models.Posting{}), Length)
	assert.NotEqual(t, Assign(models.Posting{}), Assign(models.Posting{Title: "x"}))
}
