// Content-based job identity.
// The same posting collected twice, or from two different boards with the
// same URL, must always collapse to the same id across processes.

package identity

import (
	"crypto/sha256"
	"encoding/hex"

	"go-jobsearch-pipeline/internal/models"
)

// Length is the hex prefix kept from the full digest. 20 chars is plenty
// for a personal-scale dataset; this is not a security boundary.
const Length = 20

// Assign derives the stable id for a posting from exactly
// (title, company, location, url). Missing fields count as empty strings.
func Assign(p models.Posting) string {
	base := p.Title + "|" + p.Company + "|" + p.Location + "|" + p.URL
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])[:Length]
}
