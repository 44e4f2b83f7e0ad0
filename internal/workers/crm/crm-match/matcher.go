// Package crmmatch finds tracked companies mentioned in search results.
package crmmatch

import (
	"fmt"
	"strings"

	"news-intel/internal/models"
)

// ActionMarker opens every annotation; the composer looks for it.
const ActionMarker = "[ACTION:"

// Match scans the result's title and snippet for a company in book and returns
// an annotation naming the top contact. The first company in book order wins.
// A matched company without contacts is skipped and the scan continues.
func Match(result models.SearchResult, book *models.CRMBook) (string, bool) {
	text := strings.ToLower(result.Title + " " + result.Snippet)

	var annotation string
	book.Each(func(company string, record models.CRMRecord) bool {
		if !strings.Contains(text, strings.ToLower(company)) {
			return true
		}
		top, ok := record.TopContact()
		if !ok {
			return true
		}
		annotation = Annotation(company, record.RelationshipStrength, top)
		return false
	})
	return annotation, annotation != ""
}

func Annotation(company string, strength int, contact models.Contact) string {
	return fmt.Sprintf(" %s You have %d contacts at %s. Reach out to %s (%s)]",
		ActionMarker, strength, company, contact.Name, contact.Role)
}
