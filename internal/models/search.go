// internal/models/search.go
package models

// SearchResult is one organic hit returned by the search provider. Its
// position in the returned slice is the provider's relevance order and is
// used as the index when the relevance filter selects results.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
