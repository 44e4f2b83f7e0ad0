package websearch

import "news-intel/internal/common/logger"

type searchRequest struct {
	Query  string `json:"q"`
	Num    int    `json:"num"`
	Recent string `json:"tbs,omitempty"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

type organicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

type ServiceDependencies struct {
	Logger logger.Logger
}
