package models

// SearchResult is the content search proxy's aggregation of web results for a
// person. The same shape is posted back to the AI endpoint.
type SearchResult struct {
	Q       string `json:"q"`
	Summary string `json:"summary"`
}

// AIResponse is the generated obituary text.
type AIResponse struct {
	Response string `json:"response"`
}
