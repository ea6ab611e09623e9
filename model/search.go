package model

// SearchResult is one matching record field from a cross-resource search.
type SearchResult struct {
	Resource string `json:"resource"`
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Value    string `json:"value"`
}

// SearchResponse is the payload of the search endpoint.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
	// Sources records the per-resource outcome: "ok", "timeout", or "error".
	Sources     map[string]string `json:"sources"`
	QueryTimeMs int64             `json:"query_time_ms"`
}
