package domain

// SearchResult represents a single nearest-neighbour hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Score is the similarity score. Higher means more relevant;
	// within one backend the ordering is consistent, but the numeric
	// scale may differ between backends.
	Score float64
}

// Stats summarises the state of the retrieval store for ops endpoints.
type Stats struct {
	TotalDocuments  int            `json:"total_documents"`
	TotalQueries    int            `json:"total_queries"`
	DocumentTypes   map[string]int `json:"document_types"`
	Backend         string         `json:"backend"`
	StorageLocation string         `json:"storage_location"`
}
