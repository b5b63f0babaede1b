package domain

import "time"

// IndexManifest records which embedding strategy produced the stored
// vectors and at what dimension. It is written when the first document
// is ingested and pins the strategy on subsequent startups so vectors
// written by one strategy are never searched with another's queries.
type IndexManifest struct {
	// Strategy is the embedding strategy the index was built with.
	Strategy EmbeddingStrategy

	// Dimension is the vector width of every stored embedding.
	Dimension int

	// UpdatedAt is when the manifest was last written.
	UpdatedAt time.Time
}
