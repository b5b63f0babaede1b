package domain

// RetrievalResult is a chunk annotated with per-query ranking scores.
// It is transient: constructed per query and never persisted.
type RetrievalResult struct {
	// Chunk is the retrieved chunk.
	Chunk Chunk

	// VectorScore is the raw Euclidean distance from the query vector.
	// Zero for keyword-only candidates.
	VectorScore float64

	// KeywordScore is the keyword engine's score. Zero for vector-only
	// candidates.
	KeywordScore float64

	// CombinedScore is the fused ranking score the final order sorts by.
	CombinedScore float64

	// RelevanceScore is the normalised, distance-banded confidence in
	// [0,1] that this chunk answers the query.
	RelevanceScore float64
}

// AnswerResult is a generated answer with its confidence and sources.
// Transient: one per query.
type AnswerResult struct {
	// Answer is the generated (or fallback template) answer text.
	Answer string

	// Confidence grades the answer in [0,1].
	Confidence float64

	// Sources lists the cited documents ordered by relevance, one entry
	// per distinct filename.
	Sources []AnswerSource

	// RetrievedCount is the number of ranked chunks the answer drew on.
	RetrievedCount int
}

// AnswerSource identifies one cited document.
type AnswerSource struct {
	// Filename is the cited document's base name.
	Filename string

	// RelevanceScore is the best relevance among the document's chunks.
	RelevanceScore float64

	// ChunkIndex is the index of the best-scoring chunk.
	ChunkIndex int
}

// IndexStats describes the vector index's persistent state.
type IndexStats struct {
	// RecordCount is the number of stored chunk vectors.
	RecordCount int

	// Dimension is the index's fixed vector dimension.
	Dimension int

	// Strategy names the embedding strategy the index was built with.
	Strategy string
}

// SearchRecord is one remembered query from the search history.
type SearchRecord struct {
	// ID is the history row identifier.
	ID int64

	// Query is the text that was searched.
	Query string

	// Mode is the search mode that was used.
	Mode SearchMode

	// ResultCount is how many results the query returned.
	ResultCount int

	// SearchedAt is when the query ran, unix seconds.
	SearchedAt int64
}
