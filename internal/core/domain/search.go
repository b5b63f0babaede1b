package domain

// Default search parameters. Weights are independent multipliers and need
// not sum to 1.
const (
	DefaultSearchLimit   = 5
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3
)

// DefaultHistoryLimit is how many history entries listing shows when no
// limit is given.
const DefaultHistoryLimit = 20

// SearchMode selects how retrieval combines the two indexes.
type SearchMode string

// Available search modes.
const (
	// SearchModeHybrid fuses vector similarity with keyword scores.
	SearchModeHybrid SearchMode = "hybrid"

	// SearchModeSemantic uses vector similarity only.
	SearchModeSemantic SearchMode = "semantic"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeHybrid, SearchModeSemantic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeHybrid:
		return "Hybrid (vector + keyword fusion)"
	case SearchModeSemantic:
		return "Semantic (vector similarity only)"
	default:
		return "Unknown"
	}
}

// AllSearchModes returns all available search modes.
func AllSearchModes() []SearchMode {
	return []SearchMode{SearchModeHybrid, SearchModeSemantic}
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results (k). Defaults to
	// DefaultSearchLimit when zero.
	Limit int

	// Mode is the retrieval mode. Defaults to SearchModeHybrid when empty.
	Mode SearchMode

	// Filter restricts candidates to chunks matching every constraint.
	Filter MetadataFilter

	// VectorWeight scales vector relevance in the combined score.
	// Defaults to DefaultVectorWeight when zero.
	VectorWeight float64

	// KeywordWeight scales keyword scores in the combined score.
	// Defaults to DefaultKeywordWeight when zero.
	KeywordWeight float64
}
