package domain

import (
	"crypto/md5" //nolint:gosec // content fingerprint for duplicate detection, not security
	"encoding/hex"
	"strconv"
	"time"
)

// Document represents an ingested source file with extracted text.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourcePath is the absolute path of the source file.
	SourcePath string

	// Filename is the base name of the source file. Document removal is
	// addressed by filename, so it must be unique within the index.
	Filename string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// FileType is the source file extension without the leading dot.
	FileType string

	// FileSizeMB is the source file size in megabytes.
	FileSizeMB float64

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Documents are split into overlapping chunks for granular search results.
// Chunks are immutable once stored: content changes replace the chunk
// rather than mutating it.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk. Never empty.
	Content string

	// Embedding is the vector representation for semantic search.
	// Write-once: set during ingestion, never replaced in place.
	Embedding []float32

	// Metadata carries the fixed descriptive schema for this chunk.
	Metadata ChunkMetadata
}

// ChunkMetadata is the fixed metadata schema attached to every chunk.
// Classifier output (category, priority, tags, summary) is filled in by
// the pipeline before storage. Custom is the open extension point for
// additional annotations.
type ChunkMetadata struct {
	// SourcePath is the absolute path of the originating file.
	SourcePath string

	// Filename is the base name of the originating file.
	Filename string

	// ChunkIndex is the ordinal position within the document.
	// Invariant: 0 <= ChunkIndex < ChunkCount.
	ChunkIndex int

	// ChunkCount is the total number of chunks from the same document.
	ChunkCount int

	// FileType is the source file extension without the leading dot.
	FileType string

	// FileSizeMB is the source file size in megabytes.
	FileSizeMB float64

	// ContentHash is a stable fingerprint of Content. Identical content
	// yields an identical hash, which is what hybrid ranking and
	// duplicate detection key on.
	ContentHash string

	// Category is the classifier-assigned category.
	Category Category

	// Priority is the classifier-assigned priority.
	Priority Priority

	// Tags are the classifier-extracted salient tokens.
	Tags []string

	// Summary is a truncated preview of the chunk content.
	Summary string

	// Custom holds free-form annotations beyond the fixed schema.
	Custom map[string]string
}

// Field returns the string form of a metadata field addressed by its
// filter key, checking Custom for unknown keys. The second return value
// reports whether the key is known.
func (m ChunkMetadata) Field(key string) (string, bool) {
	switch key {
	case "source_path":
		return m.SourcePath, true
	case "filename":
		return m.Filename, true
	case "chunk_index":
		return strconv.Itoa(m.ChunkIndex), true
	case "file_type":
		return m.FileType, true
	case "category":
		return m.Category.String(), true
	case "priority":
		return m.Priority.String(), true
	default:
		val, ok := m.Custom[key]
		return val, ok
	}
}

// MetadataFilter restricts an index operation to chunks whose metadata
// matches every key/value pair, a conjunction of equality constraints.
// An empty or nil filter matches everything.
type MetadataFilter map[string]string

// Matches reports whether the metadata satisfies every filter constraint.
func (f MetadataFilter) Matches(m ChunkMetadata) bool {
	for key, want := range f {
		got, ok := m.Field(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// HashContent computes the stable content fingerprint used for
// ContentHash. It is a pure function of the input text.
func HashContent(content string) string {
	sum := md5.Sum([]byte(content)) //nolint:gosec // fingerprint, not security
	return hex.EncodeToString(sum[:])
}

// Category classifies what kind of material a chunk contains.
type Category string

// The fixed category set. Classification that matches nothing falls back
// to CategoryReference.
const (
	CategoryWork      Category = "work"
	CategoryStudy     Category = "study"
	CategoryPersonal  Category = "personal"
	CategoryReference Category = "reference"
	CategoryResearch  Category = "research"
	CategoryIdeas     Category = "ideas"
)

// DefaultCategory is assigned when no category keywords match.
const DefaultCategory = CategoryReference

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryStudy, CategoryPersonal,
		CategoryReference, CategoryResearch, CategoryIdeas:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// AllCategories returns the fixed category set in a stable order.
func AllCategories() []Category {
	return []Category{
		CategoryWork,
		CategoryStudy,
		CategoryPersonal,
		CategoryReference,
		CategoryResearch,
		CategoryIdeas,
	}
}

// Priority grades how urgent a chunk's material is.
type Priority string

// Available priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid returns true if the priority is recognised.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Priority) String() string {
	return string(p)
}
