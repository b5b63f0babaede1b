// Package chunker provides a paragraph-aware text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tessera-labs/quaero-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// paragraphSepLen accounts for the "\n\n" joining paragraphs in a chunk.
const paragraphSepLen = 2

// Processor splits document content into overlapping chunks along
// paragraph boundaries. Paragraphs over the chunk size are re-split at
// sentence boundaries. A single sentence longer than the chunk size is
// emitted whole; every other chunk stays within the configured size.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// The chunk size must be positive and the overlap must satisfy
// 0 <= overlap < chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", p.chunkSize, domain.ErrInvalidInput)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, chunk size), got %d: %w", p.overlap, domain.ErrInvalidInput)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	pieces := p.Split(doc.Content)
	if len(pieces) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, content := range pieces {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    content,
			Metadata: domain.ChunkMetadata{
				SourcePath:  doc.SourcePath,
				Filename:    doc.Filename,
				ChunkIndex:  i,
				ChunkCount:  len(pieces),
				FileType:    doc.FileType,
				FileSizeMB:  doc.FileSizeMB,
				ContentHash: domain.HashContent(content),
			},
		})
	}

	return chunks, nil
}

// Split divides text into overlapping chunk strings.
// Empty or whitespace-only text produces no chunks.
func (p *Processor) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	chunks := p.splitParagraphs(text)

	// Chunks still over the limit get re-split at sentence boundaries.
	// A lone sentence can exceed the limit on its own; splitSentences
	// emits it whole rather than cutting mid-sentence.
	var refined []string
	for _, chunk := range chunks {
		if len(chunk) <= p.chunkSize {
			refined = append(refined, chunk)
			continue
		}
		refined = append(refined, p.splitSentences(chunk)...)
	}

	return refined
}

// splitParagraphs accumulates blank-line separated paragraphs into
// chunks, carrying the last overlap characters of each closed chunk
// into the next.
func (p *Processor) splitParagraphs(text string) []string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" {
			paragraphs = append(paragraphs, para)
		}
	}

	var chunks []string
	current := ""

	for _, para := range paragraphs {
		if len(current)+len(para)+paragraphSepLen > p.chunkSize {
			if current != "" {
				chunks = append(chunks, current)
				current = overlapTail(current, p.overlap) + " " + para
			} else {
				current = para
			}
		} else {
			if current != "" {
				current += "\n\n" + para
			} else {
				current = para
			}
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}

// splitSentences breaks an oversized chunk at sentence boundaries with
// the same overlap carry. A sentence exceeding the chunk size has no
// boundary to break at, so it becomes a chunk on its own.
func (p *Processor) splitSentences(chunk string) []string {
	sentences := strings.FieldsFunc(chunk, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var out []string
	current := ""

	for _, sentence := range sentences {
		if len(current)+len(sentence)+1 > p.chunkSize {
			if current != "" {
				out = append(out, current)
				current = overlapTail(current, p.overlap) + sentence
			} else {
				current = sentence
			}
		} else {
			if current != "" {
				current += "." + sentence
			} else {
				current = sentence
			}
		}
	}

	if current != "" {
		out = append(out, current)
	}

	return out
}

// overlapTail returns the last n characters of s.
func overlapTail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
