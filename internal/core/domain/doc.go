// Package domain defines the core business entities for Quaero.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: an ingested source file with extracted text
//   - Chunk: a bounded, overlap-linked segment of a document, the atomic
//     unit of retrieval
//   - RetrievalResult: a chunk annotated with per-query ranking scores
//   - AnswerResult: a generated answer with confidence and cited sources
//   - RawDocument: opaque bytes produced by a loader before normalisation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
