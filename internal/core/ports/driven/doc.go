// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentLoader: Reads raw documents from the filesystem
//   - Normaliser: Transforms raw documents into indexed form
//   - NormaliserRegistry: Selects appropriate normaliser
//   - DocumentStore: Document and chunk persistence
//   - IndexManifestStore: Embedding strategy manifest persistence
//   - SearchHistoryStore: Query history persistence
//   - ConfigStore: Application configuration
//   - EmbeddingService: Generates vector embeddings. The hashing strategy
//     needs no external service, so the fallback chain always resolves one.
//   - VectorIndex: Vector storage and similarity search
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - KeywordIndex: Full-text keyword search. Without it, hybrid search
//     fuses vector results only.
//   - LLMService: Language model operations. Without it, answers fall back
//     to an excerpt template and classification uses heuristics.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, loader, or normaliser package
package driven
