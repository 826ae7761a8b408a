// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Document/chunk persistence and similarity search
//   - SessionStore: Chat session and message persistence
//   - EmbeddingService: Generates vector embeddings for chunks and queries
//   - Extractor: Turns source files into plain document text
//
// # Optional Interfaces
//
//   - Generator: Produces natural-language replies. Without it, chat is
//     disabled but ingestion and search keep working.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
