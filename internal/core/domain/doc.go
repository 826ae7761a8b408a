// Package domain defines the core business entities for askdocs.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document keyed by name
//   - Chunk: A retrievable unit within a document
//   - ChatSession / Message: Persisted conversation state
//   - SearchResult: An ephemeral similarity hit
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
