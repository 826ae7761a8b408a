// Package chunker splits document text into overlapping chunks,
// preferring natural boundaries over hard character breaks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// DefaultChunkSize is the default chunk size in characters.
const DefaultChunkSize = 500

// DefaultOverlap is the default overlap between adjacent chunks.
const DefaultOverlap = 50

// separators is the boundary priority order: paragraph break, line break,
// sentence-ending punctuation, clause punctuation, whitespace, and finally
// a hard character break. Finer separators are only applied to pieces that
// still exceed the chunk size.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " ", ""}

// Splitter splits text into chunks of at most chunkSize runes, with
// adjacent chunks sharing overlap runes of trailing context. Splitting is
// deterministic: identical input and configuration yield identical output.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk size in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) { s.chunkSize = size }
}

// WithOverlap sets the overlap between adjacent chunks in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) { s.overlap = overlap }
}

// New creates a Splitter. The overlap must be non-negative and strictly
// smaller than the chunk size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize < 1 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, s.chunkSize)
	}
	if s.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", domain.ErrInvalidConfig, s.overlap)
	}
	if s.overlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidConfig, s.overlap, s.chunkSize)
	}

	return s, nil
}

// ChunkSize returns the configured maximum chunk size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split breaks text into chunks. Empty or whitespace-only input produces
// no chunks and no error. The final chunk is not padded.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := split([]rune(text), s.chunkSize, 0)
	return s.merge(pieces)
}

// split recursively breaks text into pieces no longer than limit runes,
// trying separators in priority order. Each piece keeps its trailing
// separator so merged chunks read as the original text.
func split(text []rune, limit, sepIdx int) [][]rune {
	if len(text) <= limit {
		return [][]rune{text}
	}

	// Hard character break: the last resort when no separator fits.
	if sepIdx >= len(separators) || separators[sepIdx] == "" {
		var out [][]rune
		for start := 0; start < len(text); start += limit {
			end := start + limit
			if end > len(text) {
				end = len(text)
			}
			out = append(out, text[start:end])
		}
		return out
	}

	sep := []rune(separators[sepIdx])
	parts := splitAfter(text, sep)
	if len(parts) == 1 {
		// Separator absent, try the next finer one.
		return split(text, limit, sepIdx+1)
	}

	var out [][]rune
	for _, part := range parts {
		if len(part) > limit {
			out = append(out, split(part, limit, sepIdx+1)...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// splitAfter splits text after each occurrence of sep, keeping the
// separator attached to the preceding piece.
func splitAfter(text, sep []rune) [][]rune {
	var parts [][]rune
	start := 0
	for i := 0; i+len(sep) <= len(text); i++ {
		if string(text[i:i+len(sep)]) == string(sep) {
			parts = append(parts, text[start:i+len(sep)])
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// merge greedily joins adjacent pieces into chunks of at most chunkSize
// runes, carrying overlap runes of trailing context into the next chunk.
func (s *Splitter) merge(pieces [][]rune) []string {
	var chunks []string
	var current []rune

	// hasNew tracks whether current holds anything beyond carried
	// overlap; a bare overlap tail is never emitted as a chunk.
	hasNew := false

	flush := func() {
		chunk := strings.TrimSpace(string(current))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		// The overlap tail is taken from the raw buffer so separators
		// between the tail and the next piece survive.
		if s.overlap > 0 && len(current) > 0 {
			tail := current
			if len(tail) > s.overlap {
				tail = tail[len(tail)-s.overlap:]
			}
			current = append([]rune{}, tail...)
		} else {
			current = nil
		}
		hasNew = false
	}

	for _, piece := range pieces {
		if len(current) > 0 && len(current)+len(piece) > s.chunkSize {
			flush()
			// Drop carried overlap that still would not fit.
			if len(current)+len(piece) > s.chunkSize {
				current = nil
			}
		}
		current = append(current, piece...)
		hasNew = true
	}

	if hasNew {
		if last := strings.TrimSpace(string(current)); last != "" {
			chunks = append(chunks, last)
		}
	}

	return chunks
}
