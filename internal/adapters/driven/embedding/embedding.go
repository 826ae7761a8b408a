// Package embedding provides embedding service adapters and the wrappers
// every configured adapter is composed with: lazy single-flight
// initialisation, unit normalisation, and request rate limiting.
package embedding

import "strings"

// FilterBlank drops empty and whitespace-only entries from texts,
// returning the kept texts and the original index of each. Batch
// embedding must not fail a whole batch for one blank chunk, and callers
// re-associate results through the returned indices.
func FilterBlank(texts []string) ([]string, []int) {
	kept := make([]string, 0, len(texts))
	indices := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		kept = append(kept, text)
		indices = append(indices, i)
	}
	return kept, indices
}
