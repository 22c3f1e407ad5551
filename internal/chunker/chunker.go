// Package chunker splits raw text into overlapping word windows, the unit of
// embedding and retrieval.
package chunker

import (
	"fmt"
	"strings"

	"github.com/kaveri-labs/grounder/internal/domain"
)

// Chunker produces overlapping word-window chunks.
type Chunker struct {
	window  int
	overlap int
}

// New creates a Chunker. Requires 0 <= overlap < window, so that the window
// advances by at least one token per step.
func New(window, overlap int) (*Chunker, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d: %w", window, domain.ErrInvalidChunking)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must be non-negative, got %d: %w", overlap, domain.ErrInvalidChunking)
	}
	if overlap >= window {
		return nil, fmt.Errorf("overlap %d must be smaller than window %d: %w",
			overlap, window, domain.ErrInvalidChunking)
	}
	return &Chunker{window: window, overlap: overlap}, nil
}

// Chunk splits text on whitespace and emits successive windows of c.window
// tokens, each advanced by window-overlap tokens from the previous one.
// Empty input yields nil; input shorter than one window yields a single chunk.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.window - c.overlap
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + c.window
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
