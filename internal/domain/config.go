package domain

// ChunkingConfig holds word-window chunking settings, internal to ingestion.
type ChunkingConfig struct {
	Window  int
	Overlap int
}

// DefaultChunkingConfig returns the default window/overlap tuned for
// sentence-transformer-class embedding models.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		Window:  500,
		Overlap: 100,
	}
}

// RetrievalConfig holds retrieval-side settings.
type RetrievalConfig struct {
	TopK int
}

// DefaultRetrievalConfig returns the default retrieval configuration.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{TopK: 3}
}
