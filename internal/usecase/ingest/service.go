// Package ingest orchestrates the ingestion pipeline: chunk extracted text,
// embed the chunks, append vectors and texts to the tenant's knowledge base.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kaveri-labs/grounder/internal/chunker"
	"github.com/kaveri-labs/grounder/internal/domain"
	"github.com/kaveri-labs/grounder/internal/metrics"
)

// Appender is the consumer interface for the tenant store (ISP).
type Appender interface {
	Append(ctx context.Context, tenant string, vectors [][]float32, texts []string) error
	Clear(ctx context.Context, tenant string) error
}

// Embedder is the consumer interface for document vectorization.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Service handles document ingestion for a tenant.
type Service struct {
	chunker *chunker.Chunker
	embed   Embedder
	store   Appender
	logger  *zap.Logger
}

// New creates an ingestion service.
func New(c *chunker.Chunker, embed Embedder, store Appender, logger *zap.Logger) *Service {
	return &Service{chunker: c, embed: embed, store: store, logger: logger}
}

// Result reports what one ingestion call added.
type Result struct {
	Chunks int
	Tokens int
}

// Ingest chunks the extracted text, embeds every chunk in one batch call, and
// appends the vectors and texts to the tenant's knowledge base. Text that
// chunks to nothing (empty or whitespace) is a no-op.
func (s *Service) Ingest(ctx context.Context, tenant, text string) (Result, error) {
	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return Result{}, nil
	}

	res, err := s.embed.BatchEmbed(ctx, chunks)
	if err != nil {
		return Result{}, fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.store.Append(ctx, tenant, res.Embeddings, chunks); err != nil {
		return Result{}, fmt.Errorf("append to index: %w", err)
	}

	metrics.IngestedChunksTotal.Add(float64(len(chunks)))
	s.logger.Info("ingested document",
		zap.String("tenant", tenant),
		zap.Int("chunks", len(chunks)),
		zap.Int("tokens", res.TotalTokens),
	)

	return Result{Chunks: len(chunks), Tokens: res.TotalTokens}, nil
}

// Clear resets the tenant's knowledge base. Idempotent.
func (s *Service) Clear(ctx context.Context, tenant string) error {
	if err := s.store.Clear(ctx, tenant); err != nil {
		return fmt.Errorf("clear tenant: %w", err)
	}
	return nil
}
