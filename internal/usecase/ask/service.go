// Package ask answers questions against a tenant's knowledge base: retrieve
// the nearest chunks, ask the generative model to answer only from them, and
// score retrieval relevance independently of the model's self-report.
package ask

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kaveri-labs/grounder/internal/domain"
	"github.com/kaveri-labs/grounder/internal/metrics"
)

// Searcher is the consumer interface for the tenant store (ISP).
type Searcher interface {
	Search(ctx context.Context, tenant string, query []float32, k int) ([]domain.RetrievedChunk, error)
}

// Embedder is the consumer interface for query vectorization.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator is the consumer interface for answer generation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service answers questions for a tenant.
type Service struct {
	store  Searcher
	embed  Embedder
	gen    Generator
	topK   int
	logger *zap.Logger
}

// New creates an ask service. topK <= 0 falls back to the default.
func New(store Searcher, embed Embedder, gen Generator, topK int, logger *zap.Logger) *Service {
	if topK <= 0 {
		topK = domain.DefaultRetrievalConfig().TopK
	}
	return &Service{store: store, embed: embed, gen: gen, topK: topK, logger: logger}
}

// Retrieve embeds the question and returns the tenant's top-k nearest chunks,
// ascending by distance. No knowledge base yields an empty result: an
// expected first-use state, not an error.
func (s *Service) Retrieve(ctx context.Context, tenant, question string, k int) ([]domain.RetrievedChunk, []float32, error) {
	if k <= 0 {
		k = s.topK
	}

	embRes, err := s.embed.Embed(ctx, question)
	if err != nil {
		return nil, nil, fmt.Errorf("embed question: %w", err)
	}

	chunks, err := s.store.Search(ctx, tenant, embRes.Embedding, k)
	if err != nil {
		return nil, nil, fmt.Errorf("search index: %w", err)
	}
	return chunks, embRes.Embedding, nil
}

// Ask answers a question from the tenant's knowledge base.
//
// The result carries two independent confidence signals: SimilarityScore
// (cosine between the question and the top retrieved chunk, 0-100) measures
// whether anything relevant was retrieved; ModelConfidence (the model's own
// 0-100 self-report) measures how sure the model was given that context.
// Malformed model output degrades to the raw text with confidence 0; the
// similarity score is computed regardless. k <= 0 uses the configured top-k.
func (s *Service) Ask(ctx context.Context, tenant, question string, k int) (domain.QueryResult, error) {
	chunks, questionVec, err := s.Retrieve(ctx, tenant, question, k)
	if err != nil {
		return domain.QueryResult{}, err
	}

	if len(chunks) == 0 {
		metrics.RetrievalsTotal.WithLabelValues("empty").Inc()
		return domain.QueryResult{Answer: domain.NoDocumentsAnswer}, nil
	}
	metrics.RetrievalsTotal.WithLabelValues("hit").Inc()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	raw, err := s.gen.Generate(ctx, buildPrompt(strings.Join(texts, "\n"), question))
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("generate answer: %w", err)
	}

	answer, confidence, parsed := parseStructured(raw)
	if !parsed {
		metrics.GenerationParseFailuresTotal.Inc()
		s.logger.Warn("generative output not parseable, degrading to raw text",
			zap.String("tenant", tenant),
			zap.Int("raw_len", len(raw)),
		)
		answer = strings.TrimSpace(raw)
		confidence = 0
	}

	similarity, err := s.similarityScore(ctx, questionVec, chunks[0].Text)
	if err != nil {
		return domain.QueryResult{}, err
	}

	return domain.QueryResult{
		Answer:          answer,
		SimilarityScore: similarity,
		ModelConfidence: confidence,
		Chunks:          chunks,
	}, nil
}

// similarityScore re-embeds the top retrieved chunk and scales its cosine
// similarity against the question vector to 0-100.
func (s *Service) similarityScore(ctx context.Context, questionVec []float32, topChunk string) (float64, error) {
	res, err := s.embed.Embed(ctx, topChunk)
	if err != nil {
		return 0, fmt.Errorf("embed top chunk: %w", err)
	}
	return domain.CosineSimilarity(questionVec, res.Embedding) * 100, nil
}

func buildPrompt(context, question string) string {
	var b strings.Builder
	b.WriteString("You are an assistant answering based only on the given context. ")
	b.WriteString("Respond in JSON with your answer and a confidence score (0 to 100).\n\n")
	b.WriteString("Context:\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nRespond ONLY in this format:\n")
	b.WriteString(`{"answer": "your answer here", "confidence": 87}`)
	return b.String()
}
