package ingest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kaveri-labs/grounder/internal/chunker"
	"github.com/kaveri-labs/grounder/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	dim      int
	err      error
	gotTexts []string
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.gotTexts = texts
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = make([]float32, m.dim)
		embeddings[i][0] = float32(i)
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 5 * len(texts)}, nil
}

type mockStore struct {
	appendErr   error
	clearErr    error
	gotVectors  [][]float32
	gotTexts    []string
	clearCalled bool
}

func (m *mockStore) Append(_ context.Context, _ string, vectors [][]float32, texts []string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.gotVectors = vectors
	m.gotTexts = texts
	return nil
}

func (m *mockStore) Clear(_ context.Context, _ string) error {
	m.clearCalled = true
	return m.clearErr
}

func newService(t *testing.T, embed *mockEmbedder, store *mockStore) *Service {
	t.Helper()
	c, err := chunker.New(3, 1)
	if err != nil {
		t.Fatalf("chunker.New: %v", err)
	}
	return New(c, embed, store, zap.NewNop())
}

// --- Tests ---

func TestIngest(t *testing.T) {
	embed := &mockEmbedder{dim: 4}
	store := &mockStore{}
	svc := newService(t, embed, store)

	res, err := svc.Ingest(context.Background(), "alice", "the cat sat on the mat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Chunks != 3 {
		t.Errorf("chunks = %d, want 3", res.Chunks)
	}

	wantChunks := []string{"the cat sat", "sat on the", "the mat"}
	if !reflect.DeepEqual(store.gotTexts, wantChunks) {
		t.Errorf("stored texts = %v, want %v", store.gotTexts, wantChunks)
	}
	if len(store.gotVectors) != len(store.gotTexts) {
		t.Errorf("vector count %d != text count %d", len(store.gotVectors), len(store.gotTexts))
	}
	if !reflect.DeepEqual(embed.gotTexts, wantChunks) {
		t.Errorf("embedded texts = %v, want the chunks in order", embed.gotTexts)
	}
}

func TestIngest_EmptyText(t *testing.T) {
	embed := &mockEmbedder{dim: 4}
	store := &mockStore{}
	svc := newService(t, embed, store)

	res, err := svc.Ingest(context.Background(), "alice", "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Chunks != 0 {
		t.Errorf("chunks = %d, want 0", res.Chunks)
	}
	if embed.gotTexts != nil {
		t.Error("embedder must not be called for empty text")
	}
}

func TestIngest_EmbedderFailurePropagates(t *testing.T) {
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	store := &mockStore{}
	svc := newService(t, embed, store)

	_, err := svc.Ingest(context.Background(), "alice", "some text here")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if store.gotTexts != nil {
		t.Error("store must not be touched when embedding fails")
	}
}

func TestIngest_AppendFailurePropagates(t *testing.T) {
	embed := &mockEmbedder{dim: 2}
	store := &mockStore{appendErr: domain.ErrVectorDimMismatch}
	svc := newService(t, embed, store)

	_, err := svc.Ingest(context.Background(), "alice", "some text here")
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestClear(t *testing.T) {
	store := &mockStore{}
	svc := newService(t, &mockEmbedder{dim: 2}, store)

	if err := svc.Clear(context.Background(), "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.clearCalled {
		t.Error("expected store clear to be called")
	}
}
