package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kaveri-labs/grounder/internal/domain"
)

func newStore(t *testing.T) *TenantStore {
	t.Helper()
	s, err := New(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestAppendThenSearch(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "alice", [][]float32{{1, 0}, {0, 1}}, []string{"first", "second"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "alice", [][]float32{{0.9, 0.1}}, []string{"third"}); err != nil {
		t.Fatalf("second append: %v", err)
	}

	hits, err := s.Search(ctx, "alice", []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	if hits[0].Text != "first" {
		t.Errorf("top hit %q, want %q", hits[0].Text, "first")
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits not ascending at %d: %v", i, hits)
		}
	}

	stats, err := s.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.Exists || stats.Chunks != 3 || stats.Dimension != 2 {
		t.Errorf("stats = %+v, want exists with 3 chunks dim 2", stats)
	}
}

func TestSearch_UnknownTenant(t *testing.T) {
	s := newStore(t)

	hits, err := s.Search(context.Background(), "nobody", []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("got %d hits, want 0", len(hits))
	}
}

func TestAppend_LengthMismatchLeavesStateUnchanged(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "bob", [][]float32{{1, 0}}, []string{"kept"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	err := s.Append(ctx, "bob", [][]float32{{0, 1}, {1, 1}}, []string{"only one text"})
	if !errors.Is(err, domain.ErrInvalidAppend) {
		t.Fatalf("expected ErrInvalidAppend, got %v", err)
	}

	stats, err := s.Stats(ctx, "bob")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Chunks != 1 {
		t.Fatalf("failed append mutated state: %d chunks, want 1", stats.Chunks)
	}
}

func TestAppend_DimensionMismatchLeavesStateUnchanged(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "bob", [][]float32{{1, 0, 0}}, []string{"kept"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	err := s.Append(ctx, "bob", [][]float32{{1, 0}}, []string{"wrong dim"})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}

	stats, err := s.Stats(ctx, "bob")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Chunks != 1 || stats.Dimension != 3 {
		t.Fatalf("failed append mutated state: %+v", stats)
	}
}

func TestClear(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	// Clearing a tenant that never ingested is a no-op.
	if err := s.Clear(ctx, "carol"); err != nil {
		t.Fatalf("clear fresh tenant: %v", err)
	}

	if err := s.Append(ctx, "carol", [][]float32{{1, 0}}, []string{"gone soon"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Clear(ctx, "carol"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	hits, err := s.Search(ctx, "carol", []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search after clear: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("got %d hits after clear, want 0", len(hits))
	}

	// A fresh append re-establishes the index with a new dimension.
	if err := s.Append(ctx, "carol", [][]float32{{1, 2, 3, 4}}, []string{"rebuilt"}); err != nil {
		t.Fatalf("append after clear: %v", err)
	}
	stats, err := s.Stats(ctx, "carol")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Dimension != 4 {
		t.Fatalf("dimension after rebuild = %d, want 4", stats.Dimension)
	}
}

func TestTenantIsolation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "alice", [][]float32{{1, 0}}, []string{"alice data"}); err != nil {
		t.Fatalf("append alice: %v", err)
	}
	if err := s.Append(ctx, "bob", [][]float32{{1, 0}}, []string{"bob data"}); err != nil {
		t.Fatalf("append bob: %v", err)
	}

	hits, err := s.Search(ctx, "alice", []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, h := range hits {
		if h.Text == "bob data" {
			t.Fatal("cross-tenant read: alice saw bob's chunk")
		}
	}
}

func TestValidateTenant(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, bad := range []string{"", "..", "../etc", "a/b", ".hidden", "spaced name"} {
		err := s.Append(ctx, bad, [][]float32{{1}}, []string{"x"})
		if !errors.Is(err, domain.ErrInvalidTenantID) {
			t.Errorf("tenant %q: expected ErrInvalidTenantID, got %v", bad, err)
		}
	}

	if err := s.Append(ctx, "user-42.test_a", [][]float32{{1}}, []string{"x"}); err != nil {
		t.Errorf("valid tenant rejected: %v", err)
	}
}

func TestLoad_TornWriteReportedAsCorruption(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := s.Append(ctx, "dave", [][]float32{{1, 0}}, []string{"x"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "dave", chunksFile)); err != nil {
		t.Fatalf("remove chunks artifact: %v", err)
	}

	_, err = s.Search(ctx, "dave", []float32{1, 0}, 1)
	if !errors.Is(err, domain.ErrIndexCorrupted) {
		t.Fatalf("expected ErrIndexCorrupted, got %v", err)
	}
}

func TestLoad_CountMismatchReportedAsCorruption(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := s.Append(ctx, "dave", [][]float32{{1, 0}, {0, 1}}, []string{"a", "b"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Drop one chunk from the text artifact to break positional alignment.
	if err := os.WriteFile(filepath.Join(dir, "dave", chunksFile), []byte(`["a"]`), 0o644); err != nil {
		t.Fatalf("rewrite chunks artifact: %v", err)
	}

	_, err = s.Search(ctx, "dave", []float32{1, 0}, 1)
	if !errors.Is(err, domain.ErrIndexCorrupted) {
		t.Fatalf("expected ErrIndexCorrupted, got %v", err)
	}
}
