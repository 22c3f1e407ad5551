// Package store persists one vector index plus one chunk-text blob per
// tenant, keeping the two positionally aligned across incremental appends.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/kaveri-labs/grounder/internal/domain"
	"github.com/kaveri-labs/grounder/internal/index"
)

// Per-tenant artifacts. Presence of both means "knowledge base exists";
// presence of exactly one means a torn write and is reported as corruption.
const (
	indexFile  = "index.vec"
	chunksFile = "chunks.json"
)

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// TenantStore is a file-backed per-tenant index + chunk-text store.
// Writers on one tenant are mutually exclusive; readers proceed concurrently
// while no writer is active. Distinct tenants never contend.
type TenantStore struct {
	root   string
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// Stats describes a tenant's knowledge base.
type Stats struct {
	Exists    bool
	Chunks    int
	Dimension int
}

// New creates a TenantStore rooted at dir, creating it if absent.
func New(dir string, logger *zap.Logger) (*TenantStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store root %s: %w", dir, err)
	}
	return &TenantStore{
		root:   dir,
		logger: logger,
		locks:  make(map[string]*sync.RWMutex),
	}, nil
}

// Ping verifies the store root is accessible.
func (s *TenantStore) Ping(_ context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("stat store root: %w", err)
	}
	return nil
}

// Append adds vectors and their chunk texts to the tenant's knowledge base.
// vectors and texts must have equal length; the first append fixes the index
// dimension for its lifetime. Both artifacts are staged to temp files and
// renamed into place, so a failed append leaves the stored state unchanged.
func (s *TenantStore) Append(ctx context.Context, tenant string, vectors [][]float32, texts []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTenant(tenant); err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%d vectors vs %d texts: %w", len(vectors), len(texts), domain.ErrInvalidAppend)
	}
	if len(vectors) == 0 {
		return nil
	}

	lock := s.lock(tenant)
	lock.Lock()
	defer lock.Unlock()

	idx, chunks, err := s.load(tenant)
	if err != nil {
		return err
	}

	if err := idx.Add(vectors); err != nil {
		return err
	}
	chunks = append(chunks, texts...)

	if err := s.persist(tenant, idx, chunks); err != nil {
		return err
	}

	s.logger.Debug("appended chunks",
		zap.String("tenant", tenant),
		zap.Int("added", len(texts)),
		zap.Int("total", len(chunks)),
	)
	return nil
}

// Search returns up to k nearest chunks by L2 distance, ascending. A tenant
// without a knowledge base yields an empty result, not an error.
func (s *TenantStore) Search(ctx context.Context, tenant string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTenant(tenant); err != nil {
		return nil, err
	}

	lock := s.lock(tenant)
	lock.RLock()
	defer lock.RUnlock()

	idx, chunks, err := s.load(tenant)
	if err != nil {
		return nil, err
	}
	if idx.Len() == 0 {
		return nil, nil
	}

	hits, err := idx.Search(query, k)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RetrievedChunk, len(hits))
	for i, h := range hits {
		out[i] = domain.RetrievedChunk{Text: chunks[h.Ordinal], Distance: h.Distance}
	}
	return out, nil
}

// Clear removes the tenant's knowledge base entirely. Idempotent: clearing a
// tenant that never ingested anything is a no-op.
func (s *TenantStore) Clear(ctx context.Context, tenant string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTenant(tenant); err != nil {
		return err
	}

	lock := s.lock(tenant)
	lock.Lock()
	defer lock.Unlock()

	if err := os.RemoveAll(s.tenantDir(tenant)); err != nil {
		return fmt.Errorf("clear tenant %s: %w", tenant, err)
	}
	s.logger.Info("cleared knowledge base", zap.String("tenant", tenant))
	return nil
}

// Stats reports whether the tenant has a knowledge base and its size.
func (s *TenantStore) Stats(ctx context.Context, tenant string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	if err := validateTenant(tenant); err != nil {
		return Stats{}, err
	}

	lock := s.lock(tenant)
	lock.RLock()
	defer lock.RUnlock()

	idx, _, err := s.load(tenant)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Exists:    idx.Len() > 0,
		Chunks:    idx.Len(),
		Dimension: idx.Dim(),
	}, nil
}

// load reads the persisted pair for a tenant, or returns an empty pair if
// neither artifact exists. Caller holds the tenant lock.
func (s *TenantStore) load(tenant string) (*index.Flat, []string, error) {
	dir := s.tenantDir(tenant)

	indexData, indexErr := os.ReadFile(filepath.Join(dir, indexFile))
	chunksData, chunksErr := os.ReadFile(filepath.Join(dir, chunksFile))

	switch {
	case os.IsNotExist(indexErr) && os.IsNotExist(chunksErr):
		return index.NewFlat(0), nil, nil
	case os.IsNotExist(indexErr) || os.IsNotExist(chunksErr):
		return nil, nil, fmt.Errorf("tenant %s has only one of %s/%s: %w",
			tenant, indexFile, chunksFile, domain.ErrIndexCorrupted)
	case indexErr != nil:
		return nil, nil, fmt.Errorf("read %s: %w", indexFile, indexErr)
	case chunksErr != nil:
		return nil, nil, fmt.Errorf("read %s: %w", chunksFile, chunksErr)
	}

	idx, err := index.Decode(indexData)
	if err != nil {
		return nil, nil, fmt.Errorf("tenant %s: %w", tenant, err)
	}

	var chunks []string
	if err := json.Unmarshal(chunksData, &chunks); err != nil {
		return nil, nil, fmt.Errorf("tenant %s: parse %s: %w: %w",
			tenant, chunksFile, err, domain.ErrIndexCorrupted)
	}

	if idx.Len() != len(chunks) {
		return nil, nil, fmt.Errorf("tenant %s: %d vectors vs %d chunks: %w",
			tenant, idx.Len(), len(chunks), domain.ErrIndexCorrupted)
	}
	return idx, chunks, nil
}

// persist stages both artifacts as temp files, syncs them, then renames into
// place. Caller holds the tenant lock.
func (s *TenantStore) persist(tenant string, idx *index.Flat, chunks []string) error {
	dir := s.tenantDir(tenant)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create tenant dir: %w", err)
	}

	chunksData, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}

	indexTmp, err := stage(dir, indexFile, idx.Encode())
	if err != nil {
		return err
	}
	chunksTmp, err := stage(dir, chunksFile, chunksData)
	if err != nil {
		_ = os.Remove(indexTmp)
		return err
	}

	if err := os.Rename(indexTmp, filepath.Join(dir, indexFile)); err != nil {
		_ = os.Remove(indexTmp)
		_ = os.Remove(chunksTmp)
		return fmt.Errorf("commit %s: %w", indexFile, err)
	}
	if err := os.Rename(chunksTmp, filepath.Join(dir, chunksFile)); err != nil {
		_ = os.Remove(chunksTmp)
		return fmt.Errorf("commit %s: %w", chunksFile, err)
	}
	return nil
}

// stage writes data to a temp file next to the target and syncs it.
func stage(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return tmp, nil
}

func (s *TenantStore) tenantDir(tenant string) string {
	return filepath.Join(s.root, tenant)
}

// lock returns (creating on first use) the tenant's RWMutex.
func (s *TenantStore) lock(tenant string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[tenant]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[tenant] = l
	}
	return l
}

// validateTenant rejects identifiers that could escape the per-tenant
// directory or alias another tenant's path.
func validateTenant(tenant string) error {
	if !tenantIDPattern.MatchString(tenant) {
		return fmt.Errorf("tenant %q: %w", tenant, domain.ErrInvalidTenantID)
	}
	return nil
}
