// Package index implements an exact nearest-neighbor flat index over dense
// float32 vectors with squared-L2 distance and a compact binary encoding.
package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/kaveri-labs/grounder/internal/domain"
)

// Binary layout: magic (4 bytes), version (uint32), dim (uint32),
// count (uint32), then count*dim float32 little-endian values.
const (
	magic   = "GVIX"
	version = 1
)

// Flat is an exact nearest-neighbor index storing vectors in insertion order.
// The zero dimension is fixed by the first Add and enforced afterwards.
// Not safe for concurrent use; callers serialize access.
type Flat struct {
	dim     int
	vectors [][]float32
}

// NewFlat creates an empty index. dim 0 means "fixed by first Add".
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Dim returns the configured dimension, 0 if not yet established.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return len(f.vectors) }

// Hit is a single nearest-neighbor result.
type Hit struct {
	Ordinal  int
	Distance float32
}

// Add appends vectors in order. The first append on an empty index fixes the
// dimension; any later mismatch fails with ErrVectorDimMismatch and leaves
// the index unchanged.
func (f *Flat) Add(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	dim := f.dim
	if dim == 0 {
		dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("vector [%d] is empty: %w", i, domain.ErrVectorDimMismatch)
		}
		if len(v) != dim {
			return fmt.Errorf("vector [%d] has dim %d, index dim %d: %w",
				i, len(v), dim, domain.ErrVectorDimMismatch)
		}
	}

	f.dim = dim
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Search returns up to k nearest vectors by squared L2 distance, ascending.
// An empty index yields an empty result. Ties break by insertion order.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(f.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has dim %d, index dim %d: %w",
			len(query), f.dim, domain.ErrVectorDimMismatch)
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Ordinal: i, Distance: l2Squared(query, v)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Encode serializes the index to its binary form.
func (f *Flat) Encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 16+len(f.vectors)*f.dim*4))
	buf.WriteString(magic)
	writeUint32(buf, version)
	writeUint32(buf, uint32(f.dim))
	writeUint32(buf, uint32(len(f.vectors)))
	for _, v := range f.vectors {
		for _, x := range v {
			writeUint32(buf, math.Float32bits(x))
		}
	}
	return buf.Bytes()
}

// Decode deserializes an index. Any structural inconsistency is reported as
// ErrIndexCorrupted rather than truncated.
func Decode(data []byte) (*Flat, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("index blob too short (%d bytes): %w", len(data), domain.ErrIndexCorrupted)
	}
	if string(data[:4]) != magic {
		return nil, fmt.Errorf("bad index magic %q: %w", data[:4], domain.ErrIndexCorrupted)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != version {
		return nil, fmt.Errorf("unsupported index version %d: %w", v, domain.ErrIndexCorrupted)
	}

	dim := int(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint32(data[12:16]))
	payload := data[16:]

	if dim < 0 || count < 0 || (count > 0 && dim == 0) {
		return nil, fmt.Errorf("invalid index header dim=%d count=%d: %w", dim, count, domain.ErrIndexCorrupted)
	}
	if len(payload) != count*dim*4 {
		return nil, fmt.Errorf("index payload is %d bytes, want %d: %w",
			len(payload), count*dim*4, domain.ErrIndexCorrupted)
	}

	f := &Flat{dim: dim, vectors: make([][]float32, count)}
	for i := 0; i < count; i++ {
		v := make([]float32, dim)
		for j := 0; j < dim; j++ {
			off := (i*dim + j) * 4
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off:]))
		}
		f.vectors[i] = v
	}
	return f, nil
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
