// Package safety contains deterministic helpers that keep oversized data
// out of logs and traces without losing the ability to correlate it.
package safety

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
)

// MaxLoggedValues is the largest number of vector components carried into
// a log or trace payload. Embeddings are typically hundreds of dimensions
// wide; anything past this prefix adds noise, not signal.
const MaxLoggedValues = 64

// VectorPayload is the log-safe representation of an embedding vector.
// Checksum always covers the full original vector, so two truncated
// payloads are comparable even though the tail was dropped.
type VectorPayload struct {
	Values      []float64 `json:"values"`
	OriginalLen int       `json:"original_len"`
	Checksum    string    `json:"checksum"`
	Truncated   bool      `json:"truncated"`
}

// TruncateVector converts a raw embedding into a log-safe payload,
// keeping at most MaxLoggedValues components and recording an FNV-1a
// checksum of the complete vector.
func TruncateVector(values []float64) VectorPayload {
	p := VectorPayload{
		OriginalLen: len(values),
		Checksum:    checksum(values),
	}
	if len(values) > MaxLoggedValues {
		p.Values = append([]float64(nil), values[:MaxLoggedValues]...)
		p.Truncated = true
		return p
	}
	p.Values = append([]float64(nil), values...)
	return p
}

// TruncatePayload re-applies truncation to an existing payload. Applying
// it to an already-truncated payload is the identity: the checksum and
// values are preserved as-is, never re-derived from the shortened prefix.
func TruncatePayload(p VectorPayload) VectorPayload {
	if p.Truncated {
		return p
	}
	out := TruncateVector(p.Values)
	if p.Checksum != "" {
		out.Checksum = p.Checksum
	}
	if p.OriginalLen > out.OriginalLen {
		out.OriginalLen = p.OriginalLen
	}
	return out
}

// checksum hashes the IEEE 754 bit patterns of the vector with FNV-1a.
func checksum(values []float64) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range values {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
