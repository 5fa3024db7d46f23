package engine

import (
	"encoding/binary"
	"math"
)

// vectorToBlob writes exactly 4*len(v) bytes of little-endian float32,
// suitable for storing in the embedding column of a chunk row.
func vectorToBlob(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// vectorFromBlob reinterprets a byte blob produced by vectorToBlob back
// into a float32 vector. A blob whose length is not a multiple of 4 is
// truncated to the last whole float32.
func vectorFromBlob(b []byte) []float32 {
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// cosineSimilarity computes cosine similarity between a and b. It fails
// with ErrVectorLenMismatch if the lengths differ and ErrZeroLength if
// either length is zero. When either vector has zero magnitude,
// similarity is defined to be 0 to avoid division by zero.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrZeroLength
	}
	if len(a) != len(b) {
		return 0, ErrVectorLenMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		fa, fb := float64(a[i]), float64(b[i])
		dot += fa * fb
		normA += fa * fa
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
