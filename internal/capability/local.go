// Package capability provides concrete, swappable implementations of
// the engine's EmbedFn and LlmClient capability interfaces: a
// deterministic local embedder for offline use, and an HTTP-backed
// adapter for networked embedding/completion endpoints.
package capability

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// LocalEmbedder is a deterministic, dependency-free embedder: it hashes
// word unigrams and bigrams into a fixed-width vector with light
// positional and stopword weighting, giving reasonable similarity
// behavior for short natural-language facts and memories without
// calling out to a network model.
type LocalEmbedder struct {
	dimensions int
	stopwords  map[string]bool
}

// NewLocalEmbedder returns a LocalEmbedder producing dims-wide vectors.
// dims defaults to 256 when zero or negative.
func NewLocalEmbedder(dims int) *LocalEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &LocalEmbedder{dimensions: dims, stopwords: buildStopwords()}
}

func buildStopwords() map[string]bool {
	words := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "as", "is", "was", "are", "were", "been",
		"be", "have", "has", "had", "do", "does", "did", "it", "its", "this",
		"that", "i", "you", "he", "she", "we", "they",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Dimensions reports the width of vectors this embedder produces.
func (e *LocalEmbedder) Dimensions() int { return e.dimensions }

// Embed implements engine.EmbedFn.
func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, e.dimensions)

	words := tokenize(text)
	if len(words) == 0 {
		return v, nil
	}

	for i, w := range words {
		if e.stopwords[w] && len(words) > 1 {
			continue
		}
		// Positional weight: terms near the start or end of the text
		// carry slightly more signal than the middle.
		pos := float32(i) / float32(len(words))
		weight := float32(1.0)
		if pos < 0.15 || pos > 0.85 {
			weight = 1.3
		}
		e.hashInto(v, w, weight)

		if i+1 < len(words) {
			bigram := w + " " + words[i+1]
			e.hashInto(v, bigram, weight*0.6)
		}
	}

	normalize(v)
	return v, nil
}

func (e *LocalEmbedder) hashInto(v []float32, token string, weight float32) {
	h := fnv.New32a()
	h.Write([]byte(token))
	idx := int(h.Sum32()) % len(v)
	if idx < 0 {
		idx += len(v)
	}
	v[idx] += weight
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	for _, p := range []string{".", ",", "!", "?", ";", ":", "'", "\"", "(", ")", "[", "]", "{", "}", "\n", "\t"} {
		text = strings.ReplaceAll(text, p, " ")
	}
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range v {
		v[i] /= norm
	}
}
