package engine

import (
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestEngine opens a fresh Engine in a temp directory with a
// deterministic fake embedder, registering cleanup with t.
func setupTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mnemos-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	e, err := Open(filepath.Join(tmpDir, "test.db"), EmbedFunc(fakeEmbed), "test-model", opts...)
	if err != nil {
		t.Fatalf("failed to open engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })

	return e
}

// fakeEmbed is a deterministic stand-in embedder: it hashes each
// lower-cased word of the input into a bucket of a fixed-width vector,
// so that two texts' similarity tracks their word overlap (a bag-of-
// words cosine) without depending on a real model.
func fakeEmbed(_ context.Context, text string) ([]float32, error) {
	const dims = 64
	v := make([]float32, dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[int(h.Sum32())%dims] += 1
	}
	var norm float32
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v, nil
	}
	root := float32(1)
	for root*root < norm {
		root += 0.01
	}
	for i := range v {
		v[i] /= root
	}
	return v, nil
}

// fakeLLM is a scripted LlmClient: it returns whatever the test wires up
// for a given call index, regardless of the prompt content.
type fakeLLM struct {
	responses []string
	calls     int
}

func (f *fakeLLM) Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	if f.calls >= len(f.responses) {
		return "", nil
	}
	r := f.responses[f.calls]
	f.calls++
	return r, nil
}
