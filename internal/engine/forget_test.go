package engine

import (
	"context"
	"testing"
)

func TestForgetMemoryDeletesMatchingChunk(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	stored, err := e.StoreMemory(ctx, "agent1", "", "the user dislikes cilantro", "", 0)
	if err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}

	deleted, err := e.ForgetMemory(ctx, "agent1", "", "the user dislikes cilantro", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "the user dislikes cilantro" {
		t.Fatalf("expected the stored content to be deleted, got %v", deleted)
	}

	remaining, err := e.getChunkByID(ctx, stored.Chunk.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != nil {
		t.Error("expected the chunk to no longer exist")
	}
}

func TestForgetMemoryResurrectsDirectPredecessor(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`[{"fact":"the user lives in seattle","intensity":0.8}]`,
		`[{"fact":"the user lives in portland","intensity":0.8}]`,
		"SUPERSEDES",
	}}
	e := setupTestEngine(t, WithLlmClient(llm))
	ctx := context.Background()

	_, err := e.RememberFacts(ctx, "agent1", "", "first")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = e.RememberFacts(ctx, "agent1", "", "second")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, err := e.getActiveChunks(ctx, "agent1", KindFact, -1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active fact before forget, got %d", len(active))
	}

	deleted, err := e.ForgetMemory(ctx, "agent1", "", "the user lives in portland", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("expected the superseding fact to be deleted, got %v", deleted)
	}

	active, err = e.getActiveChunks(ctx, "agent1", KindFact, -1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 1 || active[0].Content != "the user lives in seattle" {
		t.Fatalf("expected the superseded predecessor to be resurrected, got %+v", active)
	}
}

func TestForgetMemoryNoMatchIsNotError(t *testing.T) {
	e := setupTestEngine(t)
	deleted, err := e.ForgetMemory(context.Background(), "agent1", "", "nothing stored matches this", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 0 {
		t.Errorf("expected no deletions, got %v", deleted)
	}
}

func TestForgetMemoryDefaultThreshold(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	if _, err := e.StoreMemory(ctx, "agent1", "", "loosely related topic content", "", 0); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}

	// A near-exact query at the zero-value threshold should fall back to
	// the default of 0.7 and still match.
	deleted, err := e.ForgetMemory(ctx, "agent1", "", "loosely related topic content", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 1 {
		t.Errorf("expected default threshold to match an exact restatement, got %v", deleted)
	}
}
