package engine

import (
	"context"
	"testing"
)

func TestRecallReturnsMatchingContent(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	if _, err := e.StoreMemory(ctx, "agent1", "", "the quick brown fox", "", 0); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}
	if _, err := e.StoreMemory(ctx, "agent1", "", "completely unrelated content here", "", 0); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}

	results, err := e.Recall(ctx, "agent1", "the quick brown fox", 10, RecallOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Chunk.Content != "the quick brown fox" {
		t.Errorf("top result = %q, want exact match first", results[0].Chunk.Content)
	}
}

func TestRecallLimitClamping(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := e.StoreMemory(ctx, "agent1", "", "memory "+string(rune('a'+i)), "", 0); err != nil {
			t.Fatalf("StoreMemory: %v", err)
		}
	}

	results, err := e.Recall(ctx, "agent1", "memory", 0, RecallOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) > 10 {
		t.Errorf("expected default limit of 10, got %d results", len(results))
	}

	results, err = e.Recall(ctx, "agent1", "memory", 1000, RecallOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) > 50 {
		t.Errorf("expected limit clamped to 50, got %d results", len(results))
	}
}

func TestRecallFiltersByKind(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	if _, err := e.StoreMemory(ctx, "agent1", "", "a stored memory", "", 0); err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}
	if err := e.insertChunk(ctx, e.DB(), &Chunk{
		AgentID: "agent1", Content: "a stored fact", Embedding: []float32{1, 0, 0},
		Kind: KindFact, RunningIntensity: 0.5,
	}); err != nil {
		t.Fatalf("insertChunk: %v", err)
	}

	results, err := e.Recall(ctx, "agent1", "stored", 10, RecallOptions{Kind: KindFact})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Chunk.Kind != KindFact {
			t.Errorf("expected only facts, got kind %q", r.Chunk.Kind)
		}
	}
}

func TestRecallAppliesRetrievalBoost(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	stored, err := e.StoreMemory(ctx, "agent1", "", "boost target content", "", 0)
	if err != nil {
		t.Fatalf("StoreMemory: %v", err)
	}
	before := stored.Chunk.RunningIntensity

	if _, err := e.Recall(ctx, "agent1", "boost target content", 10, RecallOptions{}); err != nil {
		t.Fatalf("Recall: %v", err)
	}

	after, err := e.getChunkByID(ctx, stored.Chunk.ID)
	if err != nil {
		t.Fatalf("getChunkByID: %v", err)
	}
	if after.RunningIntensity <= before {
		t.Errorf("expected retrieval boost to raise intensity above %v, got %v", before, after.RunningIntensity)
	}
}

func TestRecallEmptyStoreReturnsNoResults(t *testing.T) {
	e := setupTestEngine(t)
	results, err := e.Recall(context.Background(), "agent1", "anything", 10, RecallOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results on an empty store, got %d", len(results))
	}
}
