package engine

import (
	"context"
	"errors"
	"testing"
)

func TestStoreMemoryInsertsNewContent(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	result, err := e.StoreMemory(ctx, "agent1", "", "the sky is blue", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Strengthened {
		t.Error("expected a fresh insert, not a strengthen")
	}
	if result.Chunk.RunningIntensity != 0.5 {
		t.Errorf("expected initial intensity 0.5, got %v", result.Chunk.RunningIntensity)
	}
}

func TestStoreMemoryDedupsIdenticalContent(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	first, err := e.StoreMemory(ctx, "agent1", "", "the sky is blue", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := e.StoreMemory(ctx, "agent1", "", "the sky is blue", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Strengthened {
		t.Error("expected a duplicate store to strengthen the existing row")
	}
	if second.Chunk.ID != first.Chunk.ID {
		t.Error("expected the same chunk id after a duplicate store")
	}
	if second.Chunk.EncounterCount != 2 {
		t.Errorf("expected encounter count 2 after reinforcement, got %d", second.Chunk.EncounterCount)
	}
}

func TestStoreMemoryScopesDedupSeparately(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	_, err := e.StoreMemory(ctx, "agent1", "scope-a", "same text", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := e.StoreMemory(ctx, "agent1", "scope-b", "same text", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Strengthened {
		t.Error("expected a different scope to insert rather than strengthen")
	}
}

func TestStoreMemoryRejectsOversizedContent(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	_, err := e.StoreMemory(ctx, "agent1", "", "this is too long", "", 5)
	if !errors.Is(err, ErrInputTooLong) {
		t.Errorf("err = %v, want ErrInputTooLong", err)
	}
}

func TestStoreMemoryRejectsInvalidMetadataJSON(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	_, err := e.StoreMemory(ctx, "agent1", "", "some content", "not json", 0)
	if !errors.Is(err, ErrInvalidMetadata) {
		t.Errorf("err = %v, want ErrInvalidMetadata", err)
	}
}

func TestStoreMemoryAcceptsValidMetadataJSON(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	result, err := e.StoreMemory(ctx, "agent1", "", "some content", `{"source":"test"}`, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Chunk.Metadata != `{"source":"test"}` {
		t.Errorf("metadata not preserved: %q", result.Chunk.Metadata)
	}
}
