package engine

import "time"

// Kind discriminates the two chunk flavors.
type Kind string

const (
	KindFact   Kind = "fact"
	KindMemory Kind = "memory"
)

// Chunk is a fact or memory row, as described in the data model.
type Chunk struct {
	ID              string
	AgentID         string
	Scope           string
	Content         string
	ContentHash     string // empty for facts
	Embedding       []float32
	Metadata        string
	Kind            Kind
	RunningIntensity float64
	EncounterCount  int
	AccessCount     int
	LastAccessedAt  time.Time
	CreatedAt       time.Time
	SupersededBy    string // empty when active

	// Similarity and Score are not persisted, and no engine path sets
	// them: Recall reports per-query values on RecallResult instead.
	Similarity float64
	Score      float64
}

// Active reports whether the chunk is not superseded.
func (c *Chunk) Active() bool { return c.SupersededBy == "" }

// Block is a named mutable text buffer.
type Block struct {
	AgentID   string
	Scope     string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Verdict is the classification result for C6's conflict classifier.
type Verdict string

const (
	VerdictDuplicate Verdict = "DUPLICATE"
	VerdictSupersedes Verdict = "SUPERSEDES"
	VerdictDistinct   Verdict = "DISTINCT"
)

// ExtractedFact is one entry returned by C6's extraction call.
type ExtractedFact struct {
	Fact      string
	Intensity float64
}

// ActionKind discriminates the outcomes of a single remember_facts step.
type ActionKind string

const (
	ActionInserted   ActionKind = "inserted"
	ActionReinforced ActionKind = "reinforced"
	ActionSuperseded ActionKind = "superseded"
)

// Action records the outcome for one extracted fact.
type Action struct {
	Kind           ActionKind
	Content        string
	Intensity      float64 // for ActionInserted
	OldIntensity   float64 // for ActionReinforced
	NewIntensity   float64 // for ActionReinforced
	OldContent     string  // for ActionSuperseded
	NewContent     string  // for ActionSuperseded
	ChunkID        string
}
