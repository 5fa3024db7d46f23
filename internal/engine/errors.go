package engine

import "errors"

// Sentinel errors surfaced to callers. Wrap with fmt.Errorf("...: %w", err)
// when additional context is useful; callers should still match with
// errors.Is against these values.
var (
	// ErrModelMismatch is returned when the embedding-model pin recorded in
	// engine metadata does not match the model supplied at open time.
	ErrModelMismatch = errors.New("engine: embedding model pin mismatch")

	// ErrVectorLenMismatch is returned by CosineSimilarity when the two
	// vectors have different lengths.
	ErrVectorLenMismatch = errors.New("engine: vector length mismatch")

	// ErrZeroLength is returned by CosineSimilarity when either vector has
	// zero length.
	ErrZeroLength = errors.New("engine: zero-length vector")

	// ErrUnsafeIdentifier is returned when a caller-supplied SQL identifier
	// (conversation table name) fails the safe-identifier check.
	ErrUnsafeIdentifier = errors.New("engine: unsafe identifier")

	// ErrInputTooLong is returned when remember_facts input exceeds the
	// configured maximum length.
	ErrInputTooLong = errors.New("engine: input exceeds maximum length")

	// ErrInvalidMetadata is returned when store_memory metadata does not
	// parse as JSON.
	ErrInvalidMetadata = errors.New("engine: metadata is not valid JSON")

	// ErrCancelled is returned when a suspension point observes a cancelled
	// context.
	ErrCancelled = errors.New("engine: operation cancelled")
)

// BlockError carries one of the structured, non-exception block/chunk
// detail codes named in the spec. It is returned alongside a nil error by
// block and chunk tools rather than via a thrown error, except where Go's
// idiom makes a returned error the natural carrier (callers test with
// errors.Is against the Code sentinel below).
type BlockError struct {
	Code string // "block_not_found" | "empty_old_text" | "text_not_found" | "chunk_not_found"
}

func (e *BlockError) Error() string { return "engine: " + e.Code }

var (
	ErrBlockNotFound = &BlockError{Code: "block_not_found"}
	ErrEmptyOldText  = &BlockError{Code: "empty_old_text"}
	ErrTextNotFound  = &BlockError{Code: "text_not_found"}
	ErrChunkNotFound = &BlockError{Code: "chunk_not_found"}
)

// FtsError carries the conversation adapter's structured result codes.
type FtsError struct {
	Code string // "fts_unavailable" | "query_error"
}

func (e *FtsError) Error() string { return "engine: " + e.Code }
