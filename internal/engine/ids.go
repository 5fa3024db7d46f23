package engine

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// idEntropy is a process-wide monotonic entropy source so IDs minted in
// the same millisecond still sort lexicographically in call order, per
// the ULID spec's monotonic mode. Guarded by idMu because ulid.Monotonic
// is not safe for concurrent use.
var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// newID returns a 26-character Crockford-Base32 identifier: a 48-bit
// millisecond timestamp prefix followed by 80 bits of cryptographic
// randomness. Identifiers are monotonically non-decreasing across
// increasing timestamps; within the same millisecond, idEntropy makes
// each new identifier sort after the previous one.
func newID() string {
	idMu.Lock()
	defer idMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy)
	return id.String()
}

// contentHash returns the 64-character lowercase hex SHA-256 of text.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
