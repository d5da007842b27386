package testutil

import "fmt"

// SequentialTxIDs generates "<prefix>-1", "<prefix>-2", ... and satisfies
// store.TxIDGenerator, so transaction log lines can be asserted exactly.
type SequentialTxIDs struct {
	prefix string
	seq    *Sequence
}

// NewSequentialTxIDs creates a generator. An empty prefix means "tx".
func NewSequentialTxIDs(prefix string) *SequentialTxIDs {
	if prefix == "" {
		prefix = "tx"
	}
	return &SequentialTxIDs{prefix: prefix, seq: NewSequence()}
}

// Generate returns the next id.
func (g *SequentialTxIDs) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.seq.Next())
}

// Reset restarts numbering at 1.
func (g *SequentialTxIDs) Reset() {
	g.seq.Reset()
}

// FixedTxID returns the same id for every transaction.
type FixedTxID string

// Generate returns the fixed id.
func (f FixedTxID) Generate() string {
	return string(f)
}
