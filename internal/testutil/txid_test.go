package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialTxIDs(t *testing.T) {
	gen := NewSequentialTxIDs("")
	assert.Equal(t, "tx-1", gen.Generate())
	assert.Equal(t, "tx-2", gen.Generate())

	gen.Reset()
	assert.Equal(t, "tx-1", gen.Generate())
}

func TestSequentialTxIDs_Prefix(t *testing.T) {
	gen := NewSequentialTxIDs("run7")
	assert.Equal(t, "run7-1", gen.Generate())
}

func TestFixedTxID(t *testing.T) {
	gen := FixedTxID("fixed")
	assert.Equal(t, "fixed", gen.Generate())
	assert.Equal(t, "fixed", gen.Generate())
}
