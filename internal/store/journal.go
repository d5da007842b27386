package store

import (
	"context"
	"fmt"
	"strings"
)

// JournalMode is the engine's durability mode.
type JournalMode string

const (
	// JournalMemory keeps the rollback journal in RAM. In-memory databases
	// always report it.
	JournalMemory JournalMode = "memory"

	// JournalWAL is write-ahead logging, set at open for file-backed databases.
	JournalWAL JournalMode = "wal"

	// JournalDelete is the engine's default rollback journal.
	JournalDelete JournalMode = "delete"
)

// JournalMode reports the current journal mode. It is read-only; WAL is only
// ever set by Open.
func (c *Conn) JournalMode(ctx context.Context) (JournalMode, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}

	var mode string
	if err := c.conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		return "", fmt.Errorf("query journal mode: %w", err)
	}

	switch jm := JournalMode(strings.ToLower(mode)); jm {
	case JournalMemory, JournalWAL, JournalDelete:
		return jm, nil
	default:
		return "", &UnknownJournalModeError{Mode: mode}
	}
}
