package backend

import (
	"context"

	"expenses/internal/slot"
)

// CleanupFunc releases whatever an opened slot holds.
type CleanupFunc func() error

// Opened is a ready slot together with its cleanup.
type Opened struct {
	Slot    slot.Slot
	Cleanup CleanupFunc
}

// Factory opens the slot selected by a Config.
type Factory interface {
	OpenSlot(ctx context.Context, config Config) (*Opened, error)
}

// Config selects a slot kind and where it keeps its data.
type Config struct {
	Kind Kind

	// File slot
	DataDirectory string

	// SQLite slot
	SQLiteDBPath string
}

// Kind names a slot implementation, matching the DATA_BACKEND setting.
type Kind string

const (
	MemorySlot Kind = "memory"
	FileSlot   Kind = "file"
	SQLiteSlot Kind = "sqlite"
)

func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is one of the shipped slot kinds.
func (k Kind) IsValid() bool {
	switch k {
	case MemorySlot, FileSlot, SQLiteSlot:
		return true
	default:
		return false
	}
}
