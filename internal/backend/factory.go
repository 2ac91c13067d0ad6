package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expenses/internal/slot/file"
	"expenses/internal/slot/memory"
	"expenses/internal/slot/sqlite"
)

// DefaultFactory opens the slot kinds shipped with the app.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory returns a DefaultFactory logging to logger, or slog.Default when nil.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// OpenSlot validates config and opens the slot it names.
func (f *DefaultFactory) OpenSlot(ctx context.Context, config Config) (*Opened, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Kind {
	case SQLiteSlot:
		return f.openSQLite(config)
	case FileSlot:
		return f.openFile(config)
	case MemorySlot:
		return f.openMemory()
	default:
		return nil, fmt.Errorf("unsupported slot kind: %s", config.Kind)
	}
}

func (f *DefaultFactory) openSQLite(config Config) (*Opened, error) {
	s, err := sqlite.New(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite slot: %w", err)
	}

	f.logger.Info("Opened SQLite slot", "db_path", config.SQLiteDBPath)

	return &Opened{Slot: s, Cleanup: s.Close}, nil
}

func (f *DefaultFactory) openFile(config Config) (*Opened, error) {
	s, err := file.New(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file slot: %w", err)
	}

	f.logger.Info("Opened file slot", "data_directory", config.DataDirectory)

	return &Opened{Slot: s, Cleanup: s.Close}, nil
}

func (f *DefaultFactory) openMemory() (*Opened, error) {
	s := memory.New()

	f.logger.Info("Opened memory slot, expenses are lost on exit")

	return &Opened{Slot: s, Cleanup: s.Close}, nil
}
