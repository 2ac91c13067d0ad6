package backend

import (
	"fmt"

	"expenses/internal/config"
)

// FromAppConfig picks the slot kind and its location from the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	kind := Kind(appConfig.DataBackend)
	if !kind.IsValid() {
		return Config{}, fmt.Errorf("invalid DATA_BACKEND %q", appConfig.DataBackend)
	}

	return Config{
		Kind:          kind,
		DataDirectory: appConfig.DataDir,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
	}, nil
}

// Validate checks that the chosen kind has the location it needs.
func (c Config) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("unknown slot kind: %s", c.Kind)
	}

	switch c.Kind {
	case SQLiteSlot:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for the sqlite slot")
		}
	case FileSlot:
		if c.DataDirectory == "" {
			return fmt.Errorf("data directory is required for the file slot")
		}
	case MemorySlot:
		// Nothing to configure, state is lost on exit
	}

	return nil
}

// Kinds lists the selectable slot kinds.
func Kinds() []Kind {
	return []Kind{MemorySlot, FileSlot, SQLiteSlot}
}

// KindNames lists the slot kinds as DATA_BACKEND values.
func KindNames() []string {
	types := Kinds()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
