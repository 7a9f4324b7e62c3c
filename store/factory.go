package store

import (
	"fmt"

	"github.com/mezonai/hashledger/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	LevelDBStoreType StoreType = "leveldb"
	BoltStoreType    StoreType = "bolt"
	// MemoryStoreType is LevelDB on in-memory storage; Directory is ignored.
	MemoryStoreType StoreType = "memory"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	Type      StoreType `json:"type" yaml:"type"`
	Directory string    `json:"directory" yaml:"directory"`
}

func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}
	switch sc.Type {
	case MemoryStoreType:
		return nil
	case LevelDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// CreateProvider creates a database provider based on the configuration
func CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)
	case BoltStoreType:
		return db.NewBoltProvider(config.Directory)
	default:
		return db.NewMemLevelDBProvider()
	}
}

// CreateChainStore opens the configured backend and wraps it in a ChainStore.
func CreateChainStore(config *StoreConfig) (*ChainStore, error) {
	provider, err := CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	cs, err := NewChainStore(provider)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return cs, nil
}
