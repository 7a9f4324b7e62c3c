package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/logx"
	"github.com/mezonai/hashledger/types"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBlockSize = 5
	DefaultCount     = 30
	DefaultMaxAmount = 3
)

var ErrDuplicateAccount = errors.New("duplicate account in genesis")

// DefaultGenesis funds Alice and Bob with 50 each.
func DefaultGenesis() *GenesisConfig {
	return &GenesisConfig{Accounts: []Account{
		{ID: 1, Name: "Alice", Balance: 50},
		{ID: 2, Name: "Bob", Balance: 50},
	}}
}

func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		Builder:   BuilderConfig{BlockSize: DefaultBlockSize},
		Generator: GeneratorConfig{Count: DefaultCount, MaxAmount: DefaultMaxAmount},
	}
}

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfgFile.Config.Validate(); err != nil {
		return nil, err
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded genesis from %s with %d accounts", path, len(cfgFile.Config.Accounts)))
	return &cfgFile.Config, nil
}

// Validate rejects repeated ids and negative balances.
func (g *GenesisConfig) Validate() error {
	seen := make(map[uint64]bool, len(g.Accounts))
	for _, a := range g.Accounts {
		if seen[a.ID] {
			return fmt.Errorf("%w: id %d", ErrDuplicateAccount, a.ID)
		}
		seen[a.ID] = true
		if a.Balance < 0 {
			return fmt.Errorf("%w: account %d has %d", ledger.ErrNegativeBalance, a.ID, a.Balance)
		}
	}
	return nil
}

func (g *GenesisConfig) Balances() map[types.AccountID]int64 {
	out := make(map[types.AccountID]int64, len(g.Accounts))
	for _, a := range g.Accounts {
		out[types.AccountID(a.ID)] = a.Balance
	}
	return out
}

// Names maps ids to display names; unnamed accounts are left out.
func (g *GenesisConfig) Names() map[types.AccountID]string {
	out := make(map[types.AccountID]string, len(g.Accounts))
	for _, a := range g.Accounts {
		if a.Name != "" {
			out[types.AccountID(a.ID)] = a.Name
		}
	}
	return out
}

// AccountIDs returns ids in file order.
func (g *GenesisConfig) AccountIDs() []types.AccountID {
	out := make([]types.AccountID, len(g.Accounts))
	for i, a := range g.Accounts {
		out[i] = types.AccountID(a.ID)
	}
	return out
}

// Seed turns the genesis accounts into the seeding transaction.
func (g *GenesisConfig) Seed() (*ledger.Transaction, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return ledger.NewGenesisSeed(g.Balances())
}

// LoadSimConfig reads config.ini on top of DefaultSimConfig. Missing sections
// and keys keep their defaults.
func LoadSimConfig(path string) (*SimConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	sim := DefaultSimConfig()
	if err := cfg.Section("builder").MapTo(&sim.Builder); err != nil {
		return nil, err
	}
	if err := cfg.Section("generator").MapTo(&sim.Generator); err != nil {
		return nil, err
	}
	if err := cfg.Section("store").MapTo(&sim.Store); err != nil {
		return nil, err
	}
	if sim.Builder.BlockSize <= 0 {
		return nil, fmt.Errorf("builder.block_size must be positive, got %d", sim.Builder.BlockSize)
	}
	if sim.Generator.Count < 0 {
		return nil, fmt.Errorf("generator.count must not be negative, got %d", sim.Generator.Count)
	}
	return sim, nil
}
