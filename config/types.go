package config

// Account is one funded account in genesis.yml
type Account struct {
	ID      uint64 `yaml:"id"`
	Name    string `yaml:"name"`
	Balance int64  `yaml:"balance"`
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	Accounts []Account `yaml:"accounts"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}

type BuilderConfig struct {
	BlockSize int `ini:"block_size"`
}

type GeneratorConfig struct {
	Count     int   `ini:"count"`
	MaxAmount int64 `ini:"max_amount"`
	Seed      int64 `ini:"seed"`
}

type StoreConfig struct {
	// Type is "leveldb" or "bolt"; empty disables the store.
	Type      string `ini:"type"`
	Directory string `ini:"directory"`
}

// SimConfig is everything config.ini carries.
type SimConfig struct {
	Builder   BuilderConfig
	Generator GeneratorConfig
	Store     StoreConfig
}
