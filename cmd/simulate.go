package cmd

import (
	"fmt"
	"io"

	"github.com/mezonai/hashledger/chain"
	"github.com/mezonai/hashledger/config"
	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/logx"
	"github.com/mezonai/hashledger/monitoring"
	"github.com/mezonai/hashledger/report"
	"github.com/mezonai/hashledger/store"
	"github.com/mezonai/hashledger/txgen"
	"github.com/spf13/cobra"
)

type SimulateConfig struct {
	GenesisPath string
	ConfigPath  string
	Out         string
	StoreDir    string
	StoreType   string
	Count       int
	BlockSize   int
	MaxAmount   int64
	Seed        int64
	JSON        bool
	MetricsFile string
}

var simulateConfig SimulateConfig

var simulateCmd = &cobra.Command{
	Use:   "simulate [flags]",
	Short: "Build a chain from random transfers",
	Long: `Seeds a genesis block, feeds randomly generated transfers through the
block builder and prints the final balances. Transfers that would overdraw
an account are ignored.

Flags given on the command line override config.ini.

Examples:
  # Alice and Bob with 50 each, 30 transfers, blocks of 5
  simulate

  # Custom genesis, reproducible run, chain written to disk
  simulate --genesis genesis.yml --seed 7 --out chain.bin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulate(simulateConfig, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	f := simulateCmd.Flags()
	f.StringVarP(&simulateConfig.GenesisPath, "genesis", "g", "", "genesis.yml path (default: Alice and Bob with 50 each)")
	f.StringVarP(&simulateConfig.ConfigPath, "config", "c", "", "config.ini path")
	f.StringVarP(&simulateConfig.Out, "out", "o", "", "write the chain to this file")
	f.StringVar(&simulateConfig.StoreDir, "store-dir", "", "save blocks into a database in this directory")
	f.StringVar(&simulateConfig.StoreType, "store-type", "", "database backend: leveldb or bolt")
	f.IntVarP(&simulateConfig.Count, "count", "n", 0, "number of transfers to generate")
	f.IntVarP(&simulateConfig.BlockSize, "block-size", "b", 0, "transactions per block")
	f.Int64Var(&simulateConfig.MaxAmount, "max-amount", 0, "transfers move less than this amount")
	f.Int64Var(&simulateConfig.Seed, "seed", 0, "random seed, 0 for time based")
	f.BoolVar(&simulateConfig.JSON, "json", false, "print the final state as JSON")
	f.StringVar(&simulateConfig.MetricsFile, "metrics-file", "", "dump prometheus metrics to this file")
}

// simListener reports every rejection on the command output as well as in
// metrics.
type simListener struct {
	monitoring.BuilderListener
	w io.Writer
}

func (l simListener) TransactionRejected(tx *ledger.Transaction, err error) {
	fmt.Fprintln(l.w, "ignored transaction")
	l.BuilderListener.TransactionRejected(tx, err)
}

// merge fills zero fields of c from the ini file and the defaults.
func (c SimulateConfig) merge() (SimulateConfig, error) {
	sim := config.DefaultSimConfig()
	if c.ConfigPath != "" {
		loaded, err := config.LoadSimConfig(c.ConfigPath)
		if err != nil {
			return c, fmt.Errorf("load config: %w", err)
		}
		sim = loaded
	}
	if c.Count == 0 {
		c.Count = sim.Generator.Count
	}
	if c.BlockSize == 0 {
		c.BlockSize = sim.Builder.BlockSize
	}
	if c.MaxAmount == 0 {
		c.MaxAmount = sim.Generator.MaxAmount
	}
	if c.Seed == 0 {
		c.Seed = sim.Generator.Seed
	}
	if c.StoreDir == "" {
		c.StoreDir = sim.Store.Directory
	}
	if c.StoreType == "" {
		c.StoreType = sim.Store.Type
	}
	if c.StoreDir != "" && c.StoreType == "" {
		c.StoreType = string(store.LevelDBStoreType)
	}
	return c, nil
}

func loadGenesis(path string) (*config.GenesisConfig, error) {
	if path == "" {
		return config.DefaultGenesis(), nil
	}
	return config.LoadGenesisConfig(path)
}

func runSimulate(cfg SimulateConfig, w io.Writer) error {
	cfg, err := cfg.merge()
	if err != nil {
		return err
	}
	genesis, err := loadGenesis(cfg.GenesisPath)
	if err != nil {
		return err
	}
	seed, err := genesis.Seed()
	if err != nil {
		return err
	}
	gen := txgen.Generator{MaxAmount: cfg.MaxAmount, Seed: cfg.Seed, Accounts: genesis.AccountIDs()}
	txs, err := gen.Transfers(cfg.Count)
	if err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		monitoring.InitMetrics()
	}
	b, err := chain.Build(seed, txs, chain.Options{BlockSize: cfg.BlockSize, Listener: simListener{w: w}})
	if err != nil {
		return err
	}
	c := b.Chain()

	state, err := c.Validate()
	monitoring.RecordValidation(err)
	if err != nil {
		return logx.Errorf("freshly built chain failed validation: %w", err)
	}
	if !state.Equal(b.State()) {
		return logx.Errorf("replayed state differs from builder state")
	}

	if cfg.JSON {
		err = report.JSON(w, state, genesis.Names())
	} else {
		err = report.Text(w, state, genesis.Names())
	}
	if err != nil {
		return err
	}

	if cfg.Out != "" {
		if err := store.WriteChainFile(cfg.Out, c); err != nil {
			return err
		}
		logx.Info("SIMULATE", fmt.Sprintf("Wrote %d blocks to %s", c.Len(), cfg.Out))
	}
	if cfg.StoreDir != "" {
		if err := saveToStore(cfg, c, state); err != nil {
			return err
		}
	}
	if cfg.MetricsFile != "" {
		return monitoring.WriteTextfile(cfg.MetricsFile)
	}
	return nil
}

func saveToStore(cfg SimulateConfig, c *chain.Chain, state *ledger.State) error {
	cs, err := store.CreateChainStore(&store.StoreConfig{Type: store.StoreType(cfg.StoreType), Directory: cfg.StoreDir})
	if err != nil {
		return err
	}
	defer cs.Close()
	if err := cs.SaveChain(c); err != nil {
		return err
	}
	if err := cs.SaveStateHash(state.Digest()); err != nil {
		return err
	}
	logx.Info("SIMULATE", fmt.Sprintf("Saved %d blocks to %s store at %s", c.Len(), cfg.StoreType, cfg.StoreDir))
	return nil
}
