package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/mezonai/hashledger/chain"
	"github.com/mezonai/hashledger/logx"
	"github.com/mezonai/hashledger/monitoring"
	"github.com/mezonai/hashledger/report"
	"github.com/mezonai/hashledger/store"
	"github.com/mezonai/hashledger/types"
	"github.com/spf13/cobra"
)

type ValidateConfig struct {
	StoreDir  string
	StoreType string
}

var validateConfig ValidateConfig

var validateCmd = &cobra.Command{
	Use:   "validate [FILE...]",
	Short: "Replay chains and report their final state",
	Long: `Decodes each chain file and replays it from genesis, checking block
hashes, numbering, parent links and every transaction. Files are validated
concurrently. With --store-dir the chain saved by simulate is validated too,
and its final state is compared with the digest recorded at save time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.Context(), validateConfig, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateConfig.StoreDir, "store-dir", "", "also validate the chain in this database directory")
	validateCmd.Flags().StringVar(&validateConfig.StoreType, "store-type", string(store.LevelDBStoreType), "database backend: leveldb or bolt")
}

type source struct {
	name  string
	chain *chain.Chain
	err   error
	// expected state digest, zero when unknown
	digest types.Hash
}

func loadSources(cfg ValidateConfig, files []string) []source {
	sources := make([]source, 0, len(files)+1)
	for _, f := range files {
		c, err := store.ReadChainFile(f)
		sources = append(sources, source{name: f, chain: c, err: err})
	}
	if cfg.StoreDir != "" {
		sources = append(sources, loadStoreSource(cfg))
	}
	return sources
}

func loadStoreSource(cfg ValidateConfig) source {
	src := source{name: cfg.StoreDir}
	cs, err := store.CreateChainStore(&store.StoreConfig{Type: store.StoreType(cfg.StoreType), Directory: cfg.StoreDir})
	if err != nil {
		src.err = err
		return src
	}
	defer cs.Close()
	src.chain, src.err = cs.LoadChain()
	if src.err == nil {
		if h, ok, err := cs.StateHash(); err != nil {
			src.err = err
		} else if ok {
			src.digest = h
		}
	}
	return src
}

func runValidate(ctx context.Context, cfg ValidateConfig, files []string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sources := loadSources(cfg, files)
	if len(sources) == 0 {
		return fmt.Errorf("nothing to validate: give chain files or --store-dir")
	}

	var chains []*chain.Chain
	var index []int
	for i, s := range sources {
		if s.err == nil {
			chains = append(chains, s.chain)
			index = append(index, i)
		}
	}
	results, err := chain.ValidateAll(ctx, chains, runtime.NumCPU())
	if err != nil {
		return err
	}
	for j, r := range results {
		src := &sources[index[j]]
		src.err = r.Err
		if r.Err == nil && !src.digest.IsZero() && r.State.Digest() != src.digest {
			src.err = fmt.Errorf("final state digest %s, stored %s", r.State.Digest().Short(), src.digest.Short())
		}
		monitoring.RecordValidation(src.err)
		if src.err == nil {
			fmt.Fprintf(w, "%s: valid (%d blocks)\n", src.name, src.chain.Len())
			if err := report.Text(w, r.State, nil); err != nil {
				return err
			}
		}
	}

	failed := 0
	for _, s := range sources {
		if s.err != nil {
			failed++
			fmt.Fprintf(w, "%s: invalid: %v\n", s.name, s.err)
		}
	}
	if failed > 0 {
		return logx.Errorf("%d of %d chains invalid", failed, len(sources))
	}
	return nil
}
