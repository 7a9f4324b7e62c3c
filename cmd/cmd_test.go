package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mezonai/hashledger/codec"
	"github.com/mezonai/hashledger/jsonx"
	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/logx"
	"github.com/mezonai/hashledger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logx.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func simulate(t *testing.T, cfg SimulateConfig) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, runSimulate(cfg, &buf))
	return buf.String()
}

func TestSimulateDefaults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chain.bin")
	text := simulate(t, SimulateConfig{Out: out, Seed: 3})

	assert.Contains(t, text, "Final State:\n  Alice: ")
	assert.Contains(t, text, "\n  Bob: ")

	c, err := store.ReadChainFile(out)
	require.NoError(t, err)
	state, err := c.Validate()
	require.NoError(t, err)
	assert.Equal(t, "100", ledger.FormatSigned(state.Total()))
	// 30 transfers of at most 2 never drain 50
	assert.Equal(t, 31, c.TxCount())
	assert.Equal(t, 7, c.Len())
}

func TestSimulateIsReproducible(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.bin"), filepath.Join(dir, "b.bin")
	simulate(t, SimulateConfig{Out: a, Seed: 11, Count: 40, BlockSize: 4})
	simulate(t, SimulateConfig{Out: b, Seed: 11, Count: 40, BlockSize: 4})

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestSimulateReportsIgnoredTransactions(t *testing.T) {
	dir := t.TempDir()
	genesis := filepath.Join(dir, "genesis.yml")
	require.NoError(t, os.WriteFile(genesis, []byte(`
config:
  accounts:
    - {id: 1, name: Alice, balance: 1}
    - {id: 2, name: Bob, balance: 1}
`), 0o644))

	text := simulate(t, SimulateConfig{GenesisPath: genesis, Seed: 5, Count: 50, MaxAmount: 10})
	assert.Contains(t, text, "ignored transaction\n")
	assert.Contains(t, text, "Final State:")
}

func TestSimulateJSON(t *testing.T) {
	text := simulate(t, SimulateConfig{Seed: 2, JSON: true})
	var got struct {
		Accounts []struct {
			ID      uint64 `json:"id"`
			Name    string `json:"name"`
			Balance int64  `json:"balance"`
		} `json:"accounts"`
		Total string `json:"total"`
	}
	require.NoError(t, jsonx.Unmarshal([]byte(text), &got))
	assert.Equal(t, "100", got.Total)
	require.Len(t, got.Accounts, 2)
	assert.Equal(t, "Alice", got.Accounts[0].Name)
}

func TestSimulateConfigFile(t *testing.T) {
	dir := t.TempDir()
	ini := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(ini, []byte("[builder]\nblock_size = 2\n\n[generator]\ncount = 4\nseed = 1\n"), 0o644))
	out := filepath.Join(dir, "chain.bin")

	simulate(t, SimulateConfig{ConfigPath: ini, Out: out})
	c, err := store.ReadChainFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	// flags win over the file
	simulate(t, SimulateConfig{ConfigPath: ini, Out: out, BlockSize: 4})
	c, err = store.ReadChainFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestSimulateThenValidate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "chain.bin")
	storeDir := filepath.Join(dir, "db")
	metrics := filepath.Join(dir, "metrics.prom")
	simulate(t, SimulateConfig{Out: out, StoreDir: storeDir, StoreType: "bolt", Seed: 9, MetricsFile: metrics})

	var buf bytes.Buffer
	err := runValidate(context.Background(), ValidateConfig{StoreDir: storeDir, StoreType: "bolt"}, []string{out}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), ": valid ("))

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hashledger_accepted_tx_count")
}

func TestValidateReportsTampering(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bin")
	simulate(t, SimulateConfig{Out: good, Seed: 4})

	data, err := os.ReadFile(good)
	require.NoError(t, err)
	w, err := codec.DecodeChain(data)
	require.NoError(t, err)
	w.Blocks[1].Contents.Transactions[0].Entries[0].Amount++
	data, err = codec.EncodeChain(w)
	require.NoError(t, err)
	bad := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(bad, data, 0o644))

	var buf bytes.Buffer
	err = runValidate(context.Background(), ValidateConfig{}, []string{good, bad, filepath.Join(dir, "missing.bin")}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 chains invalid")
	assert.Contains(t, buf.String(), good+": valid (")
	assert.Contains(t, buf.String(), bad+": invalid: block 1: block hash does not match its contents")
	assert.Contains(t, buf.String(), "missing.bin: invalid: ")
}

func TestValidateNeedsInput(t *testing.T) {
	err := runValidate(context.Background(), ValidateConfig{}, nil, io.Discard)
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chain.bin")
	simulate(t, SimulateConfig{Out: out, Seed: 1, Count: 6})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"inspect", out})
	defer rootCmd.SetOut(nil)
	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#0 txs=1 "))
	assert.True(t, strings.HasPrefix(lines[1], "#1 txs=5 "))
	assert.True(t, strings.HasPrefix(lines[2], "#2 txs=1 "))
}

func TestSimulateTwiceIntoSameStore(t *testing.T) {
	storeDir := filepath.Join(t.TempDir(), "db")
	simulate(t, SimulateConfig{StoreDir: storeDir, Seed: 6, Count: 30})
	simulate(t, SimulateConfig{StoreDir: storeDir, Seed: 8, Count: 8})

	var buf bytes.Buffer
	err := runValidate(context.Background(), ValidateConfig{StoreDir: storeDir, StoreType: "leveldb"}, nil, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), storeDir+": valid (3 blocks)")
}
