package ledger

import (
	"math"
	"testing"

	"github.com/mezonai/hashledger/codec"
	"github.com/mezonai/hashledger/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice types.AccountID = 1
	bob   types.AccountID = 2
	lisa  types.AccountID = 3
)

func genesisState(t *testing.T) *State {
	t.Helper()
	seed, err := NewGenesisSeed(map[types.AccountID]int64{alice: 50, bob: 50})
	require.NoError(t, err)
	return NewState().Apply(seed)
}

func TestAliceBobScenario(t *testing.T) {
	state := genesisState(t)

	ok := MustTransfer(Entry{alice, -10}, Entry{bob, 10})
	require.NoError(t, ok.Validate(state))
	next := state.Apply(ok)
	assert.Equal(t, int64(40), next.Balance(alice))
	assert.Equal(t, int64(60), next.Balance(bob))

	tooMuch := MustTransfer(Entry{alice, -100}, Entry{bob, 100})
	assert.ErrorIs(t, tooMuch.Validate(state), ErrInsufficientBalance)
	assert.False(t, tooMuch.IsValid(state))

	unbalanced := MustTransfer(Entry{alice, -10}, Entry{bob, 5})
	assert.ErrorIs(t, unbalanced.Validate(state), ErrUnbalanced)
	assert.False(t, unbalanced.IsBalanced())
}

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    bool
	}{
		{"empty", nil, true},
		{"single zero", []Entry{{alice, 0}}, true},
		{"single nonzero", []Entry{{alice, 5}}, false},
		{"two party", []Entry{{alice, -7}, {bob, 7}}, true},
		{"three party", []Entry{{alice, -7}, {bob, 3}, {lisa, 4}}, true},
		{"three party off by one", []Entry{{alice, -7}, {bob, 3}, {lisa, 5}}, false},
		{"extremes cancel", []Entry{{alice, math.MinInt64}, {bob, math.MaxInt64}, {lisa, 1}}, true},
		{"wrapping sum is not zero", []Entry{{alice, math.MaxInt64}, {bob, math.MaxInt64}, {lisa, 2}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := MustTransfer(tt.entries...)
			assert.Equal(t, tt.want, tx.IsBalanced())
		})
	}
}

func TestEmptyTransferIsValid(t *testing.T) {
	tx := MustTransfer()
	assert.True(t, tx.IsBalanced())
	assert.NoError(t, tx.Validate(NewState()))
	assert.Equal(t, 0, tx.Len())
}

func TestValidateUnknownAccountsStartAtZero(t *testing.T) {
	state := genesisState(t)

	fromStranger := MustTransfer(Entry{lisa, -1}, Entry{alice, 1})
	assert.ErrorIs(t, fromStranger.Validate(state), ErrInsufficientBalance)

	toStranger := MustTransfer(Entry{alice, -50}, Entry{lisa, 50})
	require.NoError(t, toStranger.Validate(state))
	next := state.Apply(toStranger)
	assert.Equal(t, int64(0), next.Balance(alice))
	assert.Equal(t, int64(50), next.Balance(lisa))
}

func TestValidateOverflow(t *testing.T) {
	seed, err := NewGenesisSeed(map[types.AccountID]int64{alice: math.MaxInt64, bob: 10})
	require.NoError(t, err)
	state := NewState().Apply(seed)

	tx := MustTransfer(Entry{alice, 1}, Entry{bob, -1})
	assert.ErrorIs(t, tx.Validate(state), ErrBalanceOverflow)
}

func TestValidateDoesNotMutateState(t *testing.T) {
	state := genesisState(t)
	before := state.Entries()

	_ = MustTransfer(Entry{alice, -10}, Entry{bob, 10}).Validate(state)
	_ = MustTransfer(Entry{alice, -100}, Entry{bob, 100}).Validate(state)

	assert.Equal(t, before, state.Entries())
}

func TestDuplicateAccountsRejected(t *testing.T) {
	_, err := NewTransfer(Entry{alice, -5}, Entry{bob, 5}, Entry{alice, 0})
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	assert.Panics(t, func() { MustTransfer(Entry{bob, 1}, Entry{bob, -1}) })
}

func TestEntriesAreSortedAndCopied(t *testing.T) {
	tx := MustTransfer(Entry{lisa, 4}, Entry{alice, -7}, Entry{bob, 3})
	entries := tx.Entries()
	assert.Equal(t, []Entry{{alice, -7}, {bob, 3}, {lisa, 4}}, entries)

	entries[0].Amount = 1000
	amt, ok := tx.Amount(alice)
	assert.True(t, ok)
	assert.Equal(t, int64(-7), amt)

	_, ok = tx.Amount(types.AccountID(99))
	assert.False(t, ok)
}

func TestGenesisSeed(t *testing.T) {
	seed, err := NewGenesisSeed(map[types.AccountID]int64{bob: 50, alice: 50})
	require.NoError(t, err)
	assert.True(t, seed.IsSeed())
	assert.Equal(t, []Entry{{alice, 50}, {bob, 50}}, seed.Entries())
	assert.ErrorIs(t, seed.Validate(NewState()), ErrSeedNotTransfer)

	_, err = NewGenesisSeed(map[types.AccountID]int64{alice: -1})
	assert.ErrorIs(t, err, ErrNegativeBalance)
}

func TestSeedFromState(t *testing.T) {
	state := genesisState(t).Apply(MustTransfer(Entry{alice, -10}, Entry{bob, 10}))
	seed, err := SeedFromState(state)
	require.NoError(t, err)

	rebuilt := NewState().Apply(seed)
	assert.True(t, state.Equal(rebuilt))
}

func TestWireRoundTrip(t *testing.T) {
	tx := MustTransfer(Entry{bob, 3}, Entry{alice, -3})
	back, err := TransactionFromWire(tx.Wire())
	require.NoError(t, err)
	assert.Equal(t, tx.Kind(), back.Kind())
	assert.Equal(t, tx.Entries(), back.Entries())
}

func TestTransactionFromWireRejectsMalformed(t *testing.T) {
	_, err := TransactionFromWire(codec.Transaction{Kind: 9})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = TransactionFromWire(codec.Transaction{
		Kind:    codec.KindTransfer,
		Entries: []codec.Entry{{Account: bob, Amount: 1}, {Account: alice, Amount: -1}},
	})
	assert.ErrorIs(t, err, codec.ErrNonCanonical)

	_, err = TransactionFromWire(codec.Transaction{
		Kind:    codec.KindTransfer,
		Entries: []codec.Entry{{Account: alice, Amount: 1}, {Account: alice, Amount: -1}},
	})
	assert.ErrorIs(t, err, codec.ErrNonCanonical)
}

func TestTransactionString(t *testing.T) {
	tx := MustTransfer(Entry{alice, -3}, Entry{bob, 3})
	assert.Equal(t, "transfer{0x0001:-3 0x0002:+3}", tx.String())
}
