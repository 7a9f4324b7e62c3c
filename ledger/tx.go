package ledger

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"github.com/mezonai/hashledger/codec"
	"github.com/mezonai/hashledger/types"
)

// Kind distinguishes ordinary transfers from the genesis seed.
type Kind uint8

const (
	KindTransfer    = Kind(codec.KindTransfer)
	KindGenesisSeed = Kind(codec.KindGenesisSeed)
)

func (k Kind) String() string {
	switch k {
	case KindTransfer:
		return "transfer"
	case KindGenesisSeed:
		return "genesis-seed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Entry is an (account, amount) pair. Amount is a delta for a transfer and an
// absolute opening balance for a genesis seed.
type Entry struct {
	Account types.AccountID
	Amount  int64
}

// Transaction is an immutable set of per-account amounts, kept sorted by
// account id with no account listed twice.
type Transaction struct {
	kind    Kind
	entries []Entry
}

// NewTransfer builds a transfer from explicit (account, delta) pairs. Listing
// the same account twice is rejected rather than merged.
func NewTransfer(entries ...Entry) (*Transaction, error) {
	sorted, err := canonicalEntries(entries)
	if err != nil {
		return nil, err
	}
	return &Transaction{kind: KindTransfer, entries: sorted}, nil
}

// MustTransfer is NewTransfer for fixtures; it panics on duplicate accounts.
func MustTransfer(entries ...Entry) *Transaction {
	tx, err := NewTransfer(entries...)
	if err != nil {
		panic(err)
	}
	return tx
}

// NewGenesisSeed builds the genesis transaction that deposits every opening
// balance. Opening balances must not be negative.
func NewGenesisSeed(balances map[types.AccountID]int64) (*Transaction, error) {
	entries := make([]Entry, 0, len(balances))
	for id, bal := range balances {
		if bal < 0 {
			return nil, fmt.Errorf("%w: account %s has %d", ErrNegativeBalance, id, bal)
		}
		entries = append(entries, Entry{Account: id, Amount: bal})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Account < entries[j].Account })
	return &Transaction{kind: KindGenesisSeed, entries: entries}, nil
}

// SeedFromState snapshots a state into a genesis seed.
func SeedFromState(s *State) (*Transaction, error) {
	return NewGenesisSeed(s.balances)
}

// TransactionFromWire converts a decoded transaction, rejecting unknown kinds
// and non-canonical entry lists.
func TransactionFromWire(w codec.Transaction) (*Transaction, error) {
	kind := Kind(w.Kind)
	if kind != KindTransfer && kind != KindGenesisSeed {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, w.Kind)
	}
	entries := make([]Entry, len(w.Entries))
	for i, e := range w.Entries {
		if i > 0 && w.Entries[i-1].Account >= e.Account {
			return nil, fmt.Errorf("%w at account %s", codec.ErrNonCanonical, e.Account)
		}
		entries[i] = Entry{Account: e.Account, Amount: e.Amount}
	}
	return &Transaction{kind: kind, entries: entries}, nil
}

func canonicalEntries(entries []Entry) ([]Entry, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Account < sorted[j].Account })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Account == sorted[i-1].Account {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAccount, sorted[i].Account)
		}
	}
	return sorted, nil
}

func (tx *Transaction) Kind() Kind { return tx.kind }

func (tx *Transaction) IsSeed() bool { return tx.kind == KindGenesisSeed }

// Entries returns a copy of the entries in ascending account order.
func (tx *Transaction) Entries() []Entry {
	out := make([]Entry, len(tx.entries))
	copy(out, tx.entries)
	return out
}

func (tx *Transaction) Len() int { return len(tx.entries) }

// Amount returns the amount listed for id and whether id is listed at all.
func (tx *Transaction) Amount(id types.AccountID) (int64, bool) {
	i := sort.Search(len(tx.entries), func(i int) bool { return tx.entries[i].Account >= id })
	if i < len(tx.entries) && tx.entries[i].Account == id {
		return tx.entries[i].Amount, true
	}
	return 0, false
}

// IsBalanced reports whether the amounts sum to exactly zero. The sum is taken
// in 256-bit two's complement so it cannot wrap.
func (tx *Transaction) IsBalanced() bool {
	sum := new(uint256.Int)
	for _, e := range tx.entries {
		sum.Add(sum, signed(e.Amount))
	}
	return sum.IsZero()
}

// Validate checks the transaction against state without touching it.
func (tx *Transaction) Validate(state *State) error {
	if tx.kind == KindGenesisSeed {
		return ErrSeedNotTransfer
	}
	if !tx.IsBalanced() {
		return ErrUnbalanced
	}
	for _, e := range tx.entries {
		bal := state.Balance(e.Account)
		next := new(uint256.Int).Add(signed(bal), signed(e.Amount))
		if next.Sign() < 0 {
			return fmt.Errorf("%w: account %s has %d, delta %d", ErrInsufficientBalance, e.Account, bal, e.Amount)
		}
		if next.Sgt(maxBalance) {
			return fmt.Errorf("%w: account %s has %d, delta %d", ErrBalanceOverflow, e.Account, bal, e.Amount)
		}
	}
	return nil
}

func (tx *Transaction) IsValid(state *State) bool {
	return tx.Validate(state) == nil
}

// Wire returns the codec form of the transaction.
func (tx *Transaction) Wire() codec.Transaction {
	entries := make([]codec.Entry, len(tx.entries))
	for i, e := range tx.entries {
		entries[i] = codec.Entry{Account: e.Account, Amount: e.Amount}
	}
	return codec.Transaction{Kind: uint8(tx.kind), Entries: entries}
}

func (tx *Transaction) String() string {
	parts := make([]string, len(tx.entries))
	for i, e := range tx.entries {
		parts[i] = fmt.Sprintf("%s:%+d", e.Account, e.Amount)
	}
	return fmt.Sprintf("%s{%s}", tx.kind, strings.Join(parts, " "))
}

var maxBalance = signed(math.MaxInt64)

// signed lifts v into 256-bit two's complement.
func signed(v int64) *uint256.Int {
	if v >= 0 {
		return uint256.NewInt(uint64(v))
	}
	// uint64(-v) is the right magnitude even for math.MinInt64.
	z := uint256.NewInt(uint64(-v))
	return z.Neg(z)
}
