package codec

import "github.com/mezonai/hashledger/types"

// Wire forms of the ledger data model. These are plain structs with cramberry
// field tags; the domain packages convert to and from them so that hashing and
// persistence share a single encoding.

// Transaction kinds on the wire.
const (
	KindTransfer    uint8 = 1
	KindGenesisSeed uint8 = 2
)

// Entry is one (account, amount) pair. For a transfer the amount is a delta,
// for a genesis seed it is an absolute opening balance.
type Entry struct {
	Account types.AccountID `cramberry:"1"`
	Amount  int64           `cramberry:"2"`
}

type Transaction struct {
	Kind    uint8   `cramberry:"1"`
	Entries []Entry `cramberry:"2"`
}

// Contents is everything covered by a block hash.
type Contents struct {
	Number       uint64        `cramberry:"1"`
	ParentHash   *types.Hash   `cramberry:"2"` // nil only for genesis
	Transactions []Transaction `cramberry:"3"`
}

type Block struct {
	Hash     types.Hash `cramberry:"1"`
	Contents Contents   `cramberry:"2"`
}

// Chain is the persisted form of a whole chain, genesis first.
type Chain struct {
	Blocks []Block `cramberry:"1"`
}

// Canonical reports whether every transaction lists its entries in strictly
// ascending account order, which also rules out duplicate accounts.
func (c Contents) Canonical() error {
	for i, tx := range c.Transactions {
		for j := 1; j < len(tx.Entries); j++ {
			if tx.Entries[j-1].Account >= tx.Entries[j].Account {
				return &NonCanonicalError{Tx: i, Account: tx.Entries[j].Account}
			}
		}
	}
	return nil
}

// normalized returns a copy with every nil slice replaced by an empty one, so
// a decoded value and a freshly built value encode identically.
func (c Contents) normalized() Contents {
	out := Contents{
		Number:       c.Number,
		Transactions: make([]Transaction, len(c.Transactions)),
	}
	if c.ParentHash != nil {
		h := *c.ParentHash
		out.ParentHash = &h
	}
	for i, tx := range c.Transactions {
		entries := make([]Entry, len(tx.Entries))
		copy(entries, tx.Entries)
		out.Transactions[i] = Transaction{Kind: tx.Kind, Entries: entries}
	}
	return out
}
