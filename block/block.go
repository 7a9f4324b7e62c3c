package block

import (
	"errors"
	"fmt"

	"github.com/mezonai/hashledger/codec"
	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/types"
)

var ErrNotSeed = errors.New("genesis block needs a genesis seed transaction")

// Contents is everything a block hash commits to.
type Contents struct {
	number     uint64
	parentHash *types.Hash
	txs        []*ledger.Transaction
}

// NewContents copies its inputs; parent is nil only for genesis.
func NewContents(number uint64, parent *types.Hash, txs []*ledger.Transaction) *Contents {
	c := &Contents{
		number: number,
		txs:    make([]*ledger.Transaction, len(txs)),
	}
	copy(c.txs, txs)
	if parent != nil {
		h := *parent
		c.parentHash = &h
	}
	return c
}

func (c *Contents) Number() uint64 { return c.number }

// ParentHash returns the predecessor's hash, or false for genesis.
func (c *Contents) ParentHash() (types.Hash, bool) {
	if c.parentHash == nil {
		return types.Hash{}, false
	}
	return *c.parentHash, true
}

// Transactions returns the transactions in block order.
func (c *Contents) Transactions() []*ledger.Transaction {
	out := make([]*ledger.Transaction, len(c.txs))
	copy(out, c.txs)
	return out
}

func (c *Contents) Len() int { return len(c.txs) }

func (c *Contents) Wire() codec.Contents {
	w := codec.Contents{
		Number:       c.number,
		Transactions: make([]codec.Transaction, len(c.txs)),
	}
	if c.parentHash != nil {
		h := *c.parentHash
		w.ParentHash = &h
	}
	for i, tx := range c.txs {
		w.Transactions[i] = tx.Wire()
	}
	return w
}

// Hash computes the content hash.
func (c *Contents) Hash() (types.Hash, error) {
	return codec.Digest(c.Wire())
}

func ContentsFromWire(w codec.Contents) (*Contents, error) {
	txs := make([]*ledger.Transaction, len(w.Transactions))
	for i, wt := range w.Transactions {
		tx, err := ledger.TransactionFromWire(wt)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		txs[i] = tx
	}
	return NewContents(w.Number, w.ParentHash, txs), nil
}

// Block pairs contents with the hash computed when it was sealed.
type Block struct {
	contents *Contents
	hash     types.Hash
}

// Seal hashes contents and stamps the result. Contents built from ledger
// transactions are always canonical, so an error here means the encoder
// itself failed.
func Seal(contents *Contents) (*Block, error) {
	h, err := contents.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash block %d: %w", contents.number, err)
	}
	return &Block{contents: contents, hash: h}, nil
}

// Restore pairs contents with a previously stored hash without recomputing it.
func Restore(contents *Contents, hash types.Hash) *Block {
	return &Block{contents: contents, hash: hash}
}

// Genesis seals block 0 holding only the opening balances.
func Genesis(seed *ledger.Transaction) (*Block, error) {
	if !seed.IsSeed() {
		return nil, ErrNotSeed
	}
	return Seal(NewContents(0, nil, []*ledger.Transaction{seed}))
}

// Build seals the successor of parent holding pending.
func Build(pending []*ledger.Transaction, parent *Block) (*Block, error) {
	parentHash := parent.hash
	return Seal(NewContents(parent.contents.number+1, &parentHash, pending))
}

func (b *Block) Hash() types.Hash { return b.hash }

func (b *Block) Contents() *Contents { return b.contents }

func (b *Block) Number() uint64 { return b.contents.number }

// ContentsMatchHash recomputes the content hash and compares it with the
// stored one.
func (b *Block) ContentsMatchHash() bool {
	h, err := b.contents.Hash()
	return err == nil && h == b.hash
}

func (b *Block) Wire() codec.Block {
	return codec.Block{Hash: b.hash, Contents: b.contents.Wire()}
}

// FromWire rebuilds a block keeping its stored hash as-is.
func FromWire(w codec.Block) (*Block, error) {
	contents, err := ContentsFromWire(w.Contents)
	if err != nil {
		return nil, err
	}
	return Restore(contents, w.Hash), nil
}

func (b *Block) String() string {
	return fmt.Sprintf("block #%d (%d txs) %s", b.contents.number, len(b.contents.txs), b.hash.Short())
}
