package chain

import (
	"errors"
	"fmt"
	"iter"

	"github.com/mezonai/hashledger/block"
	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/logx"
)

const DefaultBlockSize = 5

// Listener observes the builder. Implementations must not block.
type Listener interface {
	TransactionAccepted(tx *ledger.Transaction)
	TransactionRejected(tx *ledger.Transaction, err error)
	BlockSealed(b *block.Block)
}

type NopListener struct{}

func (NopListener) TransactionAccepted(*ledger.Transaction)        {}
func (NopListener) TransactionRejected(*ledger.Transaction, error) {}
func (NopListener) BlockSealed(*block.Block)                       {}

type Options struct {
	// BlockSize caps the transactions per block; DefaultBlockSize when zero.
	BlockSize int
	Listener  Listener
}

// Builder accumulates valid transactions into fixed-capacity blocks. It keeps
// the running state next to the chain, advancing it as each transaction is
// accepted instead of replaying blocks.
type Builder struct {
	blockSize int
	listener  Listener
	chain     *Chain
	state     *ledger.State
	pending   []*ledger.Transaction
}

// NewBuilder seals the genesis block from seed and starts a chain on it.
func NewBuilder(seed *ledger.Transaction, opts Options) (*Builder, error) {
	if opts.BlockSize < 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", opts.BlockSize)
	}
	if opts.BlockSize == 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.Listener == nil {
		opts.Listener = NopListener{}
	}

	genesis, err := block.Genesis(seed)
	if err != nil {
		return nil, err
	}
	b := &Builder{
		blockSize: opts.BlockSize,
		listener:  opts.Listener,
		chain:     New(genesis),
		state:     ledger.NewState().Apply(seed),
		pending:   make([]*ledger.Transaction, 0, opts.BlockSize),
	}
	logx.Info("BUILDER", fmt.Sprintf("Genesis sealed %s, %d accounts", genesis.Hash().Short(), b.state.Len()))
	b.listener.BlockSealed(genesis)
	return b, nil
}

// Submit validates tx against the running state. A valid transaction is
// applied and queued, sealing a block once the queue is full. An invalid one
// is dropped and the returned error wraps ErrTransactionRejected together
// with the ledger reason; any other error means sealing failed.
func (b *Builder) Submit(tx *ledger.Transaction) error {
	if err := tx.Validate(b.state); err != nil {
		logx.Debug("BUILDER", fmt.Sprintf("Ignored %s: %v", tx, err))
		b.listener.TransactionRejected(tx, err)
		return fmt.Errorf("%w: %w", ErrTransactionRejected, err)
	}
	b.state = b.state.Apply(tx)
	b.pending = append(b.pending, tx)
	b.listener.TransactionAccepted(tx)

	if len(b.pending) >= b.blockSize {
		if _, err := b.seal(); err != nil {
			return err
		}
	}
	return nil
}

// Flush seals whatever is pending. It returns nil when nothing is pending.
func (b *Builder) Flush() (*block.Block, error) {
	if len(b.pending) == 0 {
		return nil, nil
	}
	return b.seal()
}

func (b *Builder) seal() (*block.Block, error) {
	blk, err := block.Build(b.pending, b.chain.Last())
	if err != nil {
		return nil, err
	}
	if err := b.chain.Append(blk); err != nil {
		return nil, err
	}
	b.pending = make([]*ledger.Transaction, 0, b.blockSize)
	logx.Info("BUILDER", fmt.Sprintf("Sealed block %d with %d txs, hash %s", blk.Number(), blk.Contents().Len(), blk.Hash().Short()))
	b.listener.BlockSealed(blk)
	return blk, nil
}

func (b *Builder) Chain() *Chain { return b.chain }

// State is the state after every accepted transaction, pending ones included.
func (b *Builder) State() *ledger.State { return b.state }

func (b *Builder) Pending() int { return len(b.pending) }

// Build runs the assembly loop: every transaction from txs is submitted in
// order, rejected ones are skipped, and the final partial batch is sealed
// once txs is exhausted.
func Build(seed *ledger.Transaction, txs iter.Seq[*ledger.Transaction], opts Options) (*Builder, error) {
	b, err := NewBuilder(seed, opts)
	if err != nil {
		return nil, err
	}
	for tx := range txs {
		if err := b.Submit(tx); err != nil && !errors.Is(err, ErrTransactionRejected) {
			return nil, err
		}
	}
	if _, err := b.Flush(); err != nil {
		return nil, err
	}
	return b, nil
}
