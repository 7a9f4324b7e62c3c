// Package chain assembles transactions into hash-linked blocks and replays
// whole chains to certify them.
package chain

import (
	"fmt"

	"github.com/mezonai/hashledger/block"
	"github.com/mezonai/hashledger/codec"
	"github.com/mezonai/hashledger/ledger"
)

// Chain is an append-only sequence of blocks, genesis at index 0.
type Chain struct {
	blocks []*block.Block
}

func New(genesis *block.Block) *Chain {
	return &Chain{blocks: []*block.Block{genesis}}
}

// FromBlocks wraps blocks as they are, e.g. after loading from storage. No
// checks are made; run Validate before trusting the result.
func FromBlocks(blocks []*block.Block) *Chain {
	c := &Chain{blocks: make([]*block.Block, len(blocks))}
	copy(c.blocks, blocks)
	return c
}

// Append adds b after the current tip. b must carry the next block number
// and the tip's hash as its parent.
func (c *Chain) Append(b *block.Block) error {
	if len(c.blocks) == 0 {
		if b.Number() != 0 {
			return fmt.Errorf("%w: first block has number %d", ErrBlockNumberMismatch, b.Number())
		}
		c.blocks = append(c.blocks, b)
		return nil
	}
	tip := c.blocks[len(c.blocks)-1]
	if b.Number() != tip.Number()+1 {
		return fmt.Errorf("%w: expected %d, got %d", ErrBlockNumberMismatch, tip.Number()+1, b.Number())
	}
	if parent, ok := b.Contents().ParentHash(); !ok || parent != tip.Hash() {
		return fmt.Errorf("%w: block %d", ErrParentHashMismatch, b.Number())
	}
	c.blocks = append(c.blocks, b)
	return nil
}

func (c *Chain) Len() int { return len(c.blocks) }

func (c *Chain) At(i int) *block.Block { return c.blocks[i] }

// Last returns the tip, nil for an empty chain.
func (c *Chain) Last() *block.Block {
	if len(c.blocks) == 0 {
		return nil
	}
	return c.blocks[len(c.blocks)-1]
}

// Blocks returns the blocks in chain order.
func (c *Chain) Blocks() []*block.Block {
	out := make([]*block.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// TxCount counts transactions across all blocks, genesis included.
func (c *Chain) TxCount() int {
	n := 0
	for _, b := range c.blocks {
		n += b.Contents().Len()
	}
	return n
}

// Validate replays the chain from genesis. See Validate.
func (c *Chain) Validate() (*ledger.State, error) {
	return Validate(c.blocks)
}

func (c *Chain) Wire() codec.Chain {
	w := codec.Chain{Blocks: make([]codec.Block, len(c.blocks))}
	for i, b := range c.blocks {
		w.Blocks[i] = b.Wire()
	}
	return w
}

// FromWire rebuilds a chain from its decoded form, keeping stored hashes.
func FromWire(w codec.Chain) (*Chain, error) {
	blocks := make([]*block.Block, len(w.Blocks))
	for i, wb := range w.Blocks {
		b, err := block.FromWire(wb)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks[i] = b
	}
	return &Chain{blocks: blocks}, nil
}
