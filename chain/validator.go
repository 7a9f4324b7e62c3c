package chain

import (
	"context"
	"fmt"

	"github.com/mezonai/hashledger/block"
	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/logx"
	"golang.org/x/sync/errgroup"
)

// Validate replays blocks from genesis and returns the resulting state.
//
// Genesis transactions are trusted and applied without balance checks. Every
// later block must carry the hash of its own contents, the next block number
// and its predecessor's hash, and each of its transactions must be valid
// against the state left by everything before it, earlier transactions of the
// same block included. Validation stops at the first failure and returns a
// *ValidationError naming the block.
func Validate(blocks []*block.Block) (*ledger.State, error) {
	if len(blocks) == 0 {
		return nil, reject(blockError(0, ErrEmptyChain))
	}

	genesis := blocks[0]
	state := ledger.NewState().ApplyAll(genesis.Contents().Transactions())

	if !genesis.ContentsMatchHash() {
		return nil, reject(blockError(0, ErrHashMismatch))
	}
	if genesis.Number() != 0 {
		return nil, reject(blockError(0, fmt.Errorf("%w: genesis has number %d", ErrBlockNumberMismatch, genesis.Number())))
	}
	if _, ok := genesis.Contents().ParentHash(); ok {
		return nil, reject(blockError(0, fmt.Errorf("%w: genesis has a parent", ErrParentHashMismatch)))
	}

	parent := genesis
	for i := 1; i < len(blocks); i++ {
		b := blocks[i]
		next, err := checkBlock(i, b, parent, state)
		if err != nil {
			return nil, reject(err)
		}
		state = next
		parent = b
	}

	logx.Info("VALIDATOR", fmt.Sprintf("Chain of %d blocks valid, %d accounts", len(blocks), state.Len()))
	return state, nil
}

// checkBlock verifies b against its predecessor and returns the state after
// its transactions. Integrity is checked before transactions so that a
// tampered block reports a hash mismatch rather than whatever its altered
// transactions happen to break.
func checkBlock(index int, b, parent *block.Block, state *ledger.State) (*ledger.State, *ValidationError) {
	if !b.ContentsMatchHash() {
		return nil, blockError(index, ErrHashMismatch)
	}
	if b.Number() != parent.Number()+1 {
		return nil, blockError(index, fmt.Errorf("%w: expected %d, got %d", ErrBlockNumberMismatch, parent.Number()+1, b.Number()))
	}
	if ph, ok := b.Contents().ParentHash(); !ok || ph != parent.Hash() {
		return nil, blockError(index, ErrParentHashMismatch)
	}
	for j, tx := range b.Contents().Transactions() {
		if err := tx.Validate(state); err != nil {
			return nil, txError(index, j, err)
		}
		state = state.Apply(tx)
	}
	return state, nil
}

func reject(err *ValidationError) error {
	logx.Warn("VALIDATOR", "Chain rejected: ", err.Error())
	return err
}

// Result is the outcome of validating one chain.
type Result struct {
	State *ledger.State
	Err   error
}

// ValidateAll validates independent chains concurrently, at most limit at a
// time (no limit when limit <= 0). Blocks within one chain are always replayed
// in order. A failing chain only affects its own Result; the returned error is
// set only when ctx is cancelled.
func ValidateAll(ctx context.Context, chains []*Chain, limit int) ([]Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	results := make([]Result, len(chains))
	for i, c := range chains {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			state, err := c.Validate()
			results[i] = Result{State: state, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
