package chain

import (
	"math/rand"
	"testing"

	"github.com/mezonai/hashledger/block"
	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/types"
	"github.com/stretchr/testify/require"
)

const (
	alice types.AccountID = 1
	bob   types.AccountID = 2
	lisa  types.AccountID = 3
)

func seed(t *testing.T) *ledger.Transaction {
	t.Helper()
	s, err := ledger.NewGenesisSeed(map[types.AccountID]int64{alice: 50, bob: 50})
	require.NoError(t, err)
	return s
}

func transfer(from, to types.AccountID, amount int64) *ledger.Transaction {
	return ledger.MustTransfer(
		ledger.Entry{Account: from, Amount: -amount},
		ledger.Entry{Account: to, Amount: amount},
	)
}

// pingPong returns n transfers that are valid in sequence from the default
// seed: alternating one coin from alice to bob and back.
func pingPong(n int) []*ledger.Transaction {
	txs := make([]*ledger.Transaction, n)
	for i := range txs {
		if i%2 == 0 {
			txs[i] = transfer(alice, bob, 1)
		} else {
			txs[i] = transfer(bob, alice, 1)
		}
	}
	return txs
}

func randomTransfers(r *rand.Rand, n int) []*ledger.Transaction {
	accounts := []types.AccountID{alice, bob, lisa}
	txs := make([]*ledger.Transaction, n)
	for i := range txs {
		from := accounts[r.Intn(len(accounts))]
		to := accounts[r.Intn(len(accounts))]
		for to == from {
			to = accounts[r.Intn(len(accounts))]
		}
		amount := int64(r.Intn(40) + 1)
		if r.Intn(10) == 0 {
			// unbalanced on purpose
			txs[i] = ledger.MustTransfer(ledger.Entry{Account: from, Amount: -amount}, ledger.Entry{Account: to, Amount: amount + 1})
			continue
		}
		txs[i] = transfer(from, to, amount)
	}
	return txs
}

// recorder is a Listener that remembers everything it is told.
type recorder struct {
	accepted []*ledger.Transaction
	rejected []error
	sealed   []*block.Block
}

func (r *recorder) TransactionAccepted(tx *ledger.Transaction) { r.accepted = append(r.accepted, tx) }

func (r *recorder) TransactionRejected(_ *ledger.Transaction, err error) {
	r.rejected = append(r.rejected, err)
}

func (r *recorder) BlockSealed(b *block.Block) { r.sealed = append(r.sealed, b) }

// replaceBlock returns a copy of blocks with index i swapped for b.
func replaceBlock(blocks []*block.Block, i int, b *block.Block) []*block.Block {
	out := make([]*block.Block, len(blocks))
	copy(out, blocks)
	out[i] = b
	return out
}
