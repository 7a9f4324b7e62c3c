// Package txgen produces random two-party transfers for simulations.
package txgen

import (
	"errors"
	"fmt"
	"iter"
	"math/rand"
	"time"

	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/types"
)

const DefaultMaxAmount = 3

var ErrMaxAmount = errors.New("max amount must be greater than 1")

// Generator draws transfers between the first two of Accounts. Amounts are
// uniform in [1, MaxAmount) and the direction is a coin flip, so some
// transfers will overdraw their sender and get rejected by the builder.
type Generator struct {
	MaxAmount int64
	// Seed fixes the sequence; zero seeds from the clock.
	Seed     int64
	Accounts []types.AccountID
}

func (g Generator) check() error {
	if g.MaxAmount <= 1 {
		return fmt.Errorf("%w, got %d", ErrMaxAmount, g.MaxAmount)
	}
	if len(g.Accounts) < 2 {
		return fmt.Errorf("need two accounts, got %d", len(g.Accounts))
	}
	if g.Accounts[0] == g.Accounts[1] {
		return fmt.Errorf("accounts must differ, both are %s", g.Accounts[0])
	}
	return nil
}

// Transfers returns a sequence of count transfers. Each iteration of the
// returned sequence starts over from Seed.
func (g Generator) Transfers(count int) (iter.Seq[*ledger.Transaction], error) {
	if err := g.check(); err != nil {
		return nil, err
	}
	seed := g.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	from, to := g.Accounts[0], g.Accounts[1]

	return func(yield func(*ledger.Transaction) bool) {
		r := rand.New(rand.NewSource(seed))
		for i := 0; i < count; i++ {
			amount := 1 + r.Int63n(g.MaxAmount-1)
			if r.Intn(2) == 0 {
				amount = -amount
			}
			tx := ledger.MustTransfer(
				ledger.Entry{Account: from, Amount: amount},
				ledger.Entry{Account: to, Amount: -amount},
			)
			if !yield(tx) {
				return
			}
		}
	}, nil
}
