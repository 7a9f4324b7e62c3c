// Package ledger holds account balances and the transactions that move them.
//
// State values are never modified after they are returned: Apply copies the
// balance map and hands back a new State, so any snapshot a caller keeps
// (for example the state after block N) stays valid forever.
package ledger

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/mezonai/hashledger/types"
)

// State maps accounts to signed balances.
type State struct {
	balances map[types.AccountID]int64
}

func NewState() *State {
	return &State{balances: make(map[types.AccountID]int64)}
}

// Balance returns the balance of id, zero for accounts never seen.
func (s *State) Balance(id types.AccountID) int64 {
	return s.balances[id]
}

// Has reports whether id has been touched by any applied transaction.
func (s *State) Has(id types.AccountID) bool {
	_, ok := s.balances[id]
	return ok
}

// Apply returns the state after tx. A genesis seed sets balances outright and
// a transfer adds its deltas. Validity is the caller's job: Apply assumes tx
// already passed Validate against s.
func (s *State) Apply(tx *Transaction) *State {
	next := make(map[types.AccountID]int64, len(s.balances)+len(tx.entries))
	for id, bal := range s.balances {
		next[id] = bal
	}
	for _, e := range tx.entries {
		if tx.kind == KindGenesisSeed {
			next[e.Account] = e.Amount
			continue
		}
		next[e.Account] += e.Amount
	}
	return &State{balances: next}
}

// ApplyAll applies txs in order.
func (s *State) ApplyAll(txs []*Transaction) *State {
	out := s
	for _, tx := range txs {
		out = out.Apply(tx)
	}
	return out
}

func (s *State) Len() int { return len(s.balances) }

// Accounts returns every known account in ascending order.
func (s *State) Accounts() []types.AccountID {
	ids := make([]types.AccountID, 0, len(s.balances))
	for id := range s.balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Entries returns a snapshot of all balances in ascending account order.
func (s *State) Entries() []types.AccountBalance {
	ids := s.Accounts()
	out := make([]types.AccountBalance, len(ids))
	for i, id := range ids {
		out[i] = types.AccountBalance{Account: id, Balance: s.balances[id]}
	}
	return out
}

// Equal reports whether both states list the same accounts with the same
// balances.
func (s *State) Equal(other *State) bool {
	if len(s.balances) != len(other.balances) {
		return false
	}
	for id, bal := range s.balances {
		if ob, ok := other.balances[id]; !ok || ob != bal {
			return false
		}
	}
	return true
}

// Total sums every balance in 256-bit two's complement.
func (s *State) Total() *uint256.Int {
	sum := new(uint256.Int)
	for _, bal := range s.balances {
		sum.Add(sum, signed(bal))
	}
	return sum
}

// FormatSigned renders a two's complement value such as Total as decimal.
func FormatSigned(z *uint256.Int) string {
	if z.Sign() < 0 {
		return "-" + new(uint256.Int).Neg(z).Dec()
	}
	return z.Dec()
}
