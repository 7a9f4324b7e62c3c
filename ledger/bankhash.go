package ledger

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/mezonai/hashledger/types"
)

// Digest computes a deterministic hash over the whole state.
// Each record is encoded as: account(8B BE)|balance(8B BE), accounts ascending.
// An empty state hashes to the zero hash.
func (s *State) Digest() types.Hash {
	if len(s.balances) == 0 {
		return types.Hash{}
	}
	h := sha256.New()
	buf := make([]byte, 8)
	for _, id := range s.Accounts() {
		binary.BigEndian.PutUint64(buf, uint64(id))
		h.Write(buf)
		binary.BigEndian.PutUint64(buf, uint64(s.balances[id]))
		h.Write(buf)
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}
