package types

import "fmt"

// AccountID identifies an account for the lifetime of a ledger. There is no
// registry: an id that never appeared anywhere simply has a zero balance.
type AccountID uint64

func (id AccountID) String() string {
	return fmt.Sprintf("0x%04x", uint64(id))
}

// AccountBalance is one row of a ledger state snapshot.
type AccountBalance struct {
	Account AccountID `json:"account"`
	Balance int64     `json:"balance"`
}
