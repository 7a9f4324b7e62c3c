// Package report renders ledger state and chains for people and scripts.
package report

import (
	"fmt"
	"io"

	"github.com/mezonai/hashledger/chain"
	"github.com/mezonai/hashledger/jsonx"
	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/types"
)

func displayName(id types.AccountID, names map[types.AccountID]string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id.String()
}

// Text prints one line per account in id order.
func Text(w io.Writer, state *ledger.State, names map[types.AccountID]string) error {
	if _, err := fmt.Fprintln(w, "Final State:"); err != nil {
		return err
	}
	for _, e := range state.Entries() {
		if _, err := fmt.Fprintf(w, "  %s: %d\n", displayName(e.Account, names), e.Balance); err != nil {
			return err
		}
	}
	return nil
}

type jsonAccount struct {
	ID      types.AccountID `json:"id"`
	Name    string          `json:"name,omitempty"`
	Balance int64           `json:"balance"`
}

type jsonState struct {
	Accounts []jsonAccount `json:"accounts"`
	// Total is a decimal string; it can exceed int64.
	Total string `json:"total"`
}

func JSON(w io.Writer, state *ledger.State, names map[types.AccountID]string) error {
	out := jsonState{
		Accounts: make([]jsonAccount, 0, state.Len()),
		Total:    ledger.FormatSigned(state.Total()),
	}
	for _, e := range state.Entries() {
		out.Accounts = append(out.Accounts, jsonAccount{ID: e.Account, Name: names[e.Account], Balance: e.Balance})
	}
	enc := jsonx.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Blocks lists every block of c with its hashes.
func Blocks(w io.Writer, c *chain.Chain) error {
	for _, b := range c.Blocks() {
		parent := "-"
		if ph, ok := b.Contents().ParentHash(); ok {
			parent = ph.Short()
		}
		_, err := fmt.Fprintf(w, "#%d txs=%d hash=%s b58=%s parent=%s\n",
			b.Number(), b.Contents().Len(), b.Hash().Short(), b.Hash().Base58(), parent)
		if err != nil {
			return err
		}
	}
	return nil
}
