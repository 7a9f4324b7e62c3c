// Package codec is the canonical byte encoding of the ledger data model.
//
// The same encoding is used to compute block content hashes and to persist
// chains, so a chain written to disk and read back hashes to the same values.
// Encoding is delegated to cramberry, which is deterministic for a given
// struct value; the canonical ordering of transaction entries is enforced here
// because it is a property of the data, not of the encoder.
package codec

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/mezonai/hashledger/types"
)

var ErrNonCanonical = errors.New("transaction entries are not in canonical order")

// NonCanonicalError pinpoints the first out-of-order entry.
type NonCanonicalError struct {
	Tx      int
	Account types.AccountID
}

func (e *NonCanonicalError) Error() string {
	return fmt.Sprintf("%s: tx %d at account %s", ErrNonCanonical, e.Tx, e.Account)
}

func (e *NonCanonicalError) Unwrap() error { return ErrNonCanonical }

func Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal: %w", err)
	}
	return data, nil
}

func Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cramberry unmarshal: %w", err)
	}
	return nil
}

// EncodeContents returns the canonical bytes of c.
func EncodeContents(c Contents) ([]byte, error) {
	if err := c.Canonical(); err != nil {
		return nil, err
	}
	return Marshal(c.normalized())
}

// Digest hashes the canonical encoding of c with SHA-256.
func Digest(c Contents) (types.Hash, error) {
	data, err := EncodeContents(c)
	if err != nil {
		return types.Hash{}, err
	}
	return types.Hash(sha256.Sum256(data)), nil
}

// EncodeChain serializes a chain for storage.
func EncodeChain(c Chain) ([]byte, error) {
	blocks := make([]Block, len(c.Blocks))
	for i, b := range c.Blocks {
		if err := b.Contents.Canonical(); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks[i] = Block{Hash: b.Hash, Contents: b.Contents.normalized()}
	}
	return Marshal(Chain{Blocks: blocks})
}

func DecodeChain(data []byte) (Chain, error) {
	var c Chain
	if err := Unmarshal(data, &c); err != nil {
		return Chain{}, err
	}
	return c, nil
}

// EncodeBlock serializes a single block, used by per-block stores.
func EncodeBlock(b Block) ([]byte, error) {
	if err := b.Contents.Canonical(); err != nil {
		return nil, err
	}
	return Marshal(Block{Hash: b.Hash, Contents: b.Contents.normalized()})
}

func DecodeBlock(data []byte) (Block, error) {
	var b Block
	if err := Unmarshal(data, &b); err != nil {
		return Block{}, err
	}
	return b, nil
}
