package store

import (
	"fmt"
	"os"

	"github.com/mezonai/hashledger/chain"
	"github.com/mezonai/hashledger/codec"
)

// WriteChainFile encodes c as a whole into path.
func WriteChainFile(path string, c *chain.Chain) error {
	data, err := codec.EncodeChain(c.Wire())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadChainFile decodes a chain written by WriteChainFile. The chain is not
// validated.
func ReadChainFile(path string) (*chain.Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w, err := codec.DecodeChain(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return chain.FromWire(w)
}
