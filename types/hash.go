package types

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

const HashSize = 32

// Hash is a SHA-256 content digest of a block's contents.
type Hash [HashSize]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 8 hex characters, for log lines.
func (h Hash) Short() string {
	return hex.EncodeToString(h[:4])
}

func (h Hash) Base58() string {
	return base58.Encode(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

// HashFromHex parses the 64 character hex form produced by String.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("failed to decode hash: %w", err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("invalid hash length: %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashFromBase58 parses the form produced by Base58.
func HashFromBase58(s string) (Hash, error) {
	var h Hash
	b, err := base58.Decode(s)
	if err != nil {
		return h, fmt.Errorf("failed to decode base58 hash: %w", err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("invalid hash length: %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}
