// Package store persists chains, block by block in a key-value backend or
// whole in a single file.
package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/mezonai/hashledger/block"
	"github.com/mezonai/hashledger/chain"
	"github.com/mezonai/hashledger/codec"
	"github.com/mezonai/hashledger/db"
	"github.com/mezonai/hashledger/logx"
	"github.com/mezonai/hashledger/types"
)

var (
	ErrEmptyStore = errors.New("store holds no blocks")
	ErrNotFound   = errors.New("block not found")
)

// ChainStore keeps blocks keyed by number. It stores what it is given and
// loads what it finds; validation is up to the caller.
type ChainStore struct {
	provider db.DatabaseProvider
	mu       sync.RWMutex
	latest   uint64
	hasAny   bool
}

func NewChainStore(provider db.DatabaseProvider) (*ChainStore, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	s := &ChainStore{provider: provider}
	if err := s.loadLatest(); err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	return s, nil
}

func (s *ChainStore) loadLatest() error {
	value, err := s.provider.Get(metaKey(BlockMetaKeyLatest))
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	if len(value) != 8 {
		return fmt.Errorf("invalid latest value length: %d", len(value))
	}
	s.latest = binary.BigEndian.Uint64(value)
	s.hasAny = true
	return nil
}

func metaKey(name string) []byte {
	return []byte(PrefixBlockMeta + name)
}

// blockKey is the prefix followed by the big-endian number, so keys sort in
// chain order.
func blockKey(number uint64) []byte {
	key := make([]byte, len(PrefixBlock)+8)
	copy(key, PrefixBlock)
	binary.BigEndian.PutUint64(key[len(PrefixBlock):], number)
	return key
}

func uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func (s *ChainStore) put(batch db.DatabaseBatch, b *block.Block) error {
	data, err := codec.EncodeBlock(b.Wire())
	if err != nil {
		return fmt.Errorf("encode block %d: %w", b.Number(), err)
	}
	batch.Put(blockKey(b.Number()), data)
	return nil
}

// SaveBlock writes b and advances the latest number if b is past it.
func (s *ChainStore) SaveBlock(b *block.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.provider.Batch()
	defer batch.Close()

	if err := s.put(batch, b); err != nil {
		return err
	}
	latest := b.Number()
	if s.hasAny && s.latest > latest {
		latest = s.latest
	}
	return s.commit(batch, latest, 1)
}

// SaveChain replaces whatever the store holds with c, in one batch. Blocks of
// an earlier chain are removed and the recorded state hash is cleared.
func (s *ChainStore) SaveChain(c *chain.Chain) error {
	blocks := c.Blocks()
	if len(blocks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.provider.Batch()
	defer batch.Close()

	var stale [][]byte
	err := s.provider.IteratePrefix([]byte(PrefixBlock), func(key, _ []byte) bool {
		stale = append(stale, bytes.Clone(key))
		return true
	})
	if err != nil {
		return fmt.Errorf("list stored blocks: %w", err)
	}
	for _, key := range stale {
		batch.Delete(key)
	}
	batch.Delete(metaKey(BlockMetaKeyStateHash))

	var latest uint64
	for _, b := range blocks {
		if err := s.put(batch, b); err != nil {
			return err
		}
		latest = max(latest, b.Number())
	}
	if len(stale) > 0 {
		logx.Info("CHAINSTORE", fmt.Sprintf("Replacing %d stored blocks", len(stale)))
	}
	return s.commit(batch, latest, len(blocks))
}

// commit records latest in batch and writes it.
func (s *ChainStore) commit(batch db.DatabaseBatch, latest uint64, saved int) error {
	batch.Put(metaKey(BlockMetaKeyLatest), uint64Bytes(latest))
	if err := batch.Write(); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	s.latest, s.hasAny = latest, true
	logx.Debug("CHAINSTORE", fmt.Sprintf("Saved %d blocks, latest %d", saved, latest))
	return nil
}

// Block loads block number n. ErrNotFound when absent.
func (s *ChainStore) Block(n uint64) (*block.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := s.provider.Get(blockKey(n))
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, n)
	}
	return decodeBlock(value)
}

func decodeBlock(data []byte) (*block.Block, error) {
	w, err := codec.DecodeBlock(data)
	if err != nil {
		return nil, err
	}
	return block.FromWire(w)
}

// LatestNumber returns the highest stored block number. ok is false for an
// empty store.
func (s *ChainStore) LatestNumber() (n uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasAny
}

// LoadChain reads every stored block in number order. Gaps are not filled in,
// so a store with missing blocks yields a chain that fails validation.
func (s *ChainStore) LoadChain() (*chain.Chain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		blocks  []*block.Block
		loadErr error
	)
	err := s.provider.IteratePrefix([]byte(PrefixBlock), func(_, value []byte) bool {
		b, err := decodeBlock(value)
		if err != nil {
			loadErr = err
			return false
		}
		blocks = append(blocks, b)
		return true
	})
	if err != nil {
		return nil, err
	}
	if loadErr != nil {
		return nil, loadErr
	}
	if len(blocks) == 0 {
		return nil, ErrEmptyStore
	}
	return chain.FromBlocks(blocks), nil
}

// SaveStateHash records the digest of the state certified for the stored chain.
func (s *ChainStore) SaveStateHash(h types.Hash) error {
	return s.provider.Put(metaKey(BlockMetaKeyStateHash), h[:])
}

// StateHash returns the recorded state digest; ok is false if none was saved.
func (s *ChainStore) StateHash() (h types.Hash, ok bool, err error) {
	value, err := s.provider.Get(metaKey(BlockMetaKeyStateHash))
	if err != nil || value == nil {
		return h, false, err
	}
	if len(value) != types.HashSize {
		return h, false, fmt.Errorf("invalid state hash length: %d", len(value))
	}
	copy(h[:], value)
	return h, true, nil
}

func (s *ChainStore) Close() error {
	return s.provider.Close()
}
