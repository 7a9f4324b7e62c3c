package chain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyChain          = errors.New("chain has no genesis block")
	ErrHashMismatch        = errors.New("block hash does not match its contents")
	ErrParentHashMismatch  = errors.New("parent hash does not match predecessor")
	ErrBlockNumberMismatch = errors.New("block number is not contiguous")
	ErrInvalidTransaction  = errors.New("invalid transaction")

	// ErrTransactionRejected marks a transaction the builder dropped. It is
	// always joined with the ledger reason (unbalanced, insufficient balance).
	ErrTransactionRejected = errors.New("transaction rejected")
)

// ValidationError reports where chain validation stopped.
type ValidationError struct {
	Block int // position in the chain
	Tx    int // position in the block, -1 for block-level failures
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Tx >= 0 {
		return fmt.Sprintf("block %d tx %d: %v", e.Block, e.Tx, e.Err)
	}
	return fmt.Sprintf("block %d: %v", e.Block, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AsValidationError extracts a ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func blockError(index int, err error) *ValidationError {
	return &ValidationError{Block: index, Tx: -1, Err: err}
}

func txError(index, tx int, reason error) *ValidationError {
	return &ValidationError{Block: index, Tx: tx, Err: fmt.Errorf("%w: %w", ErrInvalidTransaction, reason)}
}
