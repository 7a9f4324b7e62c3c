package ledger

import "errors"

var (
	// ErrUnbalanced is returned when a transfer's deltas do not sum to zero.
	ErrUnbalanced = errors.New("transaction is unbalanced")

	// ErrInsufficientBalance is returned when applying a transfer would drive
	// an account below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBalanceOverflow is returned when a resulting balance does not fit in
	// a signed 64-bit integer.
	ErrBalanceOverflow = errors.New("balance overflow")

	ErrDuplicateAccount = errors.New("duplicate account in transaction")
	ErrNegativeBalance  = errors.New("negative opening balance")
	ErrUnknownKind      = errors.New("unknown transaction kind")

	// ErrSeedNotTransfer is returned when a genesis seed is validated as if it
	// were an ordinary transfer, i.e. it shows up outside the genesis block.
	ErrSeedNotTransfer = errors.New("genesis seed is not a transfer")
)
