package chain

import "errors"

// Every failure in this package is local to one transaction or one
// mining attempt; none of these corrupt chain or balance invariants.
var (
	// Validation errors, rejected synchronously at submission.
	ErrInvalidAmount       = errors.New("transaction amount must be positive")
	ErrInvalidFee          = errors.New("transaction fee does not match the fee rate")
	ErrMalformedAddress    = errors.New("malformed address")
	ErrInvalidSignature    = errors.New("transaction signature verification failed")
	ErrReservedSender      = errors.New("sender address is reserved for the network")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Linkage errors: the block does not extend the current tail.
	ErrChainLinkage = errors.New("block does not extend the shard tail")

	// Coordination conflicts during cross-shard two-phase commit.
	ErrAddressBusy      = errors.New("address has a conflicting in-flight cross-shard transfer")
	ErrUnknownTransfer  = errors.New("no in-flight transfer with that id")
	ErrTransferMismatch = errors.New("in-flight transfer marks do not match the transfer id")

	ErrDuplicateTransaction = errors.New("transaction already pending")
	ErrSupplyExhausted      = errors.New("total supply exhausted")
)
