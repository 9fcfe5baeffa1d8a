package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// Market module sentinel errors. Codes are stable: clients branch on them to
// decide whether a retry with the same payload can ever succeed.
var (
	// Validation errors: rejected synchronously, no state mutated.
	ErrInvalidAddress   = sdkerrors.Register(ModuleName, 2, "invalid address")
	ErrValidationFailed = sdkerrors.Register(ModuleName, 3, "message validation failed")
	ErrInvalidID        = sdkerrors.Register(ModuleName, 4, "invalid identifier")
	ErrInvalidAmount    = sdkerrors.Register(ModuleName, 5, "invalid amount")
	ErrInvalidPeriod    = sdkerrors.Register(ModuleName, 6, "invalid usage period")

	// Escrow errors
	ErrDuplicateEscrow           = sdkerrors.Register(ModuleName, 10, "escrow already exists for order")
	ErrEscrowNotFound            = sdkerrors.Register(ModuleName, 11, "escrow not found")
	ErrInvalidEscrowState        = sdkerrors.Register(ModuleName, 12, "escrow is not in a valid state for this operation")
	ErrInsufficientEscrowBalance = sdkerrors.Register(ModuleName, 13, "insufficient escrow balance")

	// Lease errors
	ErrLeaseNotFound     = sdkerrors.Register(ModuleName, 20, "lease not found")
	ErrLeaseNotActive    = sdkerrors.Register(ModuleName, 21, "lease is not active")
	ErrInvalidLeaseState = sdkerrors.Register(ModuleName, 22, "invalid lease state transition")
	ErrDuplicateLease    = sdkerrors.Register(ModuleName, 23, "lease already exists")

	// Usage errors
	ErrUsageNotFound         = sdkerrors.Register(ModuleName, 30, "usage record not found")
	ErrOverlap               = sdkerrors.Register(ModuleName, 31, "usage period overlaps an accepted record")
	ErrUnauthorized          = sdkerrors.Register(ModuleName, 32, "unauthorized")
	ErrOrderAlreadyFinalized = sdkerrors.Register(ModuleName, 33, "order has been finalized, no further usage accepted")

	// Settlement errors
	ErrAlreadySettled     = sdkerrors.Register(ModuleName, 40, "usage record already settled")
	ErrSettlementNotFound = sdkerrors.Register(ModuleName, 41, "settlement not found")
	ErrEmptySettlement    = sdkerrors.Register(ModuleName, 42, "settlement references no unsettled usage records")

	// Reward errors
	ErrNothingToClaim = sdkerrors.Register(ModuleName, 50, "nothing to claim")

	// Invariant violations: never retried, signal a bug rather than user error.
	ErrInvariantBroken = sdkerrors.Register(ModuleName, 60, "module invariant broken")
)
