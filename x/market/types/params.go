package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Default module parameters
var (
	DefaultDenom                         = "uve"
	DefaultFeeRate                       = math.LegacyNewDecWithPrec(5, 2) // 5%
	DefaultMinEscrowAmount               = math.NewInt(1)
	DefaultInsufficientFundsGraceSeconds = int64(300)
	DefaultMaxSettlementRecords          = uint32(100)
)

// Params are the governance-controlled module parameters.
type Params struct {
	// Denom is the coin denomination all escrow amounts use.
	Denom string `json:"denom"`

	// FeeRate is the platform fee rate f applied to every escrow release,
	// constrained to [0, 1).
	FeeRate math.LegacyDec `json:"fee_rate"`

	// MinEscrowAmount is the smallest escrow deposit accepted.
	MinEscrowAmount math.Int `json:"min_escrow_amount"`

	// InsufficientFundsGraceSeconds is how long a lease may sit in
	// InsufficientFunds awaiting a top-up before the end blocker closes it.
	InsufficientFundsGraceSeconds int64 `json:"insufficient_funds_grace_seconds,string"`

	// MaxSettlementRecords caps how many usage records one settlement may fold.
	MaxSettlementRecords uint32 `json:"max_settlement_records"`
}

// DefaultParams returns a default set of parameters
func DefaultParams() Params {
	return Params{
		Denom:                         DefaultDenom,
		FeeRate:                       DefaultFeeRate,
		MinEscrowAmount:               DefaultMinEscrowAmount,
		InsufficientFundsGraceSeconds: DefaultInsufficientFundsGraceSeconds,
		MaxSettlementRecords:          DefaultMaxSettlementRecords,
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if err := sdk.ValidateDenom(p.Denom); err != nil {
		return fmt.Errorf("invalid denom: %w", err)
	}
	if p.FeeRate.IsNil() || p.FeeRate.IsNegative() || p.FeeRate.GTE(math.LegacyOneDec()) {
		return fmt.Errorf("fee rate must be in [0, 1), got %s", p.FeeRate)
	}
	if p.MinEscrowAmount.IsNil() || !p.MinEscrowAmount.IsPositive() {
		return fmt.Errorf("min escrow amount must be positive")
	}
	if p.InsufficientFundsGraceSeconds < 0 {
		return fmt.Errorf("insufficient funds grace period cannot be negative")
	}
	if p.MaxSettlementRecords == 0 {
		return fmt.Errorf("max settlement records must be positive")
	}
	return nil
}
