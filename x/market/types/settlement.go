package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Settlement converts a disjoint batch of accepted usage records for one
// order into a fund movement out of the order's escrow, split between the
// provider share and the platform fee.
type Settlement struct {
	SettlementID   string   `json:"settlement_id"`
	OrderID        OrderID  `json:"order_id"`
	UsageRecordIDs []string `json:"usage_record_ids"`
	TotalAmount    math.Int `json:"total_amount"`
	ProviderShare  math.Int `json:"provider_share"`
	PlatformFee    math.Int `json:"platform_fee"`
	SettledAt      int64    `json:"settled_at,string"`
	IsFinal        bool     `json:"is_final"`
}

// Validate checks the settlement's structural invariants, most importantly
// total_amount = provider_share + platform_fee.
func (s Settlement) Validate() error {
	if s.SettlementID == "" {
		return ErrInvalidID.Wrap("settlement id cannot be empty")
	}
	if err := s.OrderID.Validate(); err != nil {
		return err
	}
	if len(s.UsageRecordIDs) == 0 {
		return ErrEmptySettlement
	}

	seen := make(map[string]struct{}, len(s.UsageRecordIDs))
	for _, id := range s.UsageRecordIDs {
		if id == "" {
			return ErrInvalidID.Wrap("settlement references an empty usage id")
		}
		if _, ok := seen[id]; ok {
			return ErrAlreadySettled.Wrapf("usage record %s referenced twice", id)
		}
		seen[id] = struct{}{}
	}

	for _, v := range []struct {
		name string
		amt  math.Int
	}{
		{"total_amount", s.TotalAmount},
		{"provider_share", s.ProviderShare},
		{"platform_fee", s.PlatformFee},
	} {
		if v.amt.IsNil() || v.amt.IsNegative() {
			return ErrInvalidAmount.Wrapf("settlement %s must be non-negative", v.name)
		}
	}

	if !s.ProviderShare.Add(s.PlatformFee).Equal(s.TotalAmount) {
		return ErrInvariantBroken.Wrapf(
			"settlement %s: provider share %s + platform fee %s != total %s",
			s.SettlementID, s.ProviderShare, s.PlatformFee, s.TotalAmount)
	}
	return nil
}

// RewardAccumulator tracks claimable provider rewards accrued from escrow
// releases, keyed by (recipient, source). Claiming zeroes the accumulator
// atomically with the bank transfer.
type RewardAccumulator struct {
	Recipient string   `json:"recipient"`
	Source    string   `json:"source"`
	Amount    math.Int `json:"amount"`
}

// Validate checks the accumulator fields
func (r RewardAccumulator) Validate() error {
	if _, err := sdk.AccAddressFromBech32(r.Recipient); err != nil {
		return ErrInvalidAddress.Wrapf("reward recipient: %v", err)
	}
	if r.Source == "" {
		return ErrValidationFailed.Wrap("reward source cannot be empty")
	}
	if r.Amount.IsNil() || !r.Amount.IsPositive() {
		return ErrInvalidAmount.Wrap("reward amount must be positive")
	}
	return nil
}

// SplitSettlementAmount applies fee rate f to a settlement total, returning
// (providerShare, platformFee). The fee is rounded down so the provider share
// absorbs the remainder and the two always sum back to the total.
func SplitSettlementAmount(total math.Int, feeRate math.LegacyDec) (math.Int, math.Int) {
	fee := feeRate.MulInt(total).TruncateInt()
	return total.Sub(fee), fee
}
