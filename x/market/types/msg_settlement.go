package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	TypeMsgSettleOrder  = "settle_order"
	TypeMsgClaimRewards = "claim_rewards"
)

// MsgSettleOrder folds unsettled usage records for an order into a
// settlement, releasing the total from the order's escrow. An empty
// usage_record_ids list settles every accepted, unsettled record.
type MsgSettleOrder struct {
	Sender         string   `json:"sender"`
	OrderID        OrderID  `json:"order_id"`
	UsageRecordIDs []string `json:"usage_record_ids,omitempty"`
	IsFinal        bool     `json:"is_final"`
}

// MsgSettleOrderResponse is the response for MsgSettleOrder
type MsgSettleOrderResponse struct {
	SettlementID  string   `json:"settlement_id,omitempty"`
	TotalAmount   math.Int `json:"total_amount"`
	ProviderShare math.Int `json:"provider_share"`
	PlatformFee   math.Int `json:"platform_fee"`
	SettledAt     int64    `json:"settled_at,string"`

	// InsufficientFunds is set when the escrow could not cover the settlement
	// total. No settlement was written; the lease moved to InsufficientFunds.
	InsufficientFunds bool `json:"insufficient_funds,omitempty"`
}

// NewMsgSettleOrder creates a new MsgSettleOrder instance
func NewMsgSettleOrder(sender string, orderID OrderID, usageRecordIDs []string, isFinal bool) *MsgSettleOrder {
	return &MsgSettleOrder{
		Sender:         sender,
		OrderID:        orderID,
		UsageRecordIDs: usageRecordIDs,
		IsFinal:        isFinal,
	}
}

// Route implements the sdk.Msg interface
func (msg MsgSettleOrder) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgSettleOrder) Type() string { return TypeMsgSettleOrder }

// GetSigners implements the sdk.Msg interface
func (msg MsgSettleOrder) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgSettleOrder) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgSettleOrder) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	if err := msg.OrderID.Validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(msg.UsageRecordIDs))
	for _, id := range msg.UsageRecordIDs {
		if id == "" {
			return ErrInvalidID.Wrap("usage record id cannot be empty")
		}
		if _, ok := seen[id]; ok {
			return ErrAlreadySettled.Wrapf("usage record %s referenced twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// MsgClaimRewards pays out a provider's accumulated share for a source,
// zeroing the accumulator atomically with the transfer.
type MsgClaimRewards struct {
	Sender string `json:"sender"`
	Source string `json:"source"`
}

// MsgClaimRewardsResponse is the response for MsgClaimRewards
type MsgClaimRewardsResponse struct {
	ClaimedAmount math.Int `json:"claimed_amount"`
	ClaimedAt     int64    `json:"claimed_at,string"`
}

// NewMsgClaimRewards creates a new MsgClaimRewards instance
func NewMsgClaimRewards(sender, source string) *MsgClaimRewards {
	return &MsgClaimRewards{Sender: sender, Source: source}
}

// Route implements the sdk.Msg interface
func (msg MsgClaimRewards) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgClaimRewards) Type() string { return TypeMsgClaimRewards }

// GetSigners implements the sdk.Msg interface
func (msg MsgClaimRewards) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgClaimRewards) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface. An empty source is valid
// and claims across every source the sender has accrued.
func (msg MsgClaimRewards) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	return nil
}
