package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	TypeMsgRecordUsage      = "record_usage"
	TypeMsgAcknowledgeUsage = "acknowledge_usage"
)

// MsgRecordUsage submits a provider-signed usage record against a lease.
type MsgRecordUsage struct {
	Provider    string   `json:"provider"`
	OrderID     OrderID  `json:"order_id"`
	LeaseID     LeaseID  `json:"lease_id"`
	UsageUnits  uint64   `json:"usage_units,string"`
	UsageType   string   `json:"usage_type"`
	PeriodStart int64    `json:"period_start,string"`
	PeriodEnd   int64    `json:"period_end,string"`
	UnitPrice   math.Int `json:"unit_price"`
	Signature   []byte   `json:"signature"`
}

// MsgRecordUsageResponse is the response for MsgRecordUsage
type MsgRecordUsageResponse struct {
	UsageID    string   `json:"usage_id"`
	TotalCost  math.Int `json:"total_cost"`
	RecordedAt int64    `json:"recorded_at,string"`
}

// NewMsgRecordUsage creates a new MsgRecordUsage instance
func NewMsgRecordUsage(provider string, orderID OrderID, leaseID LeaseID, usageUnits uint64, usageType string, periodStart, periodEnd int64, unitPrice math.Int, signature []byte) *MsgRecordUsage {
	return &MsgRecordUsage{
		Provider:    provider,
		OrderID:     orderID,
		LeaseID:     leaseID,
		UsageUnits:  usageUnits,
		UsageType:   usageType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		UnitPrice:   unitPrice,
		Signature:   signature,
	}
}

// Route implements the sdk.Msg interface
func (msg MsgRecordUsage) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgRecordUsage) Type() string { return TypeMsgRecordUsage }

// GetSigners implements the sdk.Msg interface
func (msg MsgRecordUsage) GetSigners() []sdk.AccAddress {
	provider, _ := sdk.AccAddressFromBech32(msg.Provider)
	return []sdk.AccAddress{provider}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgRecordUsage) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgRecordUsage) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Provider); err != nil {
		return ErrInvalidAddress.Wrapf("invalid provider address: %v", err)
	}
	if err := msg.OrderID.Validate(); err != nil {
		return err
	}
	if err := msg.LeaseID.Validate(); err != nil {
		return err
	}
	if !msg.LeaseID.OrderID().Equals(msg.OrderID) {
		return ErrInvalidID.Wrap("lease id does not belong to order id")
	}
	if msg.Provider != msg.LeaseID.Provider {
		return ErrUnauthorized.Wrap("usage must be submitted by the lease provider")
	}
	if msg.UsageType == "" {
		return ErrValidationFailed.Wrap("usage type cannot be empty")
	}
	if msg.PeriodStart >= msg.PeriodEnd {
		return ErrInvalidPeriod.Wrapf("period start %d must precede end %d", msg.PeriodStart, msg.PeriodEnd)
	}
	if msg.UnitPrice.IsNil() || msg.UnitPrice.IsNegative() {
		return ErrInvalidAmount.Wrap("unit price must be non-negative")
	}
	if len(msg.Signature) == 0 {
		return ErrUnauthorized.Wrap("usage record must be signed")
	}
	return nil
}

// MsgAcknowledgeUsage is the buyer's advisory countersignature on a usage
// record. It never gates settlement.
type MsgAcknowledgeUsage struct {
	Sender    string `json:"sender"`
	UsageID   string `json:"usage_id"`
	Signature []byte `json:"signature"`
}

// MsgAcknowledgeUsageResponse is the response for MsgAcknowledgeUsage
type MsgAcknowledgeUsageResponse struct {
	AcknowledgedAt int64 `json:"acknowledged_at,string"`
}

// NewMsgAcknowledgeUsage creates a new MsgAcknowledgeUsage instance
func NewMsgAcknowledgeUsage(sender, usageID string, signature []byte) *MsgAcknowledgeUsage {
	return &MsgAcknowledgeUsage{Sender: sender, UsageID: usageID, Signature: signature}
}

// Route implements the sdk.Msg interface
func (msg MsgAcknowledgeUsage) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgAcknowledgeUsage) Type() string { return TypeMsgAcknowledgeUsage }

// GetSigners implements the sdk.Msg interface
func (msg MsgAcknowledgeUsage) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgAcknowledgeUsage) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgAcknowledgeUsage) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	if msg.UsageID == "" {
		return ErrInvalidID.Wrap("usage id cannot be empty")
	}
	if len(msg.Signature) == 0 {
		return ErrUnauthorized.Wrap("acknowledgement must be signed")
	}
	return nil
}
