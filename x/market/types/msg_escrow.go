package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message type identifiers
const (
	TypeMsgCreateEscrow   = "create_escrow"
	TypeMsgActivateEscrow = "activate_escrow"
	TypeMsgReleaseEscrow  = "release_escrow"
	TypeMsgRefundEscrow   = "refund_escrow"
	TypeMsgDisputeEscrow  = "dispute_escrow"
)

// MsgCreateEscrow opens the escrow account for an order, transferring the
// deposit from the sender into module custody.
type MsgCreateEscrow struct {
	Sender    string   `json:"sender"`
	OrderID   OrderID  `json:"order_id"`
	Amount    math.Int `json:"amount"`
	ExpiresIn int64    `json:"expires_in,string"`
}

// MsgCreateEscrowResponse is the response for MsgCreateEscrow
type MsgCreateEscrowResponse struct {
	EscrowID  string `json:"escrow_id"`
	CreatedAt int64  `json:"created_at,string"`
}

// NewMsgCreateEscrow creates a new MsgCreateEscrow instance
func NewMsgCreateEscrow(sender string, orderID OrderID, amount math.Int, expiresIn int64) *MsgCreateEscrow {
	return &MsgCreateEscrow{
		Sender:    sender,
		OrderID:   orderID,
		Amount:    amount,
		ExpiresIn: expiresIn,
	}
}

// Route implements the sdk.Msg interface
func (msg MsgCreateEscrow) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgCreateEscrow) Type() string { return TypeMsgCreateEscrow }

// GetSigners implements the sdk.Msg interface
func (msg MsgCreateEscrow) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgCreateEscrow) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgCreateEscrow) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	if err := msg.OrderID.Validate(); err != nil {
		return err
	}
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return ErrInvalidAmount.Wrap("escrow amount must be positive")
	}
	if msg.ExpiresIn <= 0 {
		return ErrValidationFailed.Wrap("expires_in must be positive")
	}
	return nil
}

// MsgActivateEscrow binds the escrow to a lease and the provider payout
// address, allowing releases.
type MsgActivateEscrow struct {
	Sender    string  `json:"sender"`
	EscrowID  string  `json:"escrow_id"`
	LeaseID   LeaseID `json:"lease_id"`
	Recipient string  `json:"recipient"`
}

// MsgActivateEscrowResponse is the response for MsgActivateEscrow
type MsgActivateEscrowResponse struct {
	ActivatedAt int64 `json:"activated_at,string"`
}

// NewMsgActivateEscrow creates a new MsgActivateEscrow instance
func NewMsgActivateEscrow(sender, escrowID string, leaseID LeaseID, recipient string) *MsgActivateEscrow {
	return &MsgActivateEscrow{
		Sender:    sender,
		EscrowID:  escrowID,
		LeaseID:   leaseID,
		Recipient: recipient,
	}
}

// Route implements the sdk.Msg interface
func (msg MsgActivateEscrow) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgActivateEscrow) Type() string { return TypeMsgActivateEscrow }

// GetSigners implements the sdk.Msg interface
func (msg MsgActivateEscrow) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgActivateEscrow) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgActivateEscrow) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	if msg.EscrowID == "" {
		return ErrInvalidID.Wrap("escrow id cannot be empty")
	}
	if err := msg.LeaseID.Validate(); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.Recipient); err != nil {
		return ErrInvalidAddress.Wrapf("invalid recipient address: %v", err)
	}
	return nil
}

// MsgReleaseEscrow releases part of the held balance toward the bound
// recipient, split by the module fee rate.
type MsgReleaseEscrow struct {
	Sender   string   `json:"sender"`
	EscrowID string   `json:"escrow_id"`
	Amount   math.Int `json:"amount"`
	Reason   string   `json:"reason"`
}

// MsgReleaseEscrowResponse is the response for MsgReleaseEscrow
type MsgReleaseEscrowResponse struct {
	ReleasedAt    int64    `json:"released_at,string"`
	ProviderShare math.Int `json:"provider_share"`
	PlatformFee   math.Int `json:"platform_fee"`

	// InsufficientFunds is set when the escrow could not cover the release.
	// Nothing was paid out; the lease moved to InsufficientFunds.
	InsufficientFunds bool `json:"insufficient_funds,omitempty"`
}

// NewMsgReleaseEscrow creates a new MsgReleaseEscrow instance
func NewMsgReleaseEscrow(sender, escrowID string, amount math.Int, reason string) *MsgReleaseEscrow {
	return &MsgReleaseEscrow{
		Sender:   sender,
		EscrowID: escrowID,
		Amount:   amount,
		Reason:   reason,
	}
}

// Route implements the sdk.Msg interface
func (msg MsgReleaseEscrow) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgReleaseEscrow) Type() string { return TypeMsgReleaseEscrow }

// GetSigners implements the sdk.Msg interface
func (msg MsgReleaseEscrow) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgReleaseEscrow) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgReleaseEscrow) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	if msg.EscrowID == "" {
		return ErrInvalidID.Wrap("escrow id cannot be empty")
	}
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return ErrInvalidAmount.Wrap("release amount must be positive")
	}
	return nil
}

// MsgRefundEscrow returns the remaining held balance to the escrow sender and
// terminates the escrow.
type MsgRefundEscrow struct {
	Sender   string `json:"sender"`
	EscrowID string `json:"escrow_id"`
	Reason   string `json:"reason"`
}

// MsgRefundEscrowResponse is the response for MsgRefundEscrow
type MsgRefundEscrowResponse struct {
	RefundedAt     int64    `json:"refunded_at,string"`
	RefundedAmount math.Int `json:"refunded_amount"`
}

// NewMsgRefundEscrow creates a new MsgRefundEscrow instance
func NewMsgRefundEscrow(sender, escrowID, reason string) *MsgRefundEscrow {
	return &MsgRefundEscrow{Sender: sender, EscrowID: escrowID, Reason: reason}
}

// Route implements the sdk.Msg interface
func (msg MsgRefundEscrow) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgRefundEscrow) Type() string { return TypeMsgRefundEscrow }

// GetSigners implements the sdk.Msg interface
func (msg MsgRefundEscrow) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgRefundEscrow) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgRefundEscrow) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	if msg.EscrowID == "" {
		return ErrInvalidID.Wrap("escrow id cannot be empty")
	}
	return nil
}

// MsgDisputeEscrow freezes an active escrow pending external arbitration.
type MsgDisputeEscrow struct {
	Sender   string `json:"sender"`
	EscrowID string `json:"escrow_id"`
	Reason   string `json:"reason"`
	Evidence []byte `json:"evidence,omitempty"`
}

// MsgDisputeEscrowResponse is the response for MsgDisputeEscrow
type MsgDisputeEscrowResponse struct {
	DisputedAt int64 `json:"disputed_at,string"`
}

// NewMsgDisputeEscrow creates a new MsgDisputeEscrow instance
func NewMsgDisputeEscrow(sender, escrowID, reason string, evidence []byte) *MsgDisputeEscrow {
	return &MsgDisputeEscrow{Sender: sender, EscrowID: escrowID, Reason: reason, Evidence: evidence}
}

// Route implements the sdk.Msg interface
func (msg MsgDisputeEscrow) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgDisputeEscrow) Type() string { return TypeMsgDisputeEscrow }

// GetSigners implements the sdk.Msg interface
func (msg MsgDisputeEscrow) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgDisputeEscrow) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgDisputeEscrow) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	if msg.EscrowID == "" {
		return ErrInvalidID.Wrap("escrow id cannot be empty")
	}
	if msg.Reason == "" {
		return ErrValidationFailed.Wrap("dispute reason cannot be empty")
	}
	return nil
}
