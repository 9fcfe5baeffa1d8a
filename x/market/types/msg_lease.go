package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	TypeMsgCloseLease   = "close_lease"
	TypeMsgUpdateParams = "update_params"
)

// MsgCloseLease closes a lease. The owner closes with reason
// lease_closed_owner; the provider decommissions with reason decommission.
// Closing is terminal and idempotent.
type MsgCloseLease struct {
	Sender  string  `json:"sender"`
	LeaseID LeaseID `json:"lease_id"`
}

// MsgCloseLeaseResponse is the response for MsgCloseLease
type MsgCloseLeaseResponse struct {
	ClosedOn int64             `json:"closed_on,string"`
	Reason   LeaseClosedReason `json:"reason"`
}

// NewMsgCloseLease creates a new MsgCloseLease instance
func NewMsgCloseLease(sender string, leaseID LeaseID) *MsgCloseLease {
	return &MsgCloseLease{Sender: sender, LeaseID: leaseID}
}

// Route implements the sdk.Msg interface
func (msg MsgCloseLease) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgCloseLease) Type() string { return TypeMsgCloseLease }

// GetSigners implements the sdk.Msg interface
func (msg MsgCloseLease) GetSigners() []sdk.AccAddress {
	sender, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{sender}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgCloseLease) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgCloseLease) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address: %v", err)
	}
	if err := msg.LeaseID.Validate(); err != nil {
		return err
	}
	if msg.Sender != msg.LeaseID.Owner && msg.Sender != msg.LeaseID.Provider {
		return ErrUnauthorized.Wrap("only the lease owner or provider may close it")
	}
	return nil
}

// MsgUpdateParams updates the module parameters. Authority-gated.
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

// MsgUpdateParamsResponse is the response for MsgUpdateParams
type MsgUpdateParamsResponse struct{}

// NewMsgUpdateParams creates a new MsgUpdateParams instance
func NewMsgUpdateParams(authority string, params Params) *MsgUpdateParams {
	return &MsgUpdateParams{Authority: authority, Params: params}
}

// Route implements the sdk.Msg interface
func (msg MsgUpdateParams) Route() string { return RouterKey }

// Type implements the sdk.Msg interface
func (msg MsgUpdateParams) Type() string { return TypeMsgUpdateParams }

// GetSigners implements the sdk.Msg interface
func (msg MsgUpdateParams) GetSigners() []sdk.AccAddress {
	authority, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{authority}
}

// GetSignBytes implements the sdk.Msg interface
func (msg MsgUpdateParams) GetSignBytes() []byte {
	return sdk.MustSortJSON(ModuleCdc.MustMarshalJSON(&msg))
}

// ValidateBasic implements the sdk.Msg interface
func (msg MsgUpdateParams) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return ErrInvalidAddress.Wrapf("invalid authority address: %v", err)
	}
	return msg.Params.Validate()
}
