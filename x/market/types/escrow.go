package types

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// EscrowState is the lifecycle state of an escrow account.
// Released, Refunded and Disputed-resolution are terminal.
type EscrowState int32

const (
	EscrowStateCreated EscrowState = iota
	EscrowStateActive
	EscrowStateReleased
	EscrowStateRefunded
	EscrowStateDisputed
)

var escrowStateNames = map[EscrowState]string{
	EscrowStateCreated:  "created",
	EscrowStateActive:   "active",
	EscrowStateReleased: "released",
	EscrowStateRefunded: "refunded",
	EscrowStateDisputed: "disputed",
}

var escrowStateValues = map[string]EscrowState{
	"created":  EscrowStateCreated,
	"active":   EscrowStateActive,
	"released": EscrowStateReleased,
	"refunded": EscrowStateRefunded,
	"disputed": EscrowStateDisputed,
}

// String returns the lower-snake-case name of the state
func (s EscrowState) String() string {
	if name, ok := escrowStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}

// Validate rejects out-of-range states
func (s EscrowState) Validate() error {
	if _, ok := escrowStateNames[s]; !ok {
		return ErrInvalidEscrowState.Wrapf("unknown escrow state %d", int32(s))
	}
	return nil
}

// MarshalJSON encodes the state as its lower-snake-case name
func (s EscrowState) MarshalJSON() ([]byte, error) {
	name, ok := escrowStateNames[s]
	if !ok {
		return nil, ErrInvalidEscrowState.Wrapf("unknown escrow state %d", int32(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a lower-snake-case state name, erroring on unknowns
func (s *EscrowState) UnmarshalJSON(bz []byte) error {
	var name string
	if err := json.Unmarshal(bz, &name); err != nil {
		return err
	}
	v, ok := escrowStateValues[name]
	if !ok {
		return ErrInvalidEscrowState.Wrapf("unknown escrow state %q", name)
	}
	*s = v
	return nil
}

// Escrow is the custodial hold of buyer funds for one order. The escrow id is
// derived deterministically from the order id, so at most one escrow can ever
// exist per order. Amount is the total deposited over the escrow's lifetime;
// Balance is what is still held; Released and Refunded account for every coin
// that left the hold.
type Escrow struct {
	EscrowID  string      `json:"escrow_id"`
	OrderID   OrderID     `json:"order_id"`
	LeaseID   LeaseID     `json:"lease_id,omitempty"`
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient,omitempty"`
	Amount    math.Int    `json:"amount"`
	Balance   math.Int    `json:"balance"`
	Released  math.Int    `json:"released"`
	Refunded  math.Int    `json:"refunded"`
	ExpiresIn int64       `json:"expires_in,string"`
	State     EscrowState `json:"state"`

	CreatedAt   int64 `json:"created_at,string"`
	ActivatedAt int64 `json:"activated_at,string,omitempty"`
	FinalizedAt int64 `json:"finalized_at,string,omitempty"`

	DisputeReason   string `json:"dispute_reason,omitempty"`
	DisputeEvidence []byte `json:"dispute_evidence,omitempty"`
}

// ExpiresAt returns the unix time at which the escrow's funding window ends
func (e Escrow) ExpiresAt() int64 {
	return e.CreatedAt + e.ExpiresIn
}

// Validate checks the accounting invariants of an escrow:
// non-negative balances and Released + Refunded never exceeding Amount.
func (e Escrow) Validate() error {
	if e.EscrowID == "" {
		return ErrInvalidID.Wrap("escrow id cannot be empty")
	}
	if err := e.OrderID.Validate(); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(e.Sender); err != nil {
		return ErrInvalidAddress.Wrapf("escrow sender: %v", err)
	}
	if e.Recipient != "" {
		if _, err := sdk.AccAddressFromBech32(e.Recipient); err != nil {
			return ErrInvalidAddress.Wrapf("escrow recipient: %v", err)
		}
	}
	if err := e.State.Validate(); err != nil {
		return err
	}

	for _, v := range []struct {
		name string
		amt  math.Int
	}{
		{"amount", e.Amount},
		{"balance", e.Balance},
		{"released", e.Released},
		{"refunded", e.Refunded},
	} {
		if v.amt.IsNil() || v.amt.IsNegative() {
			return ErrInvalidAmount.Wrapf("escrow %s must be non-negative", v.name)
		}
	}

	if !e.Amount.IsPositive() {
		return ErrInvalidAmount.Wrap("escrow amount must be positive")
	}
	if e.Released.Add(e.Refunded).GT(e.Amount) {
		return ErrInvariantBroken.Wrapf(
			"escrow %s over-paid: released %s + refunded %s > amount %s",
			e.EscrowID, e.Released, e.Refunded, e.Amount)
	}
	if !e.Balance.Add(e.Released).Add(e.Refunded).Equal(e.Amount) {
		return ErrInvariantBroken.Wrapf(
			"escrow %s accounting mismatch: balance %s + released %s + refunded %s != amount %s",
			e.EscrowID, e.Balance, e.Released, e.Refunded, e.Amount)
	}
	return nil
}

// IsOpen reports whether the escrow can still release or refund funds
func (e Escrow) IsOpen() bool {
	return e.State == EscrowStateCreated || e.State == EscrowStateActive
}
