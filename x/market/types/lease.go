package types

import (
	"encoding/json"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// LeaseState is the lifecycle state of a lease.
// Transitions are monotonic: Invalid -> Active -> {InsufficientFunds, Closed},
// InsufficientFunds -> Closed. Closed is terminal.
type LeaseState int32

const (
	LeaseStateInvalid LeaseState = iota
	LeaseStateActive
	LeaseStateInsufficientFunds
	LeaseStateClosed
)

var leaseStateNames = map[LeaseState]string{
	LeaseStateInvalid:           "invalid",
	LeaseStateActive:            "active",
	LeaseStateInsufficientFunds: "insufficient_funds",
	LeaseStateClosed:            "closed",
}

var leaseStateValues = map[string]LeaseState{
	"invalid":            LeaseStateInvalid,
	"active":             LeaseStateActive,
	"insufficient_funds": LeaseStateInsufficientFunds,
	"closed":             LeaseStateClosed,
}

// String returns the lower-snake-case name of the state
func (s LeaseState) String() string {
	if name, ok := leaseStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}

// Validate rejects out-of-range states
func (s LeaseState) Validate() error {
	if _, ok := leaseStateNames[s]; !ok {
		return ErrInvalidLeaseState.Wrapf("unknown lease state %d", int32(s))
	}
	return nil
}

// MarshalJSON encodes the state as its lower-snake-case name
func (s LeaseState) MarshalJSON() ([]byte, error) {
	name, ok := leaseStateNames[s]
	if !ok {
		return nil, ErrInvalidLeaseState.Wrapf("unknown lease state %d", int32(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a lower-snake-case state name. Unknown names are an
// error, never coerced to the zero value.
func (s *LeaseState) UnmarshalJSON(bz []byte) error {
	var name string
	if err := json.Unmarshal(bz, &name); err != nil {
		return err
	}
	v, ok := leaseStateValues[name]
	if !ok {
		return ErrInvalidLeaseState.Wrapf("unknown lease state %q", name)
	}
	*s = v
	return nil
}

// LeaseClosedReason records why a lease reached Closed.
type LeaseClosedReason int32

const (
	LeaseClosedUnspecified LeaseClosedReason = iota
	LeaseClosedOwner
	LeaseClosedDecommission
	LeaseClosedManifestTimeout
	LeaseClosedInsufficientFunds
	LeaseClosedUnstable
)

var leaseClosedReasonNames = map[LeaseClosedReason]string{
	LeaseClosedUnspecified:       "unspecified",
	LeaseClosedOwner:             "lease_closed_owner",
	LeaseClosedDecommission:      "decommission",
	LeaseClosedManifestTimeout:   "manifest_timeout",
	LeaseClosedInsufficientFunds: "insufficient_funds",
	LeaseClosedUnstable:          "unstable",
}

var leaseClosedReasonValues = map[string]LeaseClosedReason{
	"unspecified":        LeaseClosedUnspecified,
	"lease_closed_owner": LeaseClosedOwner,
	"decommission":       LeaseClosedDecommission,
	"manifest_timeout":   LeaseClosedManifestTimeout,
	"insufficient_funds": LeaseClosedInsufficientFunds,
	"unstable":           LeaseClosedUnstable,
}

// String returns the lower-snake-case name of the reason
func (r LeaseClosedReason) String() string {
	if name, ok := leaseClosedReasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int32(r))
}

// Validate rejects out-of-range reasons
func (r LeaseClosedReason) Validate() error {
	if _, ok := leaseClosedReasonNames[r]; !ok {
		return ErrInvalidLeaseState.Wrapf("unknown lease closed reason %d", int32(r))
	}
	return nil
}

// MarshalJSON encodes the reason as its lower-snake-case name
func (r LeaseClosedReason) MarshalJSON() ([]byte, error) {
	name, ok := leaseClosedReasonNames[r]
	if !ok {
		return nil, ErrInvalidLeaseState.Wrapf("unknown lease closed reason %d", int32(r))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a lower-snake-case reason name, erroring on unknowns
func (r *LeaseClosedReason) UnmarshalJSON(bz []byte) error {
	var name string
	if err := json.Unmarshal(bz, &name); err != nil {
		return err
	}
	v, ok := leaseClosedReasonValues[name]
	if !ok {
		return ErrInvalidLeaseState.Wrapf("unknown lease closed reason %q", name)
	}
	*r = v
	return nil
}

// Lease is an active compute-resource rental formed from an accepted bid.
// Mutated only by the lease state machine. Terminal at Closed.
type Lease struct {
	ID        LeaseID           `json:"id"`
	State     LeaseState        `json:"state"`
	Price     sdk.Coin          `json:"price"`
	CreatedAt int64             `json:"created_at,string"`
	// InsufficientAt is when the lease entered InsufficientFunds; the
	// EndBlocker closes the lease once the top-up grace window elapses.
	InsufficientAt int64             `json:"insufficient_at,string,omitempty"`
	ClosedOn       int64             `json:"closed_on,string"`
	Reason         LeaseClosedReason `json:"reason"`
}

// Validate checks the structural invariants of a lease:
// closed_on is set iff state is Closed, and only closed leases carry a
// populated close reason.
func (l Lease) Validate() error {
	if err := l.ID.Validate(); err != nil {
		return err
	}
	if err := l.State.Validate(); err != nil {
		return err
	}
	if err := l.Reason.Validate(); err != nil {
		return err
	}
	if err := l.Price.Validate(); err != nil {
		return ErrInvalidAmount.Wrapf("lease price: %v", err)
	}

	if l.State == LeaseStateClosed {
		if l.ClosedOn == 0 {
			return ErrInvalidLeaseState.Wrap("closed lease must have closed_on set")
		}
	} else {
		if l.ClosedOn != 0 {
			return ErrInvalidLeaseState.Wrap("open lease cannot have closed_on set")
		}
		if l.Reason != LeaseClosedUnspecified {
			return ErrInvalidLeaseState.Wrap("open lease cannot have a close reason")
		}
		if l.InsufficientAt != 0 && l.State != LeaseStateInsufficientFunds {
			return ErrInvalidLeaseState.Wrap("insufficient_at requires the insufficient_funds state")
		}
	}
	return nil
}

// LeaseFilters selects leases on the read path. Zero-valued fields match
// everything; State filters by name and must parse if non-empty.
type LeaseFilters struct {
	Owner    string `json:"owner,omitempty"`
	DSeq     uint64 `json:"dseq,string,omitempty"`
	GSeq     uint32 `json:"gseq,omitempty"`
	OSeq     uint32 `json:"oseq,omitempty"`
	Provider string `json:"provider,omitempty"`
	State    string `json:"state,omitempty"`
}

// Accept reports whether the lease matches the filter set
func (f LeaseFilters) Accept(l Lease) bool {
	if f.Owner != "" && f.Owner != l.ID.Owner {
		return false
	}
	if f.DSeq != 0 && f.DSeq != l.ID.DSeq {
		return false
	}
	if f.GSeq != 0 && f.GSeq != l.ID.GSeq {
		return false
	}
	if f.OSeq != 0 && f.OSeq != l.ID.OSeq {
		return false
	}
	if f.Provider != "" && f.Provider != l.ID.Provider {
		return false
	}
	if f.State != "" {
		state, ok := leaseStateValues[f.State]
		if !ok || state != l.State {
			return false
		}
	}
	return true
}

// Validate rejects a filter whose state name is unknown
func (f LeaseFilters) Validate() error {
	if f.State != "" {
		if _, ok := leaseStateValues[f.State]; !ok {
			return ErrInvalidLeaseState.Wrapf("unknown lease state filter %q", f.State)
		}
	}
	return nil
}
