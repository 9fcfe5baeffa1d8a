package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"cosmossdk.io/math"
)

// UsageRecord is a provider-signed, time-bounded claim of resource
// consumption. Immutable once accepted; AcknowledgedAt is the only field that
// may be set afterwards, by the buyer's advisory countersignature.
type UsageRecord struct {
	UsageID     string   `json:"usage_id"`
	OrderID     OrderID  `json:"order_id"`
	LeaseID     LeaseID  `json:"lease_id"`
	UsageUnits  uint64   `json:"usage_units,string"`
	UsageType   string   `json:"usage_type"`
	PeriodStart int64    `json:"period_start,string"`
	PeriodEnd   int64    `json:"period_end,string"`
	UnitPrice   math.Int `json:"unit_price"`
	TotalCost   math.Int `json:"total_cost"`
	Signature   []byte   `json:"signature"`

	RecordedAt     int64 `json:"recorded_at,string"`
	AcknowledgedAt int64 `json:"acknowledged_at,string,omitempty"`

	// SettlementID is set once the record has been folded into a settlement.
	SettlementID string `json:"settlement_id,omitempty"`
}

// Validate checks the structural invariants of a usage record
func (r UsageRecord) Validate() error {
	if r.UsageID == "" {
		return ErrInvalidID.Wrap("usage id cannot be empty")
	}
	if err := r.OrderID.Validate(); err != nil {
		return err
	}
	if err := r.LeaseID.Validate(); err != nil {
		return err
	}
	if !r.LeaseID.OrderID().Equals(r.OrderID) {
		return ErrInvalidID.Wrap("usage record lease does not belong to its order")
	}
	if r.UsageType == "" {
		return ErrValidationFailed.Wrap("usage type cannot be empty")
	}
	if r.PeriodStart >= r.PeriodEnd {
		return ErrInvalidPeriod.Wrapf("period start %d must precede end %d", r.PeriodStart, r.PeriodEnd)
	}
	if r.UnitPrice.IsNil() || r.UnitPrice.IsNegative() {
		return ErrInvalidAmount.Wrap("unit price must be non-negative")
	}
	if r.TotalCost.IsNil() || r.TotalCost.IsNegative() {
		return ErrInvalidAmount.Wrap("total cost must be non-negative")
	}
	if len(r.Signature) == 0 {
		return ErrUnauthorized.Wrap("usage record must be signed")
	}
	return nil
}

// Settled reports whether the record has been included in a settlement
func (r UsageRecord) Settled() bool {
	return r.SettlementID != ""
}

// Overlaps reports whether two records bill the same usage type over
// intersecting half-open intervals [start, end). Different meters may cover
// the same period: a cpu record never conflicts with a memory record.
func (r UsageRecord) Overlaps(other UsageRecord) bool {
	return r.UsageType == other.UsageType &&
		r.PeriodStart < other.PeriodEnd && other.PeriodStart < r.PeriodEnd
}

// SameBilling reports whether a resubmission carries byte-identical billing
// fields, which makes it an idempotent no-op rather than a conflict.
func (r UsageRecord) SameBilling(other UsageRecord) bool {
	return r.OrderID.Equals(other.OrderID) &&
		r.LeaseID == other.LeaseID &&
		r.UsageUnits == other.UsageUnits &&
		r.UsageType == other.UsageType &&
		r.PeriodStart == other.PeriodStart &&
		r.PeriodEnd == other.PeriodEnd &&
		r.UnitPrice.Equal(other.UnitPrice) &&
		bytes.Equal(r.Signature, other.Signature)
}

// UsageSignBytes is the canonical byte encoding of a usage record that the
// provider signs. Every field that affects billing is bound; the digest is
// what gets signed so signatures stay a fixed size.
func UsageSignBytes(orderID OrderID, leaseID LeaseID, usageUnits uint64, usageType string, periodStart, periodEnd int64, unitPrice math.Int) []byte {
	buf := append([]byte("market/usage-sign/v1/"), orderID.Bytes()...)
	buf = append(buf, leaseID.Bytes()...)

	units := make([]byte, 8)
	binary.BigEndian.PutUint64(units, usageUnits)
	buf = append(buf, units...)

	buf = append(buf, 0x00)
	buf = append(buf, []byte(usageType)...)
	buf = append(buf, 0x00)

	ts := make([]byte, 16)
	binary.BigEndian.PutUint64(ts[:8], uint64(periodStart))
	binary.BigEndian.PutUint64(ts[8:], uint64(periodEnd))
	buf = append(buf, ts...)

	buf = append(buf, []byte(unitPrice.String())...)

	sum := sha256.Sum256(buf)
	return sum[:]
}

// AckSignBytes is the canonical digest the buyer countersigns when
// acknowledging a usage record.
func AckSignBytes(usageID string, sender string) []byte {
	buf := []byte("market/usage-ack/v1/" + usageID + "/" + sender)
	sum := sha256.Sum256(buf)
	return sum[:]
}

// TotalCostFor computes usage cost as units x unit price
func TotalCostFor(usageUnits uint64, unitPrice math.Int) math.Int {
	return unitPrice.Mul(math.NewIntFromUint64(usageUnits))
}
