package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// OrderID uniquely identifies a deployment order. Immutable once created.
type OrderID struct {
	Owner string `json:"owner"`
	DSeq  uint64 `json:"dseq,string"`
	GSeq  uint32 `json:"gseq"`
	OSeq  uint32 `json:"oseq"`
}

// BidID identifies a provider's bid against an order. BSeq disambiguates
// repeated bids by the same provider.
type BidID struct {
	Owner    string `json:"owner"`
	DSeq     uint64 `json:"dseq,string"`
	GSeq     uint32 `json:"gseq"`
	OSeq     uint32 `json:"oseq"`
	Provider string `json:"provider"`
	BSeq     uint32 `json:"bseq"`
}

// LeaseID identifies the lease formed from an accepted bid, 1:1 with the
// winning BidID.
type LeaseID struct {
	Owner    string `json:"owner"`
	DSeq     uint64 `json:"dseq,string"`
	GSeq     uint32 `json:"gseq"`
	OSeq     uint32 `json:"oseq"`
	Provider string `json:"provider"`
	BSeq     uint32 `json:"bseq"`
}

// Validate checks the OrderID component fields
func (id OrderID) Validate() error {
	if _, err := sdk.AccAddressFromBech32(id.Owner); err != nil {
		return ErrInvalidID.Wrapf("order owner: %v", err)
	}
	if id.DSeq == 0 {
		return ErrInvalidID.Wrap("order dseq cannot be zero")
	}
	return nil
}

// String renders the order id as owner/dseq/gseq/oseq
func (id OrderID) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", id.Owner, id.DSeq, id.GSeq, id.OSeq)
}

// Equals reports whether two order ids reference the same order
func (id OrderID) Equals(other OrderID) bool {
	return id == other
}

// Bytes returns the canonical store-key encoding of the order id:
// length-prefixed owner followed by big-endian dseq, gseq, oseq.
func (id OrderID) Bytes() []byte {
	owner := []byte(id.Owner)
	buf := make([]byte, 0, 2+len(owner)+16)
	lp := make([]byte, 2)
	binary.BigEndian.PutUint16(lp, uint16(len(owner)))
	buf = append(buf, lp...)
	buf = append(buf, owner...)

	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, id.DSeq)
	buf = append(buf, seq...)

	g := make([]byte, 4)
	binary.BigEndian.PutUint32(g, id.GSeq)
	buf = append(buf, g...)

	o := make([]byte, 4)
	binary.BigEndian.PutUint32(o, id.OSeq)
	return append(buf, o...)
}

// Validate checks the BidID component fields
func (id BidID) Validate() error {
	if err := id.OrderID().Validate(); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(id.Provider); err != nil {
		return ErrInvalidID.Wrapf("bid provider: %v", err)
	}
	return nil
}

// OrderID returns the order portion of the bid id
func (id BidID) OrderID() OrderID {
	return OrderID{Owner: id.Owner, DSeq: id.DSeq, GSeq: id.GSeq, OSeq: id.OSeq}
}

// LeaseID returns the lease id formed if this bid wins
func (id BidID) LeaseID() LeaseID {
	return LeaseID(id)
}

// String renders the bid id as owner/dseq/gseq/oseq/provider/bseq
func (id BidID) String() string {
	return fmt.Sprintf("%s/%d/%d/%d/%s/%d", id.Owner, id.DSeq, id.GSeq, id.OSeq, id.Provider, id.BSeq)
}

// Validate checks the LeaseID component fields
func (id LeaseID) Validate() error {
	return BidID(id).Validate()
}

// OrderID returns the order portion of the lease id
func (id LeaseID) OrderID() OrderID {
	return OrderID{Owner: id.Owner, DSeq: id.DSeq, GSeq: id.GSeq, OSeq: id.OSeq}
}

// BidID returns the bid this lease was formed from
func (id LeaseID) BidID() BidID {
	return BidID(id)
}

// String renders the lease id as owner/dseq/gseq/oseq/provider/bseq
func (id LeaseID) String() string {
	return BidID(id).String()
}

// Bytes returns the canonical store-key encoding of the lease id
func (id LeaseID) Bytes() []byte {
	buf := id.OrderID().Bytes()

	provider := []byte(id.Provider)
	lp := make([]byte, 2)
	binary.BigEndian.PutUint16(lp, uint16(len(provider)))
	buf = append(buf, lp...)
	buf = append(buf, provider...)

	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, id.BSeq)
	return append(buf, b...)
}

// EscrowIDForOrder derives the escrow id for an order. The derivation is
// deterministic so at most one escrow can ever exist per order.
func EscrowIDForOrder(id OrderID) string {
	sum := sha256.Sum256(append([]byte("market/escrow/"), id.Bytes()...))
	return hex.EncodeToString(sum[:])
}

// UsageIDFor derives the usage record id from the fields that define the
// billed interval. Resubmission of the same interval maps to the same id,
// which is what makes RecordUsage idempotent.
func UsageIDFor(id OrderID, periodStart, periodEnd int64, usageType string) string {
	buf := append([]byte("market/usage/"), id.Bytes()...)

	ts := make([]byte, 16)
	binary.BigEndian.PutUint64(ts[:8], uint64(periodStart))
	binary.BigEndian.PutUint64(ts[8:], uint64(periodEnd))
	buf = append(buf, ts...)
	buf = append(buf, []byte(usageType)...)

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// SettlementIDFor derives a settlement id from the order and the module-wide
// settlement sequence number assigned to it.
func SettlementIDFor(id OrderID, seq uint64) string {
	buf := append([]byte("market/settlement/"), id.Bytes()...)
	sb := make([]byte, 8)
	binary.BigEndian.PutUint64(sb, seq)
	buf = append(buf, sb...)

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
