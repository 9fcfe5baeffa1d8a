package types

import (
	"encoding/binary"
)

const (
	// ModuleName defines the module name
	ModuleName = "market"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey is the message route for market
	RouterKey = ModuleName

	// QuerierRoute defines the module's query routing key
	QuerierRoute = ModuleName
)

// Store key prefixes. Composite keys are built from these with big-endian
// integer encoding so range iteration preserves numeric order.
var (
	ParamsKey = []byte{0x01}

	EscrowKeyPrefix              = []byte{0x10}
	EscrowExpiryKeyPrefix        = []byte{0x11}
	EscrowExpiryReverseKeyPrefix = []byte{0x12}

	LeaseKeyPrefix        = []byte{0x20}
	LeaseByOrderKeyPrefix = []byte{0x21}

	UsageRecordKeyPrefix  = []byte{0x30}
	UsageByOrderKeyPrefix = []byte{0x31}

	SettlementKeyPrefix        = []byte{0x40}
	SettlementByOrderKeyPrefix = []byte{0x41}
	NextSettlementSeqKey       = []byte{0x42}
	FinalizedOrderKeyPrefix    = []byte{0x43}

	RewardKeyPrefix = []byte{0x50}
)

// EscrowKey returns the store key for an escrow record
func EscrowKey(escrowID string) []byte {
	return append(EscrowKeyPrefix, []byte(escrowID)...)
}

// EscrowExpiryKey returns the time-ordered expiry index key for an escrow.
// Layout: prefix | unix seconds (8 bytes, big-endian) | escrow id.
func EscrowExpiryKey(expiresAt int64, escrowID string) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(expiresAt))
	key := append([]byte{}, EscrowExpiryKeyPrefix...)
	key = append(key, bz...)
	return append(key, []byte(escrowID)...)
}

// EscrowExpiryReverseKey maps an escrow id back to its expiry index entry
// for O(1) deletion.
func EscrowExpiryReverseKey(escrowID string) []byte {
	return append(EscrowExpiryReverseKeyPrefix, []byte(escrowID)...)
}

// LeaseKey returns the store key for a lease
func LeaseKey(id LeaseID) []byte {
	return append(LeaseKeyPrefix, id.Bytes()...)
}

// LeaseByOrderKey indexes the lease bound to an order
func LeaseByOrderKey(id OrderID) []byte {
	return append(LeaseByOrderKeyPrefix, id.Bytes()...)
}

// UsageRecordKey returns the store key for a usage record
func UsageRecordKey(usageID string) []byte {
	return append(UsageRecordKeyPrefix, []byte(usageID)...)
}

// UsageByOrderKey indexes a usage record under its order
func UsageByOrderKey(id OrderID, usageID string) []byte {
	key := append([]byte{}, UsageByOrderKeyPrefix...)
	key = append(key, id.Bytes()...)
	return append(key, []byte(usageID)...)
}

// UsageByOrderPrefix returns the iteration prefix for an order's usage records
func UsageByOrderPrefix(id OrderID) []byte {
	return append(append([]byte{}, UsageByOrderKeyPrefix...), id.Bytes()...)
}

// SettlementKey returns the store key for a settlement
func SettlementKey(settlementID string) []byte {
	return append(SettlementKeyPrefix, []byte(settlementID)...)
}

// SettlementByOrderKey indexes a settlement under its order in sequence order
func SettlementByOrderKey(id OrderID, seq uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, seq)
	key := append([]byte{}, SettlementByOrderKeyPrefix...)
	key = append(key, id.Bytes()...)
	return append(key, bz...)
}

// SettlementByOrderPrefix returns the iteration prefix for an order's settlements
func SettlementByOrderPrefix(id OrderID) []byte {
	return append(append([]byte{}, SettlementByOrderKeyPrefix...), id.Bytes()...)
}

// FinalizedOrderKey marks an order as terminally settled
func FinalizedOrderKey(id OrderID) []byte {
	return append(FinalizedOrderKeyPrefix, id.Bytes()...)
}

// RewardKey returns the store key for a (recipient, source) reward accumulator
func RewardKey(recipient, source string) []byte {
	key := append([]byte{}, RewardKeyPrefix...)
	key = append(key, []byte(recipient)...)
	key = append(key, 0x00)
	return append(key, []byte(source)...)
}
