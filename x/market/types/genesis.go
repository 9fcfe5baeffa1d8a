package types

import (
	"fmt"
)

// GenesisState is the complete exported state of the market module
type GenesisState struct {
	Params          Params              `json:"params"`
	Escrows         []Escrow            `json:"escrows"`
	Leases          []Lease             `json:"leases"`
	UsageRecords    []UsageRecord       `json:"usage_records"`
	Settlements     []Settlement        `json:"settlements"`
	Rewards         []RewardAccumulator `json:"rewards"`
	FinalizedOrders []OrderID           `json:"finalized_orders"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:          DefaultParams(),
		Escrows:         []Escrow{},
		Leases:          []Lease{},
		UsageRecords:    []UsageRecord{},
		Settlements:     []Settlement{},
		Rewards:         []RewardAccumulator{},
		FinalizedOrders: []OrderID{},
	}
}

// Validate performs basic genesis state validation returning an error upon
// any failure.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	escrowsByOrder := make(map[OrderID]string, len(gs.Escrows))
	for i, escrow := range gs.Escrows {
		if err := escrow.Validate(); err != nil {
			return fmt.Errorf("escrow %d (%s): %w", i, escrow.EscrowID, err)
		}
		if escrow.EscrowID != EscrowIDForOrder(escrow.OrderID) {
			return fmt.Errorf("escrow %d: id %s is not derived from its order", i, escrow.EscrowID)
		}
		if _, ok := escrowsByOrder[escrow.OrderID]; ok {
			return fmt.Errorf("escrow %d: duplicate escrow for order %s", i, escrow.OrderID)
		}
		escrowsByOrder[escrow.OrderID] = escrow.EscrowID
	}

	leasesByOrder := make(map[OrderID]struct{}, len(gs.Leases))
	for i, lease := range gs.Leases {
		if err := lease.Validate(); err != nil {
			return fmt.Errorf("lease %d (%s): %w", i, lease.ID, err)
		}
		orderID := lease.ID.OrderID()
		if _, ok := leasesByOrder[orderID]; ok {
			return fmt.Errorf("lease %d: duplicate lease for order %s", i, orderID)
		}
		leasesByOrder[orderID] = struct{}{}
	}

	usageByID := make(map[string]UsageRecord, len(gs.UsageRecords))
	for i, record := range gs.UsageRecords {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("usage record %d (%s): %w", i, record.UsageID, err)
		}
		if _, ok := usageByID[record.UsageID]; ok {
			return fmt.Errorf("usage record %d: duplicate id %s", i, record.UsageID)
		}
		for _, other := range gs.UsageRecords[:i] {
			if other.OrderID.Equals(record.OrderID) && other.Overlaps(record) {
				return fmt.Errorf("usage record %d (%s): overlaps record %s", i, record.UsageID, other.UsageID)
			}
		}
		usageByID[record.UsageID] = record
	}

	settledRecords := make(map[string]string, len(gs.UsageRecords))
	for i, settlement := range gs.Settlements {
		if err := settlement.Validate(); err != nil {
			return fmt.Errorf("settlement %d (%s): %w", i, settlement.SettlementID, err)
		}
		for _, usageID := range settlement.UsageRecordIDs {
			record, ok := usageByID[usageID]
			if !ok {
				return fmt.Errorf("settlement %d: unknown usage record %s", i, usageID)
			}
			if !record.OrderID.Equals(settlement.OrderID) {
				return fmt.Errorf("settlement %d: usage record %s belongs to a different order", i, usageID)
			}
			if record.SettlementID != settlement.SettlementID {
				return fmt.Errorf("settlement %d: usage record %s does not reference it back", i, usageID)
			}
			if prior, ok := settledRecords[usageID]; ok {
				return fmt.Errorf("settlement %d: usage record %s already settled by %s", i, usageID, prior)
			}
			settledRecords[usageID] = settlement.SettlementID
		}
	}

	// A record claiming to be settled must be claimed by exactly one settlement.
	for _, record := range gs.UsageRecords {
		if record.Settled() {
			if _, ok := settledRecords[record.UsageID]; !ok {
				return fmt.Errorf("usage record %s references missing settlement %s", record.UsageID, record.SettlementID)
			}
		}
	}

	rewardKeys := make(map[string]struct{}, len(gs.Rewards))
	for i, reward := range gs.Rewards {
		if err := reward.Validate(); err != nil {
			return fmt.Errorf("reward %d: %w", i, err)
		}
		key := reward.Recipient + "/" + reward.Source
		if _, ok := rewardKeys[key]; ok {
			return fmt.Errorf("reward %d: duplicate accumulator for %s", i, key)
		}
		rewardKeys[key] = struct{}{}
	}

	finalized := make(map[OrderID]struct{}, len(gs.FinalizedOrders))
	for i, orderID := range gs.FinalizedOrders {
		if err := orderID.Validate(); err != nil {
			return fmt.Errorf("finalized order %d: %w", i, err)
		}
		if _, ok := finalized[orderID]; ok {
			return fmt.Errorf("finalized order %d: duplicate order %s", i, orderID)
		}
		finalized[orderID] = struct{}{}
	}

	return nil
}
