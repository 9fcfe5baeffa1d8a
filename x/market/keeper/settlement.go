package keeper

import (
	"context"
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// SettleOrder folds accepted usage records of an order into a settlement and
// drives the matching escrow release. With no explicit record ids, every
// accepted, unsettled record of the order is settled. All-or-nothing: a
// failed release aborts the call without persisting the settlement (the
// insufficient-funds lease transition is the one deliberate side effect of a
// short balance).
func (k Keeper) SettleOrder(ctx context.Context, orderID types.OrderID, usageRecordIDs []string, isFinal bool) (*types.Settlement, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if k.IsOrderFinalized(ctx, orderID) {
		return nil, types.ErrOrderAlreadyFinalized.Wrapf("order %s", orderID)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("SettleOrder: get params: %w", err)
	}

	var records []types.UsageRecord
	if len(usageRecordIDs) == 0 {
		records, err = k.OrderUsageRecords(ctx, orderID, true)
		if err != nil {
			return nil, err
		}
	} else {
		for _, usageID := range usageRecordIDs {
			record, err := k.GetUsageRecord(ctx, usageID)
			if err != nil {
				return nil, err
			}
			if !record.OrderID.Equals(orderID) {
				return nil, types.ErrInvalidID.Wrapf("usage record %s belongs to order %s, not %s", usageID, record.OrderID, orderID)
			}
			if record.Settled() {
				return nil, types.ErrAlreadySettled.Wrapf("usage record %s already in settlement %s", usageID, record.SettlementID)
			}
			records = append(records, *record)
		}
	}

	if len(records) == 0 {
		return nil, types.ErrEmptySettlement.Wrapf("order %s has no unsettled usage records", orderID)
	}
	if params.MaxSettlementRecords > 0 && uint32(len(records)) > params.MaxSettlementRecords {
		return nil, types.ErrValidationFailed.Wrapf("settlement spans %d records, maximum is %d", len(records), params.MaxSettlementRecords)
	}

	totalAmount := math.ZeroInt()
	recordIDs := make([]string, 0, len(records))
	for _, record := range records {
		totalAmount = totalAmount.Add(record.TotalCost)
		recordIDs = append(recordIDs, record.UsageID)
	}

	var (
		providerShare = math.ZeroInt()
		platformFee   = math.ZeroInt()
	)
	if totalAmount.IsPositive() {
		escrowID := types.EscrowIDForOrder(orderID)
		providerShare, platformFee, _, err = k.ReleaseEscrow(ctx, escrowID, totalAmount, "settlement")
		if err != nil {
			return nil, err
		}
	}

	seq := k.nextSettlementSeq(ctx)
	now := sdkCtx.BlockTime().Unix()
	settlement := types.Settlement{
		SettlementID:   types.SettlementIDFor(orderID, seq),
		OrderID:        orderID,
		UsageRecordIDs: recordIDs,
		TotalAmount:    totalAmount,
		ProviderShare:  providerShare,
		PlatformFee:    platformFee,
		SettledAt:      now,
		IsFinal:        isFinal,
	}

	if err := k.SetSettlement(ctx, settlement, seq); err != nil {
		return nil, fmt.Errorf("SettleOrder: %w", err)
	}

	for i := range records {
		records[i].SettlementID = settlement.SettlementID
		if err := k.SetUsageRecord(ctx, records[i]); err != nil {
			return nil, fmt.Errorf("SettleOrder: mark record settled: %w", err)
		}
	}

	if isFinal {
		k.setOrderFinalized(ctx, orderID)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeOrderSettled,
			sdk.NewAttribute(types.AttributeKeySettlementID, settlement.SettlementID),
			sdk.NewAttribute(types.AttributeKeyOrderID, orderID.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, totalAmount.String()),
			sdk.NewAttribute(types.AttributeKeyProviderShare, providerShare.String()),
			sdk.NewAttribute(types.AttributeKeyPlatformFee, platformFee.String()),
			sdk.NewAttribute(types.AttributeKeyRecordCount, fmt.Sprintf("%d", len(recordIDs))),
		),
	)

	if isFinal {
		sdkCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeOrderFinalized,
				sdk.NewAttribute(types.AttributeKeyOrderID, orderID.String()),
			),
		)
	}

	return &settlement, nil
}

// GetSettlement retrieves a settlement by id
func (k Keeper) GetSettlement(ctx context.Context, settlementID string) (*types.Settlement, error) {
	var settlement types.Settlement
	found, err := k.getJSON(ctx, types.SettlementKey(settlementID), &settlement)
	if err != nil {
		return nil, fmt.Errorf("GetSettlement: %w", err)
	}
	if !found {
		return nil, types.ErrSettlementNotFound.Wrapf("settlement %s", settlementID)
	}
	return &settlement, nil
}

// SetSettlement stores a settlement and its by-order index entry
func (k Keeper) SetSettlement(ctx context.Context, settlement types.Settlement, seq uint64) error {
	if err := k.setJSON(ctx, types.SettlementKey(settlement.SettlementID), settlement); err != nil {
		return err
	}
	k.getStore(ctx).Set(types.SettlementByOrderKey(settlement.OrderID, seq), []byte(settlement.SettlementID))
	return nil
}

// IterateOrderSettlements walks an order's settlements in sequence order
func (k Keeper) IterateOrderSettlements(ctx context.Context, orderID types.OrderID, cb func(settlement types.Settlement) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.SettlementByOrderPrefix(orderID))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		settlement, err := k.GetSettlement(ctx, string(iterator.Value()))
		if err != nil {
			return fmt.Errorf("IterateOrderSettlements: dangling index entry: %w", err)
		}
		if cb(*settlement) {
			break
		}
	}
	return nil
}

// IterateSettlements walks every settlement in store order
func (k Keeper) IterateSettlements(ctx context.Context, cb func(settlement types.Settlement) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.SettlementKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var settlement types.Settlement
		if err := jsonUnmarshal(iterator.Value(), &settlement); err != nil {
			return fmt.Errorf("IterateSettlements: %w", err)
		}
		if cb(settlement) {
			break
		}
	}
	return nil
}

// IsOrderFinalized reports whether a terminal settlement exists for the order
func (k Keeper) IsOrderFinalized(ctx context.Context, orderID types.OrderID) bool {
	return k.getStore(ctx).Has(types.FinalizedOrderKey(orderID))
}

// setOrderFinalized stores the marker with the order id as its value so the
// marker set can be exported without decoding composite keys.
func (k Keeper) setOrderFinalized(ctx context.Context, orderID types.OrderID) {
	if err := k.setJSON(ctx, types.FinalizedOrderKey(orderID), orderID); err != nil {
		k.Logger(ctx).Error("failed to store finalized-order marker", "order", orderID.String(), "error", err)
	}
}

// iterateFinalizedOrders walks the finalized-order markers
func (k Keeper) iterateFinalizedOrders(ctx context.Context, cb func(orderID types.OrderID) (stop bool)) {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.FinalizedOrderKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var orderID types.OrderID
		if err := jsonUnmarshal(iterator.Value(), &orderID); err != nil {
			continue
		}
		if cb(orderID) {
			break
		}
	}
}

// nextSettlementSeq returns the next value of the module-wide settlement
// sequence, advancing it.
func (k Keeper) nextSettlementSeq(ctx context.Context) uint64 {
	store := k.getStore(ctx)

	seq := uint64(1)
	if bz := store.Get(types.NextSettlementSeqKey); bz != nil {
		seq = binary.BigEndian.Uint64(bz)
	}

	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, seq+1)
	store.Set(types.NextSettlementSeqKey, next)

	return seq
}
