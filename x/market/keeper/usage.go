package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// RecordUsage validates and stores a provider-signed usage record. Passing
// an already-accepted record with identical billing fields is an idempotent
// no-op that returns the stored record.
//
// Validation order: lease active, order not finalized, billing period sane
// and non-overlapping, provider signature verified against the registered
// key.
func (k Keeper) RecordUsage(ctx context.Context, orderID types.OrderID, leaseID types.LeaseID, usageUnits uint64, usageType string, periodStart, periodEnd int64, unitPrice math.Int, signature []byte) (*types.UsageRecord, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	lease, err := k.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease.State != types.LeaseStateActive {
		return nil, types.ErrLeaseNotActive.Wrapf("lease %s is %s", leaseID, lease.State)
	}

	if k.IsOrderFinalized(ctx, orderID) {
		return nil, types.ErrOrderAlreadyFinalized.Wrapf("order %s", orderID)
	}

	if periodStart >= periodEnd {
		return nil, types.ErrInvalidPeriod.Wrapf("period start %d must precede end %d", periodStart, periodEnd)
	}
	if unitPrice.IsNil() || unitPrice.IsNegative() {
		return nil, types.ErrInvalidAmount.Wrap("unit price must be non-negative")
	}

	usageID := types.UsageIDFor(orderID, periodStart, periodEnd, usageType)
	record := types.UsageRecord{
		UsageID:     usageID,
		OrderID:     orderID,
		LeaseID:     leaseID,
		UsageUnits:  usageUnits,
		UsageType:   usageType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		UnitPrice:   unitPrice,
		TotalCost:   types.TotalCostFor(usageUnits, unitPrice),
		Signature:   signature,
		RecordedAt:  sdkCtx.BlockTime().Unix(),
	}

	if existing, err := k.GetUsageRecord(ctx, usageID); err == nil {
		if existing.SameBilling(record) {
			return existing, nil
		}
		return nil, types.ErrOverlap.Wrapf("period [%d,%d) of %s already recorded with different billing fields", periodStart, periodEnd, usageType)
	}

	var overlapping *types.UsageRecord
	err = k.IterateOrderUsageRecords(ctx, orderID, func(other types.UsageRecord) bool {
		if record.Overlaps(other) {
			overlapping = &other
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if overlapping != nil {
		return nil, types.ErrOverlap.Wrapf("period [%d,%d) overlaps accepted record %s [%d,%d)",
			periodStart, periodEnd, overlapping.UsageID, overlapping.PeriodStart, overlapping.PeriodEnd)
	}

	pubKey, found := k.providerKeeper.GetProviderPubKey(ctx, leaseID.Provider)
	if !found {
		return nil, types.ErrUnauthorized.Wrapf("provider %s has no registered key", leaseID.Provider)
	}
	signBytes := types.UsageSignBytes(orderID, leaseID, usageUnits, usageType, periodStart, periodEnd, unitPrice)
	if !pubKey.VerifySignature(signBytes, signature) {
		return nil, types.ErrUnauthorized.Wrapf("usage record signature does not verify for provider %s", leaseID.Provider)
	}

	if err := k.SetUsageRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("RecordUsage: %w", err)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeUsageRecorded,
			sdk.NewAttribute(types.AttributeKeyUsageID, usageID),
			sdk.NewAttribute(types.AttributeKeyOrderID, orderID.String()),
			sdk.NewAttribute(types.AttributeKeyProvider, leaseID.Provider),
			sdk.NewAttribute(types.AttributeKeyUsageType, usageType),
			sdk.NewAttribute(types.AttributeKeyAmount, record.TotalCost.String()),
		),
	)

	return &record, nil
}

// AcknowledgeUsage records the buyer's advisory countersignature. Only the
// order owner may acknowledge, and the acknowledgement never gates
// settlement. The signature is checked against the owner's account key when
// one is on record.
func (k Keeper) AcknowledgeUsage(ctx context.Context, sender sdk.AccAddress, usageID string, signature []byte) (int64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	record, err := k.GetUsageRecord(ctx, usageID)
	if err != nil {
		return 0, err
	}
	if record.OrderID.Owner != sender.String() {
		return 0, types.ErrUnauthorized.Wrapf("only the order owner may acknowledge usage, got %s", sender)
	}
	if record.AcknowledgedAt != 0 {
		return record.AcknowledgedAt, nil
	}

	if acct := k.accountKeeper.GetAccount(ctx, sender); acct != nil {
		if pubKey := acct.GetPubKey(); pubKey != nil {
			if !pubKey.VerifySignature(types.AckSignBytes(usageID, sender.String()), signature) {
				return 0, types.ErrUnauthorized.Wrap("acknowledgement signature does not verify")
			}
		}
	}

	record.AcknowledgedAt = sdkCtx.BlockTime().Unix()
	if err := k.SetUsageRecord(ctx, *record); err != nil {
		return 0, fmt.Errorf("AcknowledgeUsage: %w", err)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeUsageAcknowledged,
			sdk.NewAttribute(types.AttributeKeyUsageID, usageID),
			sdk.NewAttribute(types.AttributeKeySender, sender.String()),
		),
	)

	return record.AcknowledgedAt, nil
}

// GetUsageRecord retrieves a usage record by id
func (k Keeper) GetUsageRecord(ctx context.Context, usageID string) (*types.UsageRecord, error) {
	var record types.UsageRecord
	found, err := k.getJSON(ctx, types.UsageRecordKey(usageID), &record)
	if err != nil {
		return nil, fmt.Errorf("GetUsageRecord: %w", err)
	}
	if !found {
		return nil, types.ErrUsageNotFound.Wrapf("usage record %s", usageID)
	}
	return &record, nil
}

// SetUsageRecord stores a usage record and maintains the order index
func (k Keeper) SetUsageRecord(ctx context.Context, record types.UsageRecord) error {
	if err := k.setJSON(ctx, types.UsageRecordKey(record.UsageID), record); err != nil {
		return err
	}
	k.getStore(ctx).Set(types.UsageByOrderKey(record.OrderID, record.UsageID), []byte{})
	return nil
}

// IterateUsageRecords walks every usage record in store order
func (k Keeper) IterateUsageRecords(ctx context.Context, cb func(record types.UsageRecord) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.UsageRecordKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var record types.UsageRecord
		if err := jsonUnmarshal(iterator.Value(), &record); err != nil {
			return fmt.Errorf("IterateUsageRecords: %w", err)
		}
		if cb(record) {
			break
		}
	}
	return nil
}

// IterateOrderUsageRecords walks the usage records of one order
func (k Keeper) IterateOrderUsageRecords(ctx context.Context, orderID types.OrderID, cb func(record types.UsageRecord) (stop bool)) error {
	store := k.getStore(ctx)
	prefix := types.UsageByOrderPrefix(orderID)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		usageID := string(iterator.Key()[len(prefix):])
		record, err := k.GetUsageRecord(ctx, usageID)
		if err != nil {
			return fmt.Errorf("IterateOrderUsageRecords: dangling index entry %s: %w", usageID, err)
		}
		if cb(*record) {
			break
		}
	}
	return nil
}

// OrderUsageRecords returns the usage records of an order, optionally only
// the not-yet-settled ones.
func (k Keeper) OrderUsageRecords(ctx context.Context, orderID types.OrderID, unsettledOnly bool) ([]types.UsageRecord, error) {
	var records []types.UsageRecord
	err := k.IterateOrderUsageRecords(ctx, orderID, func(record types.UsageRecord) bool {
		if unsettledOnly && record.Settled() {
			return false
		}
		records = append(records, record)
		return false
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
