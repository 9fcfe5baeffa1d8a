package keeper

import (
	"context"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// CreateLease records a lease formed from an accepted bid. Leases start in
// the Invalid state and activate when the escrow binds to them. Called by the
// match path, not a message handler.
func (k Keeper) CreateLease(ctx context.Context, id types.LeaseID, price sdk.Coin) (*types.Lease, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := price.Validate(); err != nil {
		return nil, types.ErrInvalidAmount.Wrapf("lease price: %v", err)
	}
	if k.getStore(ctx).Has(types.LeaseKey(id)) {
		return nil, types.ErrDuplicateLease.Wrapf("lease %s", id)
	}
	if k.getStore(ctx).Has(types.LeaseByOrderKey(id.OrderID())) {
		return nil, types.ErrDuplicateLease.Wrapf("order %s already has a lease", id.OrderID())
	}

	lease := types.Lease{
		ID:        id,
		State:     types.LeaseStateInvalid,
		Price:     price,
		CreatedAt: sdkCtx.BlockTime().Unix(),
	}

	if err := k.SetLease(ctx, lease); err != nil {
		return nil, fmt.Errorf("CreateLease: %w", err)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLeaseCreated,
			sdk.NewAttribute(types.AttributeKeyLeaseID, id.String()),
			sdk.NewAttribute(types.AttributeKeyPrice, price.String()),
		),
	)

	return &lease, nil
}

// activateLease transitions Invalid -> Active on escrow activation
func (k Keeper) activateLease(ctx context.Context, id types.LeaseID) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	lease, err := k.GetLease(ctx, id)
	if err != nil {
		return err
	}
	if lease.State != types.LeaseStateInvalid {
		return types.ErrInvalidLeaseState.Wrapf("lease %s cannot activate from state %s", id, lease.State)
	}

	lease.State = types.LeaseStateActive
	if err := k.SetLease(ctx, *lease); err != nil {
		return fmt.Errorf("activateLease: %w", err)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLeaseActivated,
			sdk.NewAttribute(types.AttributeKeyLeaseID, id.String()),
		),
	)

	return nil
}

// markLeaseInsufficientFunds flips an active lease to InsufficientFunds and
// stamps the start of the top-up grace window. No-op on any other state: the
// caller is already surfacing the balance error.
func (k Keeper) markLeaseInsufficientFunds(ctx context.Context, id types.LeaseID) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	lease, err := k.GetLease(ctx, id)
	if err != nil || lease.State != types.LeaseStateActive {
		return
	}

	lease.State = types.LeaseStateInsufficientFunds
	lease.InsufficientAt = sdkCtx.BlockTime().Unix()
	if err := k.SetLease(ctx, *lease); err != nil {
		k.Logger(ctx).Error("failed to mark lease insufficient funds", "lease", id.String(), "error", err)
		return
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLeaseInsufficientFunds,
			sdk.NewAttribute(types.AttributeKeyLeaseID, id.String()),
		),
	)
}

// CloseLease terminates a lease. Idempotent: closing an already-closed lease
// returns the stored lease unchanged, preserving the original reason.
func (k Keeper) CloseLease(ctx context.Context, id types.LeaseID, reason types.LeaseClosedReason) (*types.Lease, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	lease, err := k.GetLease(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease.State == types.LeaseStateClosed {
		return lease, nil
	}

	lease.State = types.LeaseStateClosed
	lease.InsufficientAt = 0
	lease.ClosedOn = sdkCtx.BlockTime().Unix()
	lease.Reason = reason

	if err := k.SetLease(ctx, *lease); err != nil {
		return nil, fmt.Errorf("CloseLease: %w", err)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLeaseClosed,
			sdk.NewAttribute(types.AttributeKeyLeaseID, id.String()),
			sdk.NewAttribute(types.AttributeKeyReason, reason.String()),
		),
	)

	return lease, nil
}

// closeLeaseFromEscrow closes the lease bound to a terminating escrow.
// Escrow teardown must not fail because the lease is already gone.
func (k Keeper) closeLeaseFromEscrow(ctx context.Context, id types.LeaseID, reason types.LeaseClosedReason) {
	if id.Validate() != nil {
		return
	}
	if _, err := k.CloseLease(ctx, id, reason); err != nil {
		k.Logger(ctx).Error("failed to close lease for terminated escrow", "lease", id.String(), "error", err)
	}
}

// GetLease retrieves a lease by id
func (k Keeper) GetLease(ctx context.Context, id types.LeaseID) (*types.Lease, error) {
	var lease types.Lease
	found, err := k.getJSON(ctx, types.LeaseKey(id), &lease)
	if err != nil {
		return nil, fmt.Errorf("GetLease: %w", err)
	}
	if !found {
		return nil, types.ErrLeaseNotFound.Wrapf("lease %s", id)
	}
	return &lease, nil
}

// GetLeaseForOrder retrieves the lease bound to an order via the order index
func (k Keeper) GetLeaseForOrder(ctx context.Context, orderID types.OrderID) (*types.Lease, error) {
	bz := k.getStore(ctx).Get(types.LeaseByOrderKey(orderID))
	if bz == nil {
		return nil, types.ErrLeaseNotFound.Wrapf("order %s has no lease", orderID)
	}
	var id types.LeaseID
	if err := jsonUnmarshal(bz, &id); err != nil {
		return nil, fmt.Errorf("GetLeaseForOrder: %w", err)
	}
	return k.GetLease(ctx, id)
}

// SetLease stores a lease and maintains the order index
func (k Keeper) SetLease(ctx context.Context, lease types.Lease) error {
	if err := k.setJSON(ctx, types.LeaseKey(lease.ID), lease); err != nil {
		return err
	}
	return k.setJSON(ctx, types.LeaseByOrderKey(lease.ID.OrderID()), lease.ID)
}

// IterateLeases walks every lease in store order
func (k Keeper) IterateLeases(ctx context.Context, cb func(lease types.Lease) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.LeaseKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var lease types.Lease
		if err := jsonUnmarshal(iterator.Value(), &lease); err != nil {
			return fmt.Errorf("IterateLeases: %w", err)
		}
		if cb(lease) {
			break
		}
	}
	return nil
}

// LeasesWithFilters returns all leases matching the filter set
func (k Keeper) LeasesWithFilters(ctx context.Context, filters types.LeaseFilters) ([]types.Lease, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	var leases []types.Lease
	err := k.IterateLeases(ctx, func(lease types.Lease) bool {
		if filters.Accept(lease) {
			leases = append(leases, lease)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return leases, nil
}
