package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// EndBlocker processes time-driven transitions: expired escrows are refunded
// and insufficient-funds leases past their top-up grace window are closed.
// Failures on individual records are logged and skipped so one bad record
// cannot wedge the block.
func (k Keeper) EndBlocker(ctx context.Context) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	k.processExpiredEscrows(ctx, now)
	return k.processLapsedLeases(ctx, now)
}

// processExpiredEscrows refunds every open escrow whose expiry has passed.
// Ids are collected before processing because the refund mutates the index
// being walked.
func (k Keeper) processExpiredEscrows(ctx context.Context, now int64) {
	var expired []string
	k.IterateExpiredEscrows(ctx, now, func(escrowID string, expiresAt int64) bool {
		expired = append(expired, escrowID)
		return false
	})

	for _, escrowID := range expired {
		if _, _, err := k.RefundEscrow(ctx, escrowID, "escrow expired", types.LeaseClosedInsufficientFunds); err != nil {
			k.Logger(ctx).Error("failed to refund expired escrow", "escrow", escrowID, "error", err)
		}
	}
}

// processLapsedLeases closes insufficient-funds leases whose top-up window
// has elapsed, refunding whatever the bound escrow still holds.
func (k Keeper) processLapsedLeases(ctx context.Context, now int64) error {
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}

	var lapsed []types.Lease
	err = k.IterateLeases(ctx, func(lease types.Lease) bool {
		if lease.State == types.LeaseStateInsufficientFunds &&
			now >= lease.InsufficientAt+params.InsufficientFundsGraceSeconds {
			lapsed = append(lapsed, lease)
		}
		return false
	})
	if err != nil {
		return err
	}

	for _, lease := range lapsed {
		escrow, err := k.GetEscrowForOrder(ctx, lease.ID.OrderID())
		if err == nil && escrow.IsOpen() {
			if _, _, err := k.RefundEscrow(ctx, escrow.EscrowID, "top-up window elapsed", types.LeaseClosedInsufficientFunds); err != nil {
				k.Logger(ctx).Error("failed to refund escrow of lapsed lease", "lease", lease.ID.String(), "error", err)
			}
			continue
		}
		if _, err := k.CloseLease(ctx, lease.ID, types.LeaseClosedInsufficientFunds); err != nil {
			k.Logger(ctx).Error("failed to close lapsed lease", "lease", lease.ID.String(), "error", err)
		}
	}
	return nil
}
