package keeper

import (
	"context"
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// CreateEscrow opens the escrow account for an order and moves the deposit
// from the sender into module custody. The escrow id is derived from the
// order id, so a second escrow for the same order is a conflict, not a new
// account.
func (k Keeper) CreateEscrow(ctx context.Context, sender sdk.AccAddress, orderID types.OrderID, amount math.Int, expiresIn int64) (*types.Escrow, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrInvalidAmount.Wrap("escrow amount must be positive")
	}
	if expiresIn <= 0 {
		return nil, types.ErrValidationFailed.Wrap("expires_in must be positive")
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("CreateEscrow: get params: %w", err)
	}
	if amount.LT(params.MinEscrowAmount) {
		return nil, types.ErrInvalidAmount.Wrapf("deposit %s below minimum %s", amount, params.MinEscrowAmount)
	}

	escrowID := types.EscrowIDForOrder(orderID)
	if k.getStore(ctx).Has(types.EscrowKey(escrowID)) {
		return nil, types.ErrDuplicateEscrow.Wrapf("order %s", orderID)
	}

	// Funds move first: if the sender cannot pay, no state is written.
	deposit := sdk.NewCoins(sdk.NewCoin(params.Denom, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, sender, types.ModuleName, deposit); err != nil {
		return nil, fmt.Errorf("CreateEscrow: lock deposit: %w", err)
	}

	now := sdkCtx.BlockTime().Unix()
	escrow := types.Escrow{
		EscrowID:  escrowID,
		OrderID:   orderID,
		Sender:    sender.String(),
		Amount:    amount,
		Balance:   amount,
		Released:  math.ZeroInt(),
		Refunded:  math.ZeroInt(),
		ExpiresIn: expiresIn,
		State:     types.EscrowStateCreated,
		CreatedAt: now,
	}

	if err := k.SetEscrow(ctx, escrow); err != nil {
		return nil, fmt.Errorf("CreateEscrow: %w", err)
	}
	k.setEscrowExpiryIndex(ctx, escrowID, escrow.ExpiresAt())

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEscrowCreated,
			sdk.NewAttribute(types.AttributeKeyEscrowID, escrowID),
			sdk.NewAttribute(types.AttributeKeyOrderID, orderID.String()),
			sdk.NewAttribute(types.AttributeKeySender, escrow.Sender),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(types.AttributeKeyExpiresAt, fmt.Sprintf("%d", escrow.ExpiresAt())),
		),
	)

	return &escrow, nil
}

// ActivateEscrow binds the escrow to its lease and the provider payout
// address. The bound lease transitions Invalid -> Active in the same
// transition.
func (k Keeper) ActivateEscrow(ctx context.Context, escrowID string, leaseID types.LeaseID, recipient sdk.AccAddress) (int64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	escrow, err := k.GetEscrow(ctx, escrowID)
	if err != nil {
		return 0, err
	}
	if escrow.State != types.EscrowStateCreated {
		return 0, types.ErrInvalidEscrowState.Wrapf("escrow %s cannot be activated from state %s", escrowID, escrow.State)
	}
	if !leaseID.OrderID().Equals(escrow.OrderID) {
		return 0, types.ErrInvalidID.Wrapf("lease %s does not belong to escrow order %s", leaseID, escrow.OrderID)
	}

	now := sdkCtx.BlockTime().Unix()
	escrow.State = types.EscrowStateActive
	escrow.LeaseID = leaseID
	escrow.Recipient = recipient.String()
	escrow.ActivatedAt = now

	if err := k.SetEscrow(ctx, *escrow); err != nil {
		return 0, fmt.Errorf("ActivateEscrow: %w", err)
	}

	if err := k.activateLease(ctx, leaseID); err != nil {
		return 0, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEscrowActivated,
			sdk.NewAttribute(types.AttributeKeyEscrowID, escrowID),
			sdk.NewAttribute(types.AttributeKeyLeaseID, leaseID.String()),
			sdk.NewAttribute(types.AttributeKeyRecipient, escrow.Recipient),
		),
	)

	return now, nil
}

// ReleaseEscrow moves amount out of the held balance: the platform fee goes
// to the fee collector, the provider share accrues to the recipient's
// claimable rewards. A release that empties the balance terminates the
// escrow. A release exceeding the balance is an economic failure: the bound
// lease transitions to InsufficientFunds and the caller gets
// ErrInsufficientEscrowBalance.
func (k Keeper) ReleaseEscrow(ctx context.Context, escrowID string, amount math.Int, reason string) (providerShare, platformFee math.Int, releasedAt int64, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	zero := math.ZeroInt()

	escrow, err := k.GetEscrow(ctx, escrowID)
	if err != nil {
		return zero, zero, 0, err
	}
	if escrow.State != types.EscrowStateActive {
		return zero, zero, 0, types.ErrInvalidEscrowState.Wrapf("escrow %s cannot release in state %s", escrowID, escrow.State)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return zero, zero, 0, types.ErrInvalidAmount.Wrap("release amount must be positive")
	}

	if amount.GT(escrow.Balance) {
		// Economic failure: surface it structurally, not just as an error.
		// Callers running the release in a store branch re-apply the flip
		// outside the branch, where the error would otherwise discard it.
		k.markLeaseInsufficientFunds(ctx, escrow.LeaseID)
		return zero, zero, 0, types.ErrInsufficientEscrowBalance.Wrapf(
			"escrow %s: requested %s, held %s", escrowID, amount, escrow.Balance)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return zero, zero, 0, fmt.Errorf("ReleaseEscrow: get params: %w", err)
	}

	providerShare, platformFee = types.SplitSettlementAmount(amount, params.FeeRate)
	now := sdkCtx.BlockTime().Unix()

	escrow.Balance = escrow.Balance.Sub(amount)
	escrow.Released = escrow.Released.Add(amount)
	if escrow.Balance.IsZero() {
		escrow.State = types.EscrowStateReleased
		escrow.FinalizedAt = now
		k.removeEscrowExpiryIndex(ctx, escrowID)
	}

	if err := k.SetEscrow(ctx, *escrow); err != nil {
		return zero, zero, 0, fmt.Errorf("ReleaseEscrow: %w", err)
	}

	if platformFee.IsPositive() {
		fee := sdk.NewCoins(sdk.NewCoin(params.Denom, platformFee))
		if err := k.bankKeeper.SendCoinsFromModuleToModule(ctx, types.ModuleName, authtypes.FeeCollectorName, fee); err != nil {
			return zero, zero, 0, fmt.Errorf("ReleaseEscrow: pay platform fee: %w", err)
		}
	}
	if providerShare.IsPositive() {
		if err := k.creditReward(ctx, escrow.Recipient, reason, providerShare); err != nil {
			return zero, zero, 0, fmt.Errorf("ReleaseEscrow: credit provider share: %w", err)
		}
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEscrowReleased,
			sdk.NewAttribute(types.AttributeKeyEscrowID, escrowID),
			sdk.NewAttribute(types.AttributeKeyRecipient, escrow.Recipient),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(types.AttributeKeyProviderShare, providerShare.String()),
			sdk.NewAttribute(types.AttributeKeyPlatformFee, platformFee.String()),
			sdk.NewAttribute(types.AttributeKeyBalance, escrow.Balance.String()),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)

	if escrow.State == types.EscrowStateReleased {
		k.closeLeaseFromEscrow(ctx, escrow.LeaseID, types.LeaseClosedUnspecified)
	}

	return providerShare, platformFee, now, nil
}

// RefundEscrow returns the remaining held balance to the sender and
// terminates the escrow. Terminal: refunding an already-terminal escrow is an
// error, not a no-op.
func (k Keeper) RefundEscrow(ctx context.Context, escrowID, reason string, leaseReason types.LeaseClosedReason) (refunded math.Int, refundedAt int64, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	zero := math.ZeroInt()

	escrow, err := k.GetEscrow(ctx, escrowID)
	if err != nil {
		return zero, 0, err
	}
	if !escrow.IsOpen() {
		return zero, 0, types.ErrInvalidEscrowState.Wrapf("escrow %s cannot be refunded in state %s", escrowID, escrow.State)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return zero, 0, fmt.Errorf("RefundEscrow: get params: %w", err)
	}

	now := sdkCtx.BlockTime().Unix()
	refunded = escrow.Balance
	hadLease := escrow.State == types.EscrowStateActive

	// Funds move first: a failed transfer leaves the escrow open, so the end
	// blocker can retry instead of stranding the coins in module custody.
	if refunded.IsPositive() {
		sender, err := sdk.AccAddressFromBech32(escrow.Sender)
		if err != nil {
			return zero, 0, types.ErrInvalidAddress.Wrapf("escrow sender: %v", err)
		}
		refund := sdk.NewCoins(sdk.NewCoin(params.Denom, refunded))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, sender, refund); err != nil {
			return zero, 0, fmt.Errorf("RefundEscrow: return deposit: %w", err)
		}
	}

	escrow.Refunded = escrow.Refunded.Add(refunded)
	escrow.Balance = math.ZeroInt()
	escrow.State = types.EscrowStateRefunded
	escrow.FinalizedAt = now

	if err := k.SetEscrow(ctx, *escrow); err != nil {
		return zero, 0, fmt.Errorf("RefundEscrow: %w", err)
	}
	k.removeEscrowExpiryIndex(ctx, escrowID)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEscrowRefunded,
			sdk.NewAttribute(types.AttributeKeyEscrowID, escrowID),
			sdk.NewAttribute(types.AttributeKeySender, escrow.Sender),
			sdk.NewAttribute(types.AttributeKeyAmount, refunded.String()),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)

	if hadLease {
		k.closeLeaseFromEscrow(ctx, escrow.LeaseID, leaseReason)
	}

	return refunded, now, nil
}

// DisputeEscrow freezes an active escrow: no release or refund until an
// external arbitration path resolves it.
func (k Keeper) DisputeEscrow(ctx context.Context, escrowID, reason string, evidence []byte) (int64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	escrow, err := k.GetEscrow(ctx, escrowID)
	if err != nil {
		return 0, err
	}
	if escrow.State != types.EscrowStateActive {
		return 0, types.ErrInvalidEscrowState.Wrapf("escrow %s cannot be disputed in state %s", escrowID, escrow.State)
	}

	now := sdkCtx.BlockTime().Unix()
	escrow.State = types.EscrowStateDisputed
	escrow.DisputeReason = reason
	escrow.DisputeEvidence = evidence
	escrow.FinalizedAt = now

	if err := k.SetEscrow(ctx, *escrow); err != nil {
		return 0, fmt.Errorf("DisputeEscrow: %w", err)
	}
	k.removeEscrowExpiryIndex(ctx, escrowID)

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEscrowDisputed,
			sdk.NewAttribute(types.AttributeKeyEscrowID, escrowID),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)

	return now, nil
}

// GetEscrow retrieves an escrow by id
func (k Keeper) GetEscrow(ctx context.Context, escrowID string) (*types.Escrow, error) {
	var escrow types.Escrow
	found, err := k.getJSON(ctx, types.EscrowKey(escrowID), &escrow)
	if err != nil {
		return nil, fmt.Errorf("GetEscrow: %w", err)
	}
	if !found {
		return nil, types.ErrEscrowNotFound.Wrapf("escrow %s", escrowID)
	}
	return &escrow, nil
}

// GetEscrowForOrder retrieves the escrow bound to an order
func (k Keeper) GetEscrowForOrder(ctx context.Context, orderID types.OrderID) (*types.Escrow, error) {
	return k.GetEscrow(ctx, types.EscrowIDForOrder(orderID))
}

// SetEscrow stores an escrow record
func (k Keeper) SetEscrow(ctx context.Context, escrow types.Escrow) error {
	return k.setJSON(ctx, types.EscrowKey(escrow.EscrowID), escrow)
}

// IterateEscrows walks every escrow in store order
func (k Keeper) IterateEscrows(ctx context.Context, cb func(escrow types.Escrow) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.EscrowKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var escrow types.Escrow
		if err := jsonUnmarshal(iterator.Value(), &escrow); err != nil {
			return fmt.Errorf("IterateEscrows: %w", err)
		}
		if cb(escrow) {
			break
		}
	}
	return nil
}

// setEscrowExpiryIndex records the escrow in the time-ordered expiry index,
// with a reverse entry for O(1) removal.
func (k Keeper) setEscrowExpiryIndex(ctx context.Context, escrowID string, expiresAt int64) {
	store := k.getStore(ctx)
	store.Set(types.EscrowExpiryKey(expiresAt, escrowID), []byte{})

	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(expiresAt))
	store.Set(types.EscrowExpiryReverseKey(escrowID), bz)
}

// removeEscrowExpiryIndex drops the escrow from the expiry index
func (k Keeper) removeEscrowExpiryIndex(ctx context.Context, escrowID string) {
	store := k.getStore(ctx)

	bz := store.Get(types.EscrowExpiryReverseKey(escrowID))
	if bz == nil {
		return
	}
	expiresAt := int64(binary.BigEndian.Uint64(bz))
	store.Delete(types.EscrowExpiryKey(expiresAt, escrowID))
	store.Delete(types.EscrowExpiryReverseKey(escrowID))
}

// IterateExpiredEscrows visits escrows whose expiry precedes or equals the
// supplied time, in expiry order.
func (k Keeper) IterateExpiredEscrows(ctx context.Context, now int64, cb func(escrowID string, expiresAt int64) (stop bool)) {
	store := k.getStore(ctx)

	end := types.EscrowExpiryKey(now+1, "")
	iterator := store.Iterator(types.EscrowExpiryKeyPrefix, end)
	defer iterator.Close()

	prefixLen := len(types.EscrowExpiryKeyPrefix)
	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()
		if len(key) < prefixLen+8 {
			continue
		}
		expiresAt := int64(binary.BigEndian.Uint64(key[prefixLen : prefixLen+8]))
		escrowID := string(key[prefixLen+8:])
		if cb(escrowID, expiresAt) {
			break
		}
	}
}
