package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the market MsgServer
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ types.MsgServer = msgServer{}

// CreateEscrow handles MsgCreateEscrow. Only the order owner can open the
// escrow for their order.
func (m msgServer) CreateEscrow(ctx context.Context, msg *types.MsgCreateEscrow) (*types.MsgCreateEscrowResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("sender: %v", err)
	}
	if msg.Sender != msg.OrderID.Owner {
		return nil, types.ErrUnauthorized.Wrap("only the order owner may open its escrow")
	}

	escrow, err := m.Keeper.CreateEscrow(ctx, sender, msg.OrderID, msg.Amount, msg.ExpiresIn)
	if err != nil {
		return nil, err
	}
	return &types.MsgCreateEscrowResponse{
		EscrowID:  escrow.EscrowID,
		CreatedAt: escrow.CreatedAt,
	}, nil
}

// ActivateEscrow handles MsgActivateEscrow
func (m msgServer) ActivateEscrow(ctx context.Context, msg *types.MsgActivateEscrow) (*types.MsgActivateEscrowResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	recipient, err := sdk.AccAddressFromBech32(msg.Recipient)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("recipient: %v", err)
	}

	escrow, err := m.GetEscrow(ctx, msg.EscrowID)
	if err != nil {
		return nil, err
	}
	if msg.Sender != escrow.Sender {
		return nil, types.ErrUnauthorized.Wrap("only the escrow sender may activate it")
	}

	activatedAt, err := m.Keeper.ActivateEscrow(ctx, msg.EscrowID, msg.LeaseID, recipient)
	if err != nil {
		return nil, err
	}
	return &types.MsgActivateEscrowResponse{ActivatedAt: activatedAt}, nil
}

// ReleaseEscrow handles MsgReleaseEscrow, the buyer-initiated direct release
// path. Settlement-driven releases go through SettleOrder instead.
func (m msgServer) ReleaseEscrow(ctx context.Context, msg *types.MsgReleaseEscrow) (*types.MsgReleaseEscrowResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	escrow, err := m.GetEscrow(ctx, msg.EscrowID)
	if err != nil {
		return nil, err
	}
	if msg.Sender != escrow.Sender {
		return nil, types.ErrUnauthorized.Wrap("only the escrow sender may release funds directly")
	}

	// The release runs in a store branch: an insufficient balance discards
	// it, and only the lease flip is written to the delivery context. An
	// error return here would roll the flip back with the message.
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	providerShare, platformFee, releasedAt, err := m.Keeper.ReleaseEscrow(cacheCtx, msg.EscrowID, msg.Amount, msg.Reason)
	switch {
	case err == nil:
		write()
	case errors.Is(err, types.ErrInsufficientEscrowBalance):
		m.markLeaseInsufficientFunds(ctx, escrow.LeaseID)
		return &types.MsgReleaseEscrowResponse{
			ProviderShare:     math.ZeroInt(),
			PlatformFee:       math.ZeroInt(),
			InsufficientFunds: true,
		}, nil
	default:
		return nil, err
	}
	return &types.MsgReleaseEscrowResponse{
		ReleasedAt:    releasedAt,
		ProviderShare: providerShare,
		PlatformFee:   platformFee,
	}, nil
}

// RefundEscrow handles MsgRefundEscrow
func (m msgServer) RefundEscrow(ctx context.Context, msg *types.MsgRefundEscrow) (*types.MsgRefundEscrowResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	escrow, err := m.GetEscrow(ctx, msg.EscrowID)
	if err != nil {
		return nil, err
	}
	if msg.Sender != escrow.Sender {
		return nil, types.ErrUnauthorized.Wrap("only the escrow sender may refund it")
	}

	refunded, refundedAt, err := m.Keeper.RefundEscrow(ctx, msg.EscrowID, msg.Reason, types.LeaseClosedOwner)
	if err != nil {
		return nil, err
	}
	return &types.MsgRefundEscrowResponse{
		RefundedAt:     refundedAt,
		RefundedAmount: refunded,
	}, nil
}

// DisputeEscrow handles MsgDisputeEscrow. Either side of the escrow may
// raise a dispute.
func (m msgServer) DisputeEscrow(ctx context.Context, msg *types.MsgDisputeEscrow) (*types.MsgDisputeEscrowResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	escrow, err := m.GetEscrow(ctx, msg.EscrowID)
	if err != nil {
		return nil, err
	}
	if msg.Sender != escrow.Sender && msg.Sender != escrow.Recipient {
		return nil, types.ErrUnauthorized.Wrap("only an escrow party may raise a dispute")
	}

	disputedAt, err := m.Keeper.DisputeEscrow(ctx, msg.EscrowID, msg.Reason, msg.Evidence)
	if err != nil {
		return nil, err
	}
	return &types.MsgDisputeEscrowResponse{DisputedAt: disputedAt}, nil
}

// RecordUsage handles MsgRecordUsage
func (m msgServer) RecordUsage(ctx context.Context, msg *types.MsgRecordUsage) (*types.MsgRecordUsageResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	record, err := m.Keeper.RecordUsage(ctx, msg.OrderID, msg.LeaseID, msg.UsageUnits, msg.UsageType, msg.PeriodStart, msg.PeriodEnd, msg.UnitPrice, msg.Signature)
	if err != nil {
		return nil, err
	}
	return &types.MsgRecordUsageResponse{
		UsageID:    record.UsageID,
		TotalCost:  record.TotalCost,
		RecordedAt: record.RecordedAt,
	}, nil
}

// AcknowledgeUsage handles MsgAcknowledgeUsage
func (m msgServer) AcknowledgeUsage(ctx context.Context, msg *types.MsgAcknowledgeUsage) (*types.MsgAcknowledgeUsageResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("sender: %v", err)
	}

	acknowledgedAt, err := m.Keeper.AcknowledgeUsage(ctx, sender, msg.UsageID, msg.Signature)
	if err != nil {
		return nil, err
	}
	return &types.MsgAcknowledgeUsageResponse{AcknowledgedAt: acknowledgedAt}, nil
}

// SettleOrder handles MsgSettleOrder. Either side of the lease may trigger a
// settlement: the provider to collect payment, the owner to pay down usage.
func (m msgServer) SettleOrder(ctx context.Context, msg *types.MsgSettleOrder) (*types.MsgSettleOrderResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	lease, err := m.GetLeaseForOrder(ctx, msg.OrderID)
	if err != nil {
		return nil, err
	}
	if msg.Sender != lease.ID.Owner && msg.Sender != lease.ID.Provider {
		return nil, types.ErrUnauthorized.Wrap("only a lease party may settle its order")
	}

	// All-or-nothing inside a store branch: a short balance discards the
	// partial settlement, and the lease flip alone is written to the
	// delivery context so it survives the failed settlement on-chain.
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	settlement, err := m.Keeper.SettleOrder(cacheCtx, msg.OrderID, msg.UsageRecordIDs, msg.IsFinal)
	switch {
	case err == nil:
		write()
	case errors.Is(err, types.ErrInsufficientEscrowBalance):
		m.markLeaseInsufficientFunds(ctx, lease.ID)
		return &types.MsgSettleOrderResponse{
			TotalAmount:       math.ZeroInt(),
			ProviderShare:     math.ZeroInt(),
			PlatformFee:       math.ZeroInt(),
			InsufficientFunds: true,
		}, nil
	default:
		return nil, err
	}
	return &types.MsgSettleOrderResponse{
		SettlementID:  settlement.SettlementID,
		TotalAmount:   settlement.TotalAmount,
		ProviderShare: settlement.ProviderShare,
		PlatformFee:   settlement.PlatformFee,
		SettledAt:     settlement.SettledAt,
	}, nil
}

// ClaimRewards handles MsgClaimRewards
func (m msgServer) ClaimRewards(ctx context.Context, msg *types.MsgClaimRewards) (*types.MsgClaimRewardsResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("sender: %v", err)
	}

	claimed, err := m.Keeper.ClaimRewards(ctx, sender, msg.Source)
	if err != nil {
		return nil, err
	}
	return &types.MsgClaimRewardsResponse{
		ClaimedAmount: claimed,
		ClaimedAt:     sdk.UnwrapSDKContext(ctx).BlockTime().Unix(),
	}, nil
}

// CloseLease handles MsgCloseLease. An owner close refunds the remaining
// escrow balance when the escrow is still open; a provider close leaves the
// escrow for the owner to refund.
func (m msgServer) CloseLease(ctx context.Context, msg *types.MsgCloseLease) (*types.MsgCloseLeaseResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	reason := types.LeaseClosedOwner
	switch msg.Sender {
	case msg.LeaseID.Owner:
	case msg.LeaseID.Provider:
		reason = types.LeaseClosedDecommission
	default:
		return nil, types.ErrUnauthorized.Wrapf("sender %s is not a lease party", msg.Sender)
	}

	if reason == types.LeaseClosedOwner {
		if escrow, err := m.GetEscrowForOrder(ctx, msg.LeaseID.OrderID()); err == nil && escrow.IsOpen() {
			// Closes the lease as part of the escrow teardown when the
			// escrow was already bound to it.
			if _, _, err := m.Keeper.RefundEscrow(ctx, escrow.EscrowID, "lease closed by owner", types.LeaseClosedOwner); err != nil {
				return nil, err
			}
		}
	}

	lease, err := m.Keeper.CloseLease(ctx, msg.LeaseID, reason)
	if err != nil {
		return nil, err
	}
	return &types.MsgCloseLeaseResponse{ClosedOn: lease.ClosedOn, Reason: lease.Reason}, nil
}

// UpdateParams handles MsgUpdateParams, gated on the module authority
func (m msgServer) UpdateParams(ctx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if msg.Authority != m.GetAuthority() {
		return nil, types.ErrUnauthorized.Wrapf("expected authority %s, got %s", m.GetAuthority(), msg.Authority)
	}

	if err := m.SetParams(ctx, msg.Params); err != nil {
		return nil, err
	}
	return &types.MsgUpdateParamsResponse{}, nil
}
