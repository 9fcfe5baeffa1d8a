package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

type queryServer struct {
	Keeper
}

// NewQueryServerImpl returns an implementation of the market QueryServer
func NewQueryServerImpl(keeper Keeper) types.QueryServer {
	return &queryServer{Keeper: keeper}
}

var _ types.QueryServer = queryServer{}

// Params returns the module parameters
func (q queryServer) Params(ctx context.Context, req *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	if req == nil {
		return nil, types.ErrValidationFailed.Wrap("empty request")
	}
	params, err := q.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	return &types.QueryParamsResponse{Params: params}, nil
}

// Escrow returns one escrow by id, or by the order it escrows
func (q queryServer) Escrow(ctx context.Context, req *types.QueryEscrowRequest) (*types.QueryEscrowResponse, error) {
	if req == nil {
		return nil, types.ErrValidationFailed.Wrap("empty request")
	}

	var (
		escrow *types.Escrow
		err    error
	)
	switch {
	case req.EscrowID != "":
		escrow, err = q.GetEscrow(ctx, req.EscrowID)
	case req.OrderID != nil:
		escrow, err = q.GetEscrowForOrder(ctx, *req.OrderID)
	default:
		return nil, types.ErrValidationFailed.Wrap("either escrow_id or order_id is required")
	}
	if err != nil {
		return nil, err
	}
	return &types.QueryEscrowResponse{Escrow: *escrow}, nil
}

// Lease returns one lease
func (q queryServer) Lease(ctx context.Context, req *types.QueryLeaseRequest) (*types.QueryLeaseResponse, error) {
	if req == nil {
		return nil, types.ErrValidationFailed.Wrap("empty request")
	}
	lease, err := q.GetLease(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}
	return &types.QueryLeaseResponse{Lease: *lease}, nil
}

// Leases returns leases matching the request filters
func (q queryServer) Leases(ctx context.Context, req *types.QueryLeasesRequest) (*types.QueryLeasesResponse, error) {
	if req == nil {
		return nil, types.ErrValidationFailed.Wrap("empty request")
	}
	leases, err := q.LeasesWithFilters(ctx, req.Filters)
	if err != nil {
		return nil, err
	}
	return &types.QueryLeasesResponse{Leases: leases}, nil
}

// UsageRecord returns one usage record
func (q queryServer) UsageRecord(ctx context.Context, req *types.QueryUsageRecordRequest) (*types.QueryUsageRecordResponse, error) {
	if req == nil {
		return nil, types.ErrValidationFailed.Wrap("empty request")
	}
	record, err := q.GetUsageRecord(ctx, req.UsageID)
	if err != nil {
		return nil, err
	}
	return &types.QueryUsageRecordResponse{Record: *record}, nil
}

// UsageRecords returns an order's usage records
func (q queryServer) UsageRecords(ctx context.Context, req *types.QueryUsageRecordsRequest) (*types.QueryUsageRecordsResponse, error) {
	if req == nil {
		return nil, types.ErrValidationFailed.Wrap("empty request")
	}
	records, err := q.OrderUsageRecords(ctx, req.OrderID, req.UnsettledOnly)
	if err != nil {
		return nil, err
	}
	return &types.QueryUsageRecordsResponse{Records: records}, nil
}

// Settlements returns an order's settlements and its finalization marker
func (q queryServer) Settlements(ctx context.Context, req *types.QuerySettlementsRequest) (*types.QuerySettlementsResponse, error) {
	if req == nil {
		return nil, types.ErrValidationFailed.Wrap("empty request")
	}

	var settlements []types.Settlement
	err := q.IterateOrderSettlements(ctx, req.OrderID, func(settlement types.Settlement) bool {
		settlements = append(settlements, settlement)
		return false
	})
	if err != nil {
		return nil, err
	}
	return &types.QuerySettlementsResponse{
		Settlements: settlements,
		Finalized:   q.IsOrderFinalized(ctx, req.OrderID),
	}, nil
}

// Rewards returns a recipient's claimable reward accumulators
func (q queryServer) Rewards(ctx context.Context, req *types.QueryRewardsRequest) (*types.QueryRewardsResponse, error) {
	if req == nil {
		return nil, types.ErrValidationFailed.Wrap("empty request")
	}
	if _, err := sdk.AccAddressFromBech32(req.Recipient); err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("recipient: %v", err)
	}

	total := math.ZeroInt()
	var rewards []types.RewardAccumulator
	err := q.IterateRecipientRewards(ctx, req.Recipient, func(accumulator types.RewardAccumulator) bool {
		rewards = append(rewards, accumulator)
		total = total.Add(accumulator.Amount)
		return false
	})
	if err != nil {
		return nil, err
	}
	return &types.QueryRewardsResponse{Rewards: rewards, Total: total}, nil
}
