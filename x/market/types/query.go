package types

import (
	"context"

	"cosmossdk.io/math"
	gogogrpc "github.com/cosmos/gogoproto/grpc"
)

// QueryServer defines the market query server interface. The gRPC service
// descriptor binding it is generated separately.
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	Escrow(context.Context, *QueryEscrowRequest) (*QueryEscrowResponse, error)
	Lease(context.Context, *QueryLeaseRequest) (*QueryLeaseResponse, error)
	Leases(context.Context, *QueryLeasesRequest) (*QueryLeasesResponse, error)
	UsageRecord(context.Context, *QueryUsageRecordRequest) (*QueryUsageRecordResponse, error)
	UsageRecords(context.Context, *QueryUsageRecordsRequest) (*QueryUsageRecordsResponse, error)
	Settlements(context.Context, *QuerySettlementsRequest) (*QuerySettlementsResponse, error)
	Rewards(context.Context, *QueryRewardsRequest) (*QueryRewardsResponse, error)
}

// QueryParamsRequest requests the module parameters
type QueryParamsRequest struct{}

// QueryParamsResponse returns the module parameters
type QueryParamsResponse struct {
	Params Params `json:"params"`
}

// QueryEscrowRequest requests one escrow, by id or by order
type QueryEscrowRequest struct {
	EscrowID string   `json:"escrow_id,omitempty"`
	OrderID  *OrderID `json:"order_id,omitempty"`
}

// QueryEscrowResponse returns one escrow
type QueryEscrowResponse struct {
	Escrow Escrow `json:"escrow"`
}

// QueryLeaseRequest requests one lease
type QueryLeaseRequest struct {
	LeaseID LeaseID `json:"lease_id"`
}

// QueryLeaseResponse returns one lease
type QueryLeaseResponse struct {
	Lease Lease `json:"lease"`
}

// QueryLeasesRequest requests leases matching a filter set
type QueryLeasesRequest struct {
	Filters LeaseFilters `json:"filters"`
}

// QueryLeasesResponse returns the matching leases
type QueryLeasesResponse struct {
	Leases []Lease `json:"leases"`
}

// QueryUsageRecordRequest requests one usage record
type QueryUsageRecordRequest struct {
	UsageID string `json:"usage_id"`
}

// QueryUsageRecordResponse returns one usage record
type QueryUsageRecordResponse struct {
	Record UsageRecord `json:"record"`
}

// QueryUsageRecordsRequest requests an order's usage records
type QueryUsageRecordsRequest struct {
	OrderID OrderID `json:"order_id"`

	// UnsettledOnly restricts the result to records not yet folded into a
	// settlement.
	UnsettledOnly bool `json:"unsettled_only,omitempty"`
}

// QueryUsageRecordsResponse returns an order's usage records
type QueryUsageRecordsResponse struct {
	Records []UsageRecord `json:"records"`
}

// QuerySettlementsRequest requests an order's settlements
type QuerySettlementsRequest struct {
	OrderID OrderID `json:"order_id"`
}

// QuerySettlementsResponse returns an order's settlements in sequence order
type QuerySettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
	Finalized   bool         `json:"finalized"`
}

// QueryRewardsRequest requests a recipient's reward accumulators
type QueryRewardsRequest struct {
	Recipient string `json:"recipient"`
}

// QueryRewardsResponse returns a recipient's reward accumulators and total
type QueryRewardsResponse struct {
	Rewards []RewardAccumulator `json:"rewards"`
	Total   math.Int            `json:"total"`
}

// QueryClient is the client side of the market query service, mirroring
// QueryServer method for method.
type QueryClient interface {
	Params(ctx context.Context, req *QueryParamsRequest) (*QueryParamsResponse, error)
	Escrow(ctx context.Context, req *QueryEscrowRequest) (*QueryEscrowResponse, error)
	Lease(ctx context.Context, req *QueryLeaseRequest) (*QueryLeaseResponse, error)
	Leases(ctx context.Context, req *QueryLeasesRequest) (*QueryLeasesResponse, error)
	UsageRecord(ctx context.Context, req *QueryUsageRecordRequest) (*QueryUsageRecordResponse, error)
	UsageRecords(ctx context.Context, req *QueryUsageRecordsRequest) (*QueryUsageRecordsResponse, error)
	Settlements(ctx context.Context, req *QuerySettlementsRequest) (*QuerySettlementsResponse, error)
	Rewards(ctx context.Context, req *QueryRewardsRequest) (*QueryRewardsResponse, error)
}

type queryClient struct {
	cc gogogrpc.ClientConn
}

// NewQueryClient returns a QueryClient over a client connection
func NewQueryClient(cc gogogrpc.ClientConn) QueryClient {
	return &queryClient{cc: cc}
}

func (c *queryClient) Params(ctx context.Context, req *QueryParamsRequest) (*QueryParamsResponse, error) {
	out := new(QueryParamsResponse)
	if err := c.cc.Invoke(ctx, "/virtengine.market.v1.Query/Params", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) Escrow(ctx context.Context, req *QueryEscrowRequest) (*QueryEscrowResponse, error) {
	out := new(QueryEscrowResponse)
	if err := c.cc.Invoke(ctx, "/virtengine.market.v1.Query/Escrow", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) Lease(ctx context.Context, req *QueryLeaseRequest) (*QueryLeaseResponse, error) {
	out := new(QueryLeaseResponse)
	if err := c.cc.Invoke(ctx, "/virtengine.market.v1.Query/Lease", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) Leases(ctx context.Context, req *QueryLeasesRequest) (*QueryLeasesResponse, error) {
	out := new(QueryLeasesResponse)
	if err := c.cc.Invoke(ctx, "/virtengine.market.v1.Query/Leases", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) UsageRecord(ctx context.Context, req *QueryUsageRecordRequest) (*QueryUsageRecordResponse, error) {
	out := new(QueryUsageRecordResponse)
	if err := c.cc.Invoke(ctx, "/virtengine.market.v1.Query/UsageRecord", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) UsageRecords(ctx context.Context, req *QueryUsageRecordsRequest) (*QueryUsageRecordsResponse, error) {
	out := new(QueryUsageRecordsResponse)
	if err := c.cc.Invoke(ctx, "/virtengine.market.v1.Query/UsageRecords", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) Settlements(ctx context.Context, req *QuerySettlementsRequest) (*QuerySettlementsResponse, error) {
	out := new(QuerySettlementsResponse)
	if err := c.cc.Invoke(ctx, "/virtengine.market.v1.Query/Settlements", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) Rewards(ctx context.Context, req *QueryRewardsRequest) (*QueryRewardsResponse, error) {
	out := new(QueryRewardsResponse)
	if err := c.cc.Invoke(ctx, "/virtengine.market.v1.Query/Rewards", req, out); err != nil {
		return nil, err
	}
	return out, nil
}
