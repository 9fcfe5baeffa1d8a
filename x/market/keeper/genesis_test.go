package keeper_test

import (
	"cosmossdk.io/math"

	keepertest "github.com/virtengine/virtengine-sub008/testutil/keeper"
	"github.com/virtengine/virtengine-sub008/x/market/types"
)

func (s *MarketTestSuite) TestGenesis_RoundTrip() {
	s.setFeeRate("0.1")
	s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)

	_, err := s.k.SettleOrder(s.ctx, s.orderID(), []string{record.UsageID}, true)
	s.Require().NoError(err)

	exported, err := s.k.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(exported.Validate())
	s.Len(exported.Escrows, 1)
	s.Len(exported.Leases, 1)
	s.Len(exported.UsageRecords, 1)
	s.Len(exported.Settlements, 1)
	s.Len(exported.Rewards, 1)
	s.Len(exported.FinalizedOrders, 1)

	tk, ctx := keepertest.MarketKeeper(s.T())
	s.Require().NoError(tk.Keeper.InitGenesis(ctx, *exported))

	reExported, err := tk.Keeper.ExportGenesis(ctx)
	s.Require().NoError(err)
	s.Equal(exported, reExported)

	// Secondary indexes are rebuilt on import, not carried in the state
	escrow, err := tk.Keeper.GetEscrowForOrder(ctx, s.orderID())
	s.Require().NoError(err)
	s.Equal(types.EscrowIDForOrder(s.orderID()), escrow.EscrowID)

	lease, err := tk.Keeper.GetLeaseForOrder(ctx, s.orderID())
	s.Require().NoError(err)
	s.Equal(s.leaseID(), lease.ID)

	s.True(tk.Keeper.IsOrderFinalized(ctx, s.orderID()))
}

func (s *MarketTestSuite) TestGenesis_RejectsDuplicateEscrow() {
	escrow := types.Escrow{
		EscrowID:  types.EscrowIDForOrder(s.orderID()),
		OrderID:   s.orderID(),
		Sender:    s.owner.String(),
		Amount:    math.NewInt(1000),
		Balance:   math.NewInt(1000),
		Released:  math.ZeroInt(),
		Refunded:  math.ZeroInt(),
		State:     types.EscrowStateCreated,
		CreatedAt: 1,
		ExpiresIn: 86400,
	}

	state := types.DefaultGenesis()
	state.Escrows = []types.Escrow{escrow, escrow}

	tk, ctx := keepertest.MarketKeeper(s.T())
	err := tk.Keeper.InitGenesis(ctx, *state)
	s.Require().Error(err)
	s.Contains(err.Error(), "duplicate escrow")
}

func (s *MarketTestSuite) TestGenesis_RejectsDanglingSettlementRef() {
	state := types.DefaultGenesis()
	state.Settlements = []types.Settlement{{
		SettlementID:   types.SettlementIDFor(s.orderID(), 1),
		OrderID:        s.orderID(),
		UsageRecordIDs: []string{"no-such-record"},
		TotalAmount:    math.NewInt(50),
		ProviderShare:  math.NewInt(45),
		PlatformFee:    math.NewInt(5),
		SettledAt:      1,
	}}

	tk, ctx := keepertest.MarketKeeper(s.T())
	err := tk.Keeper.InitGenesis(ctx, *state)
	s.Require().Error(err)
	s.Contains(err.Error(), "unknown usage record")
}

func (s *MarketTestSuite) TestGenesis_Default() {
	s.Require().NoError(types.DefaultGenesis().Validate())
}
