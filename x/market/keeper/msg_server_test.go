package keeper_test

import (
	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/keeper"
	"github.com/virtengine/virtengine-sub008/x/market/types"
)

func (s *MarketTestSuite) msgServer() types.MsgServer {
	return keeper.NewMsgServerImpl(*s.k)
}

func (s *MarketTestSuite) TestMsgCreateEscrow() {
	srv := s.msgServer()

	resp, err := srv.CreateEscrow(s.ctx, types.NewMsgCreateEscrow(s.owner.String(), s.orderID(), math.NewInt(1000), 86400))
	s.Require().NoError(err)
	s.Equal(types.EscrowIDForOrder(s.orderID()), resp.EscrowID)
	s.Equal(s.ctx.BlockTime().Unix(), resp.CreatedAt)
}

func (s *MarketTestSuite) TestMsgCreateEscrow_OnlyOwner() {
	srv := s.msgServer()

	_, err := srv.CreateEscrow(s.ctx, types.NewMsgCreateEscrow(s.provider.String(), s.orderID(), math.NewInt(1000), 86400))
	s.ErrorIs(err, types.ErrUnauthorized)
}

func (s *MarketTestSuite) TestMsgActivateEscrow_OnlySender() {
	srv := s.msgServer()
	s.createLease()
	escrow := s.createEscrow(1000)

	_, err := srv.ActivateEscrow(s.ctx, types.NewMsgActivateEscrow(s.provider.String(), escrow.EscrowID, s.leaseID(), s.provider.String()))
	s.ErrorIs(err, types.ErrUnauthorized)

	resp, err := srv.ActivateEscrow(s.ctx, types.NewMsgActivateEscrow(s.owner.String(), escrow.EscrowID, s.leaseID(), s.provider.String()))
	s.Require().NoError(err)
	s.Equal(s.ctx.BlockTime().Unix(), resp.ActivatedAt)
}

func (s *MarketTestSuite) TestMsgReleaseEscrow() {
	srv := s.msgServer()
	s.setFeeRate("0.1")
	escrow := s.activeFixture(1000)

	resp, err := srv.ReleaseEscrow(s.ctx, types.NewMsgReleaseEscrow(s.owner.String(), escrow.EscrowID, math.NewInt(50), "manual"))
	s.Require().NoError(err)
	s.Equal(math.NewInt(45), resp.ProviderShare)
	s.Equal(math.NewInt(5), resp.PlatformFee)
}

func (s *MarketTestSuite) TestMsgRefundEscrow_OnlySender() {
	srv := s.msgServer()
	escrow := s.activeFixture(1000)

	_, err := srv.RefundEscrow(s.ctx, types.NewMsgRefundEscrow(s.provider.String(), escrow.EscrowID, "give back"))
	s.ErrorIs(err, types.ErrUnauthorized)
}

func (s *MarketTestSuite) TestMsgDisputeEscrow_Parties() {
	srv := s.msgServer()
	escrow := s.activeFixture(1000)

	stranger := sdk.AccAddress(secp256k1.GenPrivKey().PubKey().Address()).String()
	_, err := srv.DisputeEscrow(s.ctx, types.NewMsgDisputeEscrow(stranger, escrow.EscrowID, "meddling", nil))
	s.ErrorIs(err, types.ErrUnauthorized)

	// The provider side may dispute too
	resp, err := srv.DisputeEscrow(s.ctx, types.NewMsgDisputeEscrow(s.provider.String(), escrow.EscrowID, "unpaid usage", nil))
	s.Require().NoError(err)
	s.Equal(s.ctx.BlockTime().Unix(), resp.DisputedAt)
}

func (s *MarketTestSuite) TestMsgRecordUsageAndSettle() {
	srv := s.msgServer()
	s.setFeeRate("0.1")
	s.activeFixture(1000)

	sig := s.signUsage(10, "cpu", 0, 60, math.NewInt(5))
	usageResp, err := srv.RecordUsage(s.ctx, types.NewMsgRecordUsage(s.provider.String(), s.orderID(), s.leaseID(), 10, "cpu", 0, 60, math.NewInt(5), sig))
	s.Require().NoError(err)
	s.Equal(math.NewInt(50), usageResp.TotalCost)

	settleResp, err := srv.SettleOrder(s.ctx, types.NewMsgSettleOrder(s.provider.String(), s.orderID(), []string{usageResp.UsageID}, false))
	s.Require().NoError(err)
	s.Equal(math.NewInt(50), settleResp.TotalAmount)
	s.Equal(math.NewInt(45), settleResp.ProviderShare)

	claimResp, err := srv.ClaimRewards(s.ctx, types.NewMsgClaimRewards(s.provider.String(), "settlement"))
	s.Require().NoError(err)
	s.Equal(math.NewInt(45), claimResp.ClaimedAmount)
}

// TestMsgSettleOrder_InsufficientFundsOutcome delivers the message the way
// baseapp does: the handler runs in a branch committed only on success. The
// lease flip has to land in the delivery context anyway.
func (s *MarketTestSuite) TestMsgSettleOrder_InsufficientFundsOutcome() {
	srv := s.msgServer()
	s.activeFixture(40)
	record := s.recordUsage(10, "cpu", 0, 60, 5) // cost 50 > balance 40

	msgCtx, write := s.ctx.CacheContext()
	resp, err := srv.SettleOrder(msgCtx, types.NewMsgSettleOrder(s.provider.String(), s.orderID(), []string{record.UsageID}, false))
	s.Require().NoError(err)
	s.True(resp.InsufficientFunds)
	s.Empty(resp.SettlementID)
	write()

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateInsufficientFunds, lease.State)
	s.Equal(s.ctx.BlockTime().Unix(), lease.InsufficientAt)

	// The failed settlement itself left nothing behind
	stored, err := s.k.GetUsageRecord(s.ctx, record.UsageID)
	s.Require().NoError(err)
	s.False(stored.Settled())

	escrow, err := s.k.GetEscrowForOrder(s.ctx, s.orderID())
	s.Require().NoError(err)
	s.Equal(math.NewInt(40), escrow.Balance)

	err = s.k.IterateOrderSettlements(s.ctx, s.orderID(), func(types.Settlement) bool {
		s.Fail("no settlement should exist")
		return true
	})
	s.NoError(err)
}

func (s *MarketTestSuite) TestMsgReleaseEscrow_InsufficientFundsOutcome() {
	srv := s.msgServer()
	escrow := s.activeFixture(100)

	msgCtx, write := s.ctx.CacheContext()
	resp, err := srv.ReleaseEscrow(msgCtx, types.NewMsgReleaseEscrow(s.owner.String(), escrow.EscrowID, math.NewInt(500), "manual"))
	s.Require().NoError(err)
	s.True(resp.InsufficientFunds)
	s.True(resp.ProviderShare.IsZero())
	write()

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateInsufficientFunds, lease.State)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(math.NewInt(100), stored.Balance)
	s.Equal(types.EscrowStateActive, stored.State)
}

func (s *MarketTestSuite) TestMsgSettleOrder_OnlyLeaseParties() {
	srv := s.msgServer()
	s.activeFixture(1000)
	s.recordUsage(10, "cpu", 0, 60, 5)

	stranger := sdk.AccAddress(secp256k1.GenPrivKey().PubKey().Address()).String()
	_, err := srv.SettleOrder(s.ctx, types.NewMsgSettleOrder(stranger, s.orderID(), nil, false))
	s.ErrorIs(err, types.ErrUnauthorized)
}

func (s *MarketTestSuite) TestMsgCloseLease_OwnerRefunds() {
	srv := s.msgServer()
	escrow := s.activeFixture(1000)
	before := s.tk.BankKeeper.GetAllBalances(s.ctx, s.owner).AmountOf(types.DefaultDenom)

	resp, err := srv.CloseLease(s.ctx, types.NewMsgCloseLease(s.owner.String(), s.leaseID()))
	s.Require().NoError(err)
	s.Equal(types.LeaseClosedOwner, resp.Reason)
	s.Equal(s.ctx.BlockTime().Unix(), resp.ClosedOn)

	after := s.tk.BankKeeper.GetAllBalances(s.ctx, s.owner).AmountOf(types.DefaultDenom)
	s.Equal(before.Add(math.NewInt(1000)), after)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateRefunded, stored.State)
}

func (s *MarketTestSuite) TestMsgCloseLease_ProviderLeavesEscrow() {
	srv := s.msgServer()
	escrow := s.activeFixture(1000)

	resp, err := srv.CloseLease(s.ctx, types.NewMsgCloseLease(s.provider.String(), s.leaseID()))
	s.Require().NoError(err)
	s.Equal(types.LeaseClosedDecommission, resp.Reason)

	// Provider close never touches the buyer's escrow
	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateActive, stored.State)
}

func (s *MarketTestSuite) TestMsgCloseLease_Idempotent() {
	srv := s.msgServer()
	s.activeFixture(1000)

	first, err := srv.CloseLease(s.ctx, types.NewMsgCloseLease(s.owner.String(), s.leaseID()))
	s.Require().NoError(err)

	second, err := srv.CloseLease(s.ctx, types.NewMsgCloseLease(s.owner.String(), s.leaseID()))
	s.Require().NoError(err)
	s.Equal(first.ClosedOn, second.ClosedOn)
	s.Equal(first.Reason, second.Reason)
}

func (s *MarketTestSuite) TestMsgCloseLease_OnlyParties() {
	srv := s.msgServer()
	s.activeFixture(1000)

	stranger := sdk.AccAddress(secp256k1.GenPrivKey().PubKey().Address()).String()
	_, err := srv.CloseLease(s.ctx, types.NewMsgCloseLease(stranger, s.leaseID()))
	s.ErrorIs(err, types.ErrUnauthorized)
}

func (s *MarketTestSuite) TestMsgUpdateParams() {
	srv := s.msgServer()

	params := types.DefaultParams()
	params.FeeRate = math.LegacyMustNewDecFromStr("0.2")

	_, err := srv.UpdateParams(s.ctx, types.NewMsgUpdateParams(s.owner.String(), params))
	s.ErrorIs(err, types.ErrUnauthorized)

	_, err = srv.UpdateParams(s.ctx, types.NewMsgUpdateParams(s.tk.Authority, params))
	s.Require().NoError(err)

	stored, err := s.k.GetParams(s.ctx)
	s.Require().NoError(err)
	s.Equal(params.FeeRate, stored.FeeRate)
}
