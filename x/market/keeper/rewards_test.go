package keeper_test

import (
	"cosmossdk.io/math"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

func (s *MarketTestSuite) TestClaimRewards() {
	s.setFeeRate("0.1")
	s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)
	_, err := s.k.SettleOrder(s.ctx, s.orderID(), []string{record.UsageID}, false)
	s.Require().NoError(err)

	before := s.tk.BankKeeper.GetAllBalances(s.ctx, s.provider).AmountOf(types.DefaultDenom)

	claimed, err := s.k.ClaimRewards(s.ctx, s.provider, "settlement")
	s.Require().NoError(err)
	s.Equal(math.NewInt(45), claimed)

	after := s.tk.BankKeeper.GetAllBalances(s.ctx, s.provider).AmountOf(types.DefaultDenom)
	s.Equal(before.Add(math.NewInt(45)), after)

	// Accumulator zeroed: second claim has nothing
	_, err = s.k.ClaimRewards(s.ctx, s.provider, "settlement")
	s.ErrorIs(err, types.ErrNothingToClaim)
}

func (s *MarketTestSuite) TestClaimRewards_AllSources() {
	s.setFeeRate("0.1")
	escrow := s.activeFixture(1000)

	_, _, _, err := s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(100), "settlement")
	s.Require().NoError(err)
	_, _, _, err = s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(100), "bonus")
	s.Require().NoError(err)

	claimed, err := s.k.ClaimRewards(s.ctx, s.provider, "")
	s.Require().NoError(err)
	s.Equal(math.NewInt(180), claimed) // 90 per release after the 10% fee
}

func (s *MarketTestSuite) TestClaimRewards_Accumulates() {
	s.setFeeRate("0")
	escrow := s.activeFixture(1000)

	_, _, _, err := s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(100), "settlement")
	s.Require().NoError(err)
	_, _, _, err = s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(150), "settlement")
	s.Require().NoError(err)

	reward, found, err := s.k.GetReward(s.ctx, s.provider.String(), "settlement")
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(math.NewInt(250), reward.Amount)
}

func (s *MarketTestSuite) TestClaimRewards_NothingForStranger() {
	_, err := s.k.ClaimRewards(s.ctx, s.owner, "")
	s.ErrorIs(err, types.ErrNothingToClaim)
}
