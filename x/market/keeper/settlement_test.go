package keeper_test

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// TestSettleOrder_FullFlow walks escrow -> usage -> settlement end to end:
// 1000 in escrow, 10 units at price 5, 10% fee splits 50 into 45 + 5.
func (s *MarketTestSuite) TestSettleOrder_FullFlow() {
	s.setFeeRate("0.1")
	escrow := s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)

	settlement, err := s.k.SettleOrder(s.ctx, s.orderID(), []string{record.UsageID}, false)
	s.Require().NoError(err)

	s.Equal(math.NewInt(50), settlement.TotalAmount)
	s.Equal(math.NewInt(45), settlement.ProviderShare)
	s.Equal(math.NewInt(5), settlement.PlatformFee)
	s.False(settlement.IsFinal)
	s.NoError(settlement.Validate())

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(math.NewInt(950), stored.Balance)

	// Record now carries its settlement reference
	settled, err := s.k.GetUsageRecord(s.ctx, record.UsageID)
	s.Require().NoError(err)
	s.Equal(settlement.SettlementID, settled.SettlementID)
}

func (s *MarketTestSuite) TestSettleOrder_AlreadySettled() {
	s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)

	_, err := s.k.SettleOrder(s.ctx, s.orderID(), []string{record.UsageID}, false)
	s.Require().NoError(err)

	_, err = s.k.SettleOrder(s.ctx, s.orderID(), []string{record.UsageID}, false)
	s.ErrorIs(err, types.ErrAlreadySettled)
}

func (s *MarketTestSuite) TestSettleOrder_EmptyDefaultsToUnsettled() {
	s.activeFixture(1000)
	s.recordUsage(10, "cpu", 0, 60, 5)
	s.recordUsage(20, "memory", 0, 60, 2)

	settlement, err := s.k.SettleOrder(s.ctx, s.orderID(), nil, false)
	s.Require().NoError(err)
	s.Len(settlement.UsageRecordIDs, 2)
	s.Equal(math.NewInt(90), settlement.TotalAmount)

	// Nothing left to settle
	_, err = s.k.SettleOrder(s.ctx, s.orderID(), nil, false)
	s.ErrorIs(err, types.ErrEmptySettlement)
}

// TestSettleOrder_PartitionConsistency checks that settlements partition the
// accepted records: disjoint union covering everything settled so far.
func (s *MarketTestSuite) TestSettleOrder_PartitionConsistency() {
	s.activeFixture(10_000)

	var usageIDs []string
	for i := int64(0); i < 6; i++ {
		record := s.recordUsage(10, "cpu", i*60, (i+1)*60, 5)
		usageIDs = append(usageIDs, record.UsageID)
	}

	first, err := s.k.SettleOrder(s.ctx, s.orderID(), usageIDs[:2], false)
	s.Require().NoError(err)
	second, err := s.k.SettleOrder(s.ctx, s.orderID(), usageIDs[2:4], false)
	s.Require().NoError(err)
	third, err := s.k.SettleOrder(s.ctx, s.orderID(), nil, false)
	s.Require().NoError(err)

	seen := make(map[string]int)
	for _, settlement := range []*types.Settlement{first, second, third} {
		for _, id := range settlement.UsageRecordIDs {
			seen[id]++
		}
	}
	s.Len(seen, 6)
	for id, count := range seen {
		s.Equal(1, count, "record %s settled %d times", id, count)
	}
}

// TestSettleOrder_InsufficientBalance is the over-settlement path: the call
// fails, no settlement is persisted, and the lease flips to
// InsufficientFunds.
func (s *MarketTestSuite) TestSettleOrder_InsufficientBalance() {
	s.activeFixture(40)
	record := s.recordUsage(10, "cpu", 0, 60, 5) // cost 50 > balance 40

	_, err := s.k.SettleOrder(s.ctx, s.orderID(), []string{record.UsageID}, false)
	s.ErrorIs(err, types.ErrInsufficientEscrowBalance)

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateInsufficientFunds, lease.State)

	// Record still unsettled, no settlement written
	stored, err := s.k.GetUsageRecord(s.ctx, record.UsageID)
	s.Require().NoError(err)
	s.False(stored.Settled())

	err = s.k.IterateOrderSettlements(s.ctx, s.orderID(), func(types.Settlement) bool {
		s.Fail("no settlement should exist")
		return true
	})
	s.NoError(err)
}

func (s *MarketTestSuite) TestSettleOrder_Final() {
	s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)

	settlement, err := s.k.SettleOrder(s.ctx, s.orderID(), []string{record.UsageID}, true)
	s.Require().NoError(err)
	s.True(settlement.IsFinal)
	s.True(s.k.IsOrderFinalized(s.ctx, s.orderID()))

	// No usage after finalization
	price := math.NewInt(5)
	_, err = s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 10, "cpu", 60, 120, price,
		s.signUsage(10, "cpu", 60, 120, price))
	s.ErrorIs(err, types.ErrOrderAlreadyFinalized)

	// And no further settlements
	_, err = s.k.SettleOrder(s.ctx, s.orderID(), nil, false)
	s.ErrorIs(err, types.ErrOrderAlreadyFinalized)
}

func (s *MarketTestSuite) TestSettleOrder_ForeignRecordRejected() {
	s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)

	other := s.orderID()
	other.DSeq = 99
	_, err := s.k.SettleOrder(s.ctx, other, []string{record.UsageID}, false)
	s.ErrorIs(err, types.ErrInvalidID)
}

func (s *MarketTestSuite) TestSettleOrder_RecordLimit() {
	params, err := s.k.GetParams(s.ctx)
	s.Require().NoError(err)
	params.MaxSettlementRecords = 2
	s.Require().NoError(s.k.SetParams(s.ctx, params))

	s.activeFixture(10_000)
	for i := int64(0); i < 3; i++ {
		s.recordUsage(10, "cpu", i*60, (i+1)*60, 5)
	}

	_, err = s.k.SettleOrder(s.ctx, s.orderID(), nil, false)
	s.ErrorIs(err, types.ErrValidationFailed)
}

func (s *MarketTestSuite) TestSettleOrder_EventAttributes() {
	s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)

	_, err := s.k.SettleOrder(s.ctx, s.orderID(), []string{record.UsageID}, false)
	s.Require().NoError(err)

	s.Equal(sdk.NewInt64Coin(types.DefaultDenom, 5).String(), s.eventAttr(types.EventTypeLeaseCreated, types.AttributeKeyPrice))
	s.Equal("1", s.eventAttr(types.EventTypeOrderSettled, types.AttributeKeyRecordCount))
}

// TestFeeSplit_Property checks the split invariant across fee rates:
// share + fee = total and fee = round_down(total * f).
func (s *MarketTestSuite) TestFeeSplit_Property() {
	totals := []int64{1, 7, 50, 999, 1_000_000}
	rates := []string{"0", "0.01", "0.05", "0.1", "0.333", "0.5", "0.999"}

	for _, total := range totals {
		for _, rate := range rates {
			name := fmt.Sprintf("total=%d rate=%s", total, rate)
			amt := math.NewInt(total)
			feeRate := math.LegacyMustNewDecFromStr(rate)

			share, fee := types.SplitSettlementAmount(amt, feeRate)
			s.Equal(amt, share.Add(fee), name)
			s.Equal(feeRate.MulInt(amt).TruncateInt(), fee, name)
			s.False(share.IsNegative(), name)
			s.False(fee.IsNegative(), name)
		}
	}
}
