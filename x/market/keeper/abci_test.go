package keeper_test

import (
	"time"

	"cosmossdk.io/math"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

func (s *MarketTestSuite) TestEndBlocker_RefundsExpiredEscrow() {
	escrow := s.activeFixture(1000)
	before := s.tk.BankKeeper.GetAllBalances(s.ctx, s.owner).AmountOf(types.DefaultDenom)

	// Jump past the escrow expiry
	s.ctx = s.ctx.WithBlockTime(time.Unix(escrow.ExpiresAt()+1, 0))
	s.Require().NoError(s.k.EndBlocker(s.ctx))

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateRefunded, stored.State)

	after := s.tk.BankKeeper.GetAllBalances(s.ctx, s.owner).AmountOf(types.DefaultDenom)
	s.Equal(before.Add(math.NewInt(1000)), after)

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateClosed, lease.State)
	s.Equal(types.LeaseClosedInsufficientFunds, lease.Reason)
}

func (s *MarketTestSuite) TestEndBlocker_LeavesLiveEscrowAlone() {
	escrow := s.activeFixture(1000)

	s.ctx = s.ctx.WithBlockTime(time.Unix(escrow.ExpiresAt()-10, 0))
	s.Require().NoError(s.k.EndBlocker(s.ctx))

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateActive, stored.State)
}

func (s *MarketTestSuite) TestEndBlocker_ClosesLapsedLease() {
	escrow := s.activeFixture(100)

	// Drive the lease into InsufficientFunds
	_, _, _, err := s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(500), "settlement")
	s.ErrorIs(err, types.ErrInsufficientEscrowBalance)

	params, err := s.k.GetParams(s.ctx)
	s.Require().NoError(err)

	// Within the grace window nothing happens
	s.ctx = s.ctx.WithBlockTime(s.ctx.BlockTime().Add(time.Duration(params.InsufficientFundsGraceSeconds/2) * time.Second))
	s.Require().NoError(s.k.EndBlocker(s.ctx))

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateInsufficientFunds, lease.State)

	// Past the window the lease closes and the escrow refunds
	s.ctx = s.ctx.WithBlockTime(s.ctx.BlockTime().Add(time.Duration(params.InsufficientFundsGraceSeconds) * time.Second))
	s.Require().NoError(s.k.EndBlocker(s.ctx))

	lease, err = s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateClosed, lease.State)
	s.Equal(types.LeaseClosedInsufficientFunds, lease.Reason)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateRefunded, stored.State)
}

func (s *MarketTestSuite) TestEndBlocker_TerminalEscrowNotReprocessed() {
	escrow := s.activeFixture(1000)
	_, _, err := s.k.RefundEscrow(s.ctx, escrow.EscrowID, "done", types.LeaseClosedOwner)
	s.Require().NoError(err)

	// Expiry index entry was removed with the refund
	s.ctx = s.ctx.WithBlockTime(time.Unix(escrow.ExpiresAt()+1, 0))
	s.Require().NoError(s.k.EndBlocker(s.ctx))

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateRefunded, stored.State)
	s.Equal(math.NewInt(1000), stored.Refunded)
}
