package keeper_test

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

func (s *MarketTestSuite) TestCreateEscrow() {
	escrow := s.createEscrow(1000)

	s.Equal(types.EscrowIDForOrder(s.orderID()), escrow.EscrowID)
	s.Equal(types.EscrowStateCreated, escrow.State)
	s.Equal(math.NewInt(1000), escrow.Balance)
	s.True(escrow.Released.IsZero())
	s.True(escrow.Refunded.IsZero())

	// Deposit moved into module custody
	moduleAddr := s.tk.AccountKeeper.GetModuleAddress(types.ModuleName)
	held := s.tk.BankKeeper.GetAllBalances(s.ctx, moduleAddr)
	s.Equal(math.NewInt(1000), held.AmountOf(types.DefaultDenom))
}

func (s *MarketTestSuite) TestCreateEscrow_Duplicate() {
	s.createEscrow(1000)

	_, err := s.k.CreateEscrow(s.ctx, s.owner, s.orderID(), math.NewInt(500), 86400)
	s.ErrorIs(err, types.ErrDuplicateEscrow)
}

func (s *MarketTestSuite) TestCreateEscrow_BadAmounts() {
	_, err := s.k.CreateEscrow(s.ctx, s.owner, s.orderID(), math.NewInt(0), 86400)
	s.ErrorIs(err, types.ErrInvalidAmount)

	_, err = s.k.CreateEscrow(s.ctx, s.owner, s.orderID(), math.NewInt(-5), 86400)
	s.ErrorIs(err, types.ErrInvalidAmount)

	_, err = s.k.CreateEscrow(s.ctx, s.owner, s.orderID(), math.NewInt(100), 0)
	s.ErrorIs(err, types.ErrValidationFailed)
}

func (s *MarketTestSuite) TestCreateEscrow_InsufficientDeposit() {
	poor := sdk.AccAddress([]byte("no_balance_account__"))
	_, err := s.k.CreateEscrow(s.ctx, poor, s.orderID(), math.NewInt(1000), 86400)
	s.Error(err)

	_, err = s.k.GetEscrowForOrder(s.ctx, s.orderID())
	s.ErrorIs(err, types.ErrEscrowNotFound)
}

func (s *MarketTestSuite) TestActivateEscrow() {
	s.createLease()
	escrow := s.createEscrow(1000)

	activatedAt, err := s.k.ActivateEscrow(s.ctx, escrow.EscrowID, s.leaseID(), s.provider)
	s.Require().NoError(err)
	s.Equal(s.ctx.BlockTime().Unix(), activatedAt)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateActive, stored.State)
	s.Equal(s.provider.String(), stored.Recipient)
	s.Equal(s.leaseID(), stored.LeaseID)

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateActive, lease.State)
}

func (s *MarketTestSuite) TestActivateEscrow_WrongOrder() {
	s.createLease()
	escrow := s.createEscrow(1000)

	other := s.leaseID()
	other.DSeq = 99
	_, err := s.k.ActivateEscrow(s.ctx, escrow.EscrowID, other, s.provider)
	s.ErrorIs(err, types.ErrInvalidID)
}

func (s *MarketTestSuite) TestActivateEscrow_Twice() {
	escrow := s.activeFixture(1000)

	_, err := s.k.ActivateEscrow(s.ctx, escrow.EscrowID, s.leaseID(), s.provider)
	s.ErrorIs(err, types.ErrInvalidEscrowState)
}

func (s *MarketTestSuite) TestReleaseEscrow_FeeSplit() {
	s.setFeeRate("0.1")
	escrow := s.activeFixture(1000)

	providerShare, platformFee, _, err := s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(50), "settlement")
	s.Require().NoError(err)
	s.Equal(math.NewInt(45), providerShare)
	s.Equal(math.NewInt(5), platformFee)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(math.NewInt(950), stored.Balance)
	s.Equal(math.NewInt(50), stored.Released)
	s.Equal(types.EscrowStateActive, stored.State)

	// Fee paid to the fee collector, share parked as a claimable reward
	feeAddr := s.tk.AccountKeeper.GetModuleAddress(authtypes.FeeCollectorName)
	s.Equal(math.NewInt(5), s.tk.BankKeeper.GetAllBalances(s.ctx, feeAddr).AmountOf(types.DefaultDenom))

	reward, found, err := s.k.GetReward(s.ctx, s.provider.String(), "settlement")
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(math.NewInt(45), reward.Amount)
}

func (s *MarketTestSuite) TestReleaseEscrow_ExhaustionTerminates() {
	escrow := s.activeFixture(100)

	_, _, _, err := s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(100), "settlement")
	s.Require().NoError(err)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateReleased, stored.State)
	s.True(stored.Balance.IsZero())

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateClosed, lease.State)
}

func (s *MarketTestSuite) TestReleaseEscrow_InsufficientBalance() {
	escrow := s.activeFixture(100)

	_, _, _, err := s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(500), "settlement")
	s.ErrorIs(err, types.ErrInsufficientEscrowBalance)

	// Economic failure surfaces on the lease, not just the error
	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateInsufficientFunds, lease.State)

	// Balance untouched
	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(math.NewInt(100), stored.Balance)
}

func (s *MarketTestSuite) TestRefundEscrow() {
	escrow := s.activeFixture(1000)
	before := s.tk.BankKeeper.GetAllBalances(s.ctx, s.owner).AmountOf(types.DefaultDenom)

	refunded, _, err := s.k.RefundEscrow(s.ctx, escrow.EscrowID, "done", types.LeaseClosedOwner)
	s.Require().NoError(err)
	s.Equal(math.NewInt(1000), refunded)

	after := s.tk.BankKeeper.GetAllBalances(s.ctx, s.owner).AmountOf(types.DefaultDenom)
	s.Equal(before.Add(math.NewInt(1000)), after)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateRefunded, stored.State)

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateClosed, lease.State)
	s.Equal(types.LeaseClosedOwner, lease.Reason)
}

func (s *MarketTestSuite) TestRefundEscrow_FailedTransferLeavesEscrowOpen() {
	escrow := s.activeFixture(1000)

	// Drain module custody so the refund transfer cannot succeed
	moduleAddr := s.tk.AccountKeeper.GetModuleAddress(types.ModuleName)
	held := s.tk.BankKeeper.GetAllBalances(s.ctx, moduleAddr)
	s.Require().NoError(s.tk.BankKeeper.SendCoinsFromModuleToAccount(s.ctx, types.ModuleName, s.provider, held))

	_, _, err := s.k.RefundEscrow(s.ctx, escrow.EscrowID, "drained", types.LeaseClosedOwner)
	s.Error(err)

	// The escrow did not go terminal: the refund stays retryable
	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateActive, stored.State)
	s.Equal(math.NewInt(1000), stored.Balance)
	s.True(stored.Refunded.IsZero())

	lease, err := s.k.GetLease(s.ctx, s.leaseID())
	s.Require().NoError(err)
	s.Equal(types.LeaseStateActive, lease.State)
}

func (s *MarketTestSuite) TestRefundEscrow_DoubleRefund() {
	escrow := s.activeFixture(1000)

	_, _, err := s.k.RefundEscrow(s.ctx, escrow.EscrowID, "done", types.LeaseClosedOwner)
	s.Require().NoError(err)

	// Terminal: second refund is a state error, not a no-op
	_, _, err = s.k.RefundEscrow(s.ctx, escrow.EscrowID, "again", types.LeaseClosedOwner)
	s.ErrorIs(err, types.ErrInvalidEscrowState)
}

func (s *MarketTestSuite) TestDisputeEscrow_FreezesFunds() {
	escrow := s.activeFixture(1000)

	_, err := s.k.DisputeEscrow(s.ctx, escrow.EscrowID, "provider offline", []byte("logs"))
	s.Require().NoError(err)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.Equal(types.EscrowStateDisputed, stored.State)
	s.Equal("provider offline", stored.DisputeReason)

	// No release or refund moves funds out of a disputed escrow
	_, _, _, err = s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(10), "settlement")
	s.ErrorIs(err, types.ErrInvalidEscrowState)

	_, _, err = s.k.RefundEscrow(s.ctx, escrow.EscrowID, "refund", types.LeaseClosedOwner)
	s.ErrorIs(err, types.ErrInvalidEscrowState)
}

func (s *MarketTestSuite) TestDisputeEscrow_RequiresActive() {
	s.createLease()
	escrow := s.createEscrow(1000)

	_, err := s.k.DisputeEscrow(s.ctx, escrow.EscrowID, "too early", nil)
	s.ErrorIs(err, types.ErrInvalidEscrowState)
}

func (s *MarketTestSuite) TestEscrowAccountingInvariantHolds() {
	s.setFeeRate("0.1")
	escrow := s.activeFixture(1000)
	_, _, _, err := s.k.ReleaseEscrow(s.ctx, escrow.EscrowID, math.NewInt(300), "settlement")
	s.Require().NoError(err)

	stored, err := s.k.GetEscrow(s.ctx, escrow.EscrowID)
	s.Require().NoError(err)
	s.NoError(stored.Validate())
	s.Equal(stored.Amount, stored.Balance.Add(stored.Released).Add(stored.Refunded))
}
