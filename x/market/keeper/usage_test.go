package keeper_test

import (
	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

func (s *MarketTestSuite) TestRecordUsage() {
	s.activeFixture(1000)

	record := s.recordUsage(10, "cpu", 0, 60, 5)

	s.Equal(types.UsageIDFor(s.orderID(), 0, 60, "cpu"), record.UsageID)
	s.Equal(math.NewInt(50), record.TotalCost)
	s.False(record.Settled())

	stored, err := s.k.GetUsageRecord(s.ctx, record.UsageID)
	s.Require().NoError(err)
	s.Equal(record.UsageID, stored.UsageID)
}

func (s *MarketTestSuite) TestRecordUsage_Idempotent() {
	s.activeFixture(1000)

	first := s.recordUsage(10, "cpu", 0, 60, 5)
	second := s.recordUsage(10, "cpu", 0, 60, 5)

	s.Equal(first.UsageID, second.UsageID)

	// Still exactly one record, no double count
	records, err := s.k.OrderUsageRecords(s.ctx, s.orderID(), false)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *MarketTestSuite) TestRecordUsage_ConflictingResubmission() {
	s.activeFixture(1000)
	s.recordUsage(10, "cpu", 0, 60, 5)

	// Same interval and type, different units: not an idempotent replay
	price := math.NewInt(5)
	_, err := s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 99, "cpu", 0, 60, price,
		s.signUsage(99, "cpu", 0, 60, price))
	s.ErrorIs(err, types.ErrOverlap)
}

func (s *MarketTestSuite) TestRecordUsage_Overlap() {
	s.activeFixture(1000)
	s.recordUsage(10, "cpu", 0, 60, 5)

	price := math.NewInt(5)
	_, err := s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 10, "cpu", 30, 90, price,
		s.signUsage(10, "cpu", 30, 90, price))
	s.ErrorIs(err, types.ErrOverlap)

	// Adjacent half-open interval is fine
	_, err = s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 10, "cpu", 60, 120, price,
		s.signUsage(10, "cpu", 60, 120, price))
	s.NoError(err)
}

func (s *MarketTestSuite) TestRecordUsage_OverlapIsPerUsageType() {
	s.activeFixture(1000)
	s.recordUsage(10, "cpu", 0, 60, 5)

	// A second meter over the same period is a separate billing stream
	s.recordUsage(20, "memory", 0, 60, 2)

	records, err := s.k.OrderUsageRecords(s.ctx, s.orderID(), false)
	s.Require().NoError(err)
	s.Len(records, 2)
}

func (s *MarketTestSuite) TestRecordUsage_BadPeriod() {
	s.activeFixture(1000)

	price := math.NewInt(5)
	_, err := s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 10, "cpu", 60, 60, price,
		s.signUsage(10, "cpu", 60, 60, price))
	s.ErrorIs(err, types.ErrInvalidPeriod)
}

func (s *MarketTestSuite) TestRecordUsage_BadSignature() {
	s.activeFixture(1000)

	_, err := s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 10, "cpu", 0, 60, math.NewInt(5),
		[]byte("not a signature"))
	s.ErrorIs(err, types.ErrUnauthorized)
}

func (s *MarketTestSuite) TestRecordUsage_TamperedFields() {
	s.activeFixture(1000)

	// Signature over 10 units, submission claims 100
	sig := s.signUsage(10, "cpu", 0, 60, math.NewInt(5))
	_, err := s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 100, "cpu", 0, 60, math.NewInt(5), sig)
	s.ErrorIs(err, types.ErrUnauthorized)
}

func (s *MarketTestSuite) TestRecordUsage_LeaseNotActive() {
	s.createLease()
	s.createEscrow(1000)
	// Escrow never activated, lease still Invalid

	price := math.NewInt(5)
	_, err := s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 10, "cpu", 0, 60, price,
		s.signUsage(10, "cpu", 0, 60, price))
	s.ErrorIs(err, types.ErrLeaseNotActive)
}

func (s *MarketTestSuite) TestRecordUsage_UnknownProvider() {
	unregistered := secp256k1.GenPrivKey()
	leaseID := s.leaseID()
	leaseID.Provider = sdk.AccAddress(unregistered.PubKey().Address()).String()

	_, err := s.k.CreateLease(s.ctx, leaseID, sdk.NewInt64Coin(types.DefaultDenom, 5))
	s.Require().NoError(err)
	escrow, err := s.k.CreateEscrow(s.ctx, s.owner, s.orderID(), math.NewInt(1000), 86400)
	s.Require().NoError(err)
	_, err = s.k.ActivateEscrow(s.ctx, escrow.EscrowID, leaseID, sdk.AccAddress(unregistered.PubKey().Address()))
	s.Require().NoError(err)

	price := math.NewInt(5)
	digest := types.UsageSignBytes(s.orderID(), leaseID, 10, "cpu", 0, 60, price)
	sig, err := unregistered.Sign(digest)
	s.Require().NoError(err)

	_, err = s.k.RecordUsage(s.ctx, s.orderID(), leaseID, 10, "cpu", 0, 60, price, sig)
	s.ErrorIs(err, types.ErrUnauthorized)
}

func (s *MarketTestSuite) TestRecordUsage_ZeroUnits() {
	s.activeFixture(1000)

	price := math.NewInt(5)
	record, err := s.k.RecordUsage(s.ctx, s.orderID(), s.leaseID(), 0, "cpu", 0, 60, price,
		s.signUsage(0, "cpu", 0, 60, price))
	s.Require().NoError(err)
	s.True(record.TotalCost.IsZero())
}

func (s *MarketTestSuite) TestAcknowledgeUsage() {
	s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)

	ackAt, err := s.k.AcknowledgeUsage(s.ctx, s.owner, record.UsageID, []byte("ack"))
	s.Require().NoError(err)
	s.Equal(s.ctx.BlockTime().Unix(), ackAt)

	stored, err := s.k.GetUsageRecord(s.ctx, record.UsageID)
	s.Require().NoError(err)
	s.Equal(ackAt, stored.AcknowledgedAt)

	// Repeat acknowledgement keeps the original timestamp
	again, err := s.k.AcknowledgeUsage(s.ctx, s.owner, record.UsageID, []byte("ack"))
	s.Require().NoError(err)
	s.Equal(ackAt, again)
}

func (s *MarketTestSuite) TestAcknowledgeUsage_OnlyOwner() {
	s.activeFixture(1000)
	record := s.recordUsage(10, "cpu", 0, 60, 5)

	_, err := s.k.AcknowledgeUsage(s.ctx, s.provider, record.UsageID, []byte("ack"))
	s.ErrorIs(err, types.ErrUnauthorized)
}
