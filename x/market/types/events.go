package types

// Event types for the market module.
// All event types use lowercase with underscore separator (module_action format)
const (
	// Escrow events
	EventTypeEscrowCreated   = "market_escrow_created"
	EventTypeEscrowActivated = "market_escrow_activated"
	EventTypeEscrowReleased  = "market_escrow_released"
	EventTypeEscrowRefunded  = "market_escrow_refunded"
	EventTypeEscrowDisputed  = "market_escrow_disputed"

	// Usage events
	EventTypeUsageRecorded     = "market_usage_recorded"
	EventTypeUsageAcknowledged = "market_usage_acknowledged"

	// Settlement events
	EventTypeOrderSettled   = "market_order_settled"
	EventTypeOrderFinalized = "market_order_finalized"
	EventTypeRewardsClaimed = "market_rewards_claimed"

	// Lease events
	EventTypeLeaseCreated           = "market_lease_created"
	EventTypeLeaseActivated         = "market_lease_activated"
	EventTypeLeaseInsufficientFunds = "market_lease_insufficient_funds"
	EventTypeLeaseClosed            = "market_lease_closed"
)

// Event attribute keys for the market module
const (
	AttributeKeyEscrowID      = "escrow_id"
	AttributeKeyOrderID       = "order_id"
	AttributeKeyLeaseID       = "lease_id"
	AttributeKeyUsageID       = "usage_id"
	AttributeKeySettlementID  = "settlement_id"
	AttributeKeySender        = "sender"
	AttributeKeyRecipient     = "recipient"
	AttributeKeyOwner         = "owner"
	AttributeKeyProvider      = "provider"
	AttributeKeyAmount        = "amount"
	AttributeKeyBalance       = "balance"
	AttributeKeyPrice         = "price"
	AttributeKeyTotalAmount   = "total_amount"
	AttributeKeyProviderShare = "provider_share"
	AttributeKeyPlatformFee   = "platform_fee"
	AttributeKeyTotalCost     = "total_cost"
	AttributeKeyUsageUnits    = "usage_units"
	AttributeKeyUsageType     = "usage_type"
	AttributeKeyRecordCount   = "record_count"
	AttributeKeyReason        = "reason"
	AttributeKeySource        = "source"
	AttributeKeyState         = "state"
	AttributeKeyIsFinal       = "is_final"
	AttributeKeyExpiresAt     = "expires_at"
)
