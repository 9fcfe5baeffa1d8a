package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// RegisterInvariants registers the market module invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "escrow-accounting", EscrowAccountingInvariant(k))
	ir.RegisterRoute(types.ModuleName, "settlement-totals", SettlementTotalsInvariant(k))
	ir.RegisterRoute(types.ModuleName, "lease-state", LeaseStateInvariant(k))
	ir.RegisterRoute(types.ModuleName, "module-solvency", ModuleSolvencyInvariant(k))
}

// EscrowAccountingInvariant checks that every escrow account balances:
// balance + released + refunded = amount, with no component negative.
func EscrowAccountingInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		var broken bool

		_ = k.IterateEscrows(ctx, func(escrow types.Escrow) bool {
			if err := escrow.Validate(); err != nil {
				msg += fmt.Sprintf("\tescrow %s: %v\n", escrow.EscrowID, err)
				broken = true
			}
			return false
		})

		return sdk.FormatInvariant(types.ModuleName, "escrow-accounting",
			fmt.Sprintf("escrow accounting violations:\n%s", msg)), broken
	}
}

// SettlementTotalsInvariant checks that every settlement splits exactly and
// that no usage record has been folded into more than one settlement.
func SettlementTotalsInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		var broken bool

		settledBy := make(map[string]string)
		_ = k.IterateSettlements(ctx, func(settlement types.Settlement) bool {
			if err := settlement.Validate(); err != nil {
				msg += fmt.Sprintf("\tsettlement %s: %v\n", settlement.SettlementID, err)
				broken = true
			}
			for _, usageID := range settlement.UsageRecordIDs {
				if prior, ok := settledBy[usageID]; ok {
					msg += fmt.Sprintf("\tusage record %s in settlements %s and %s\n", usageID, prior, settlement.SettlementID)
					broken = true
					continue
				}
				settledBy[usageID] = settlement.SettlementID
			}
			return false
		})

		_ = k.IterateUsageRecords(ctx, func(record types.UsageRecord) bool {
			if record.Settled() && settledBy[record.UsageID] != record.SettlementID {
				msg += fmt.Sprintf("\tusage record %s claims settlement %s, found %q\n",
					record.UsageID, record.SettlementID, settledBy[record.UsageID])
				broken = true
			}
			return false
		})

		return sdk.FormatInvariant(types.ModuleName, "settlement-totals",
			fmt.Sprintf("settlement violations:\n%s", msg)), broken
	}
}

// LeaseStateInvariant checks the structural shape of every lease:
// closed_on set iff Closed, close reason only on closed leases.
func LeaseStateInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		var broken bool

		_ = k.IterateLeases(ctx, func(lease types.Lease) bool {
			if err := lease.Validate(); err != nil {
				msg += fmt.Sprintf("\tlease %s: %v\n", lease.ID, err)
				broken = true
			}
			return false
		})

		return sdk.FormatInvariant(types.ModuleName, "lease-state",
			fmt.Sprintf("lease state violations:\n%s", msg)), broken
	}
}

// ModuleSolvencyInvariant checks that the module account holds at least the
// open escrow balances plus the unclaimed rewards.
func ModuleSolvencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		params, err := k.GetParams(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "module-solvency", err.Error()), true
		}

		owed := math.ZeroInt()
		_ = k.IterateEscrows(ctx, func(escrow types.Escrow) bool {
			// Disputed escrows are frozen, not paid out; custody still covers them.
			if escrow.IsOpen() || escrow.State == types.EscrowStateDisputed {
				owed = owed.Add(escrow.Balance)
			}
			return false
		})
		_ = k.IterateRewards(ctx, func(accumulator types.RewardAccumulator) bool {
			owed = owed.Add(accumulator.Amount)
			return false
		})

		moduleAddr := k.accountKeeper.GetModuleAddress(types.ModuleName)
		held := k.bankKeeper.GetAllBalances(ctx, moduleAddr).AmountOf(params.Denom)

		broken := held.LT(owed)
		return sdk.FormatInvariant(types.ModuleName, "module-solvency",
			fmt.Sprintf("module account holds %s%s, owes %s%s", held, params.Denom, owed, params.Denom)), broken
	}
}
