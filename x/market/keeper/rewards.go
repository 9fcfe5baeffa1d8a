package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// creditReward accrues amount to the (recipient, source) accumulator. The
// funds stay in module custody until claimed.
func (k Keeper) creditReward(ctx context.Context, recipient, source string, amount math.Int) error {
	if source == "" {
		source = "settlement"
	}

	accumulator := types.RewardAccumulator{
		Recipient: recipient,
		Source:    source,
		Amount:    amount,
	}
	if existing, found, err := k.GetReward(ctx, recipient, source); err != nil {
		return err
	} else if found {
		accumulator.Amount = existing.Amount.Add(amount)
	}

	return k.SetReward(ctx, accumulator)
}

// ClaimRewards pays out the sender's accrued rewards from module custody.
// A non-empty source claims that accumulator alone; an empty source claims
// every accumulator the sender holds.
func (k Keeper) ClaimRewards(ctx context.Context, sender sdk.AccAddress, source string) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	zero := math.ZeroInt()
	recipient := sender.String()

	var claimed []types.RewardAccumulator
	if source != "" {
		accumulator, found, err := k.GetReward(ctx, recipient, source)
		if err != nil {
			return zero, err
		}
		if found && accumulator.Amount.IsPositive() {
			claimed = append(claimed, *accumulator)
		}
	} else {
		err := k.IterateRecipientRewards(ctx, recipient, func(accumulator types.RewardAccumulator) bool {
			if accumulator.Amount.IsPositive() {
				claimed = append(claimed, accumulator)
			}
			return false
		})
		if err != nil {
			return zero, err
		}
	}

	if len(claimed) == 0 {
		return zero, types.ErrNothingToClaim.Wrapf("recipient %s", recipient)
	}

	total := math.ZeroInt()
	store := k.getStore(ctx)
	for _, accumulator := range claimed {
		total = total.Add(accumulator.Amount)
		store.Delete(types.RewardKey(accumulator.Recipient, accumulator.Source))
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return zero, fmt.Errorf("ClaimRewards: get params: %w", err)
	}
	payout := sdk.NewCoins(sdk.NewCoin(params.Denom, total))
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, sender, payout); err != nil {
		return zero, fmt.Errorf("ClaimRewards: pay out: %w", err)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRewardsClaimed,
			sdk.NewAttribute(types.AttributeKeyRecipient, recipient),
			sdk.NewAttribute(types.AttributeKeyAmount, total.String()),
			sdk.NewAttribute(types.AttributeKeySource, source),
		),
	)

	return total, nil
}

// GetReward retrieves one (recipient, source) accumulator
func (k Keeper) GetReward(ctx context.Context, recipient, source string) (*types.RewardAccumulator, bool, error) {
	var accumulator types.RewardAccumulator
	found, err := k.getJSON(ctx, types.RewardKey(recipient, source), &accumulator)
	if err != nil {
		return nil, false, fmt.Errorf("GetReward: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &accumulator, true, nil
}

// SetReward stores a reward accumulator
func (k Keeper) SetReward(ctx context.Context, accumulator types.RewardAccumulator) error {
	if err := accumulator.Validate(); err != nil {
		return err
	}
	return k.setJSON(ctx, types.RewardKey(accumulator.Recipient, accumulator.Source), accumulator)
}

// IterateRecipientRewards walks the accumulators of one recipient
func (k Keeper) IterateRecipientRewards(ctx context.Context, recipient string, cb func(accumulator types.RewardAccumulator) (stop bool)) error {
	prefix := append(append([]byte{}, types.RewardKeyPrefix...), []byte(recipient)...)
	prefix = append(prefix, 0x00)
	return k.iterateRewardsPrefix(ctx, prefix, cb)
}

// IterateRewards walks every reward accumulator in store order
func (k Keeper) IterateRewards(ctx context.Context, cb func(accumulator types.RewardAccumulator) (stop bool)) error {
	return k.iterateRewardsPrefix(ctx, types.RewardKeyPrefix, cb)
}

func (k Keeper) iterateRewardsPrefix(ctx context.Context, prefix []byte, cb func(accumulator types.RewardAccumulator) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var accumulator types.RewardAccumulator
		if err := jsonUnmarshal(iterator.Value(), &accumulator); err != nil {
			return fmt.Errorf("iterate rewards: %w", err)
		}
		if cb(accumulator) {
			break
		}
	}
	return nil
}
