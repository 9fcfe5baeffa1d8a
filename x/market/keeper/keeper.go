package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/virtengine/virtengine-sub008/x/market/types"
)

// Keeper of the market store. All state transitions are deterministic: time
// is always taken from the block context, never sampled.
type Keeper struct {
	storeKey       storetypes.StoreKey
	cdc            codec.Codec
	bankKeeper     types.BankKeeper
	accountKeeper  types.AccountKeeper
	providerKeeper types.ProviderKeeper
	authority      string
}

type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

// NewKeeper creates a new market Keeper instance
func NewKeeper(
	cdc codec.Codec,
	key storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	accountKeeper types.AccountKeeper,
	providerKeeper types.ProviderKeeper,
	authority string,
) *Keeper {
	return &Keeper{
		storeKey:       key,
		cdc:            cdc,
		bankKeeper:     bankKeeper,
		accountKeeper:  accountKeeper,
		providerKeeper: providerKeeper,
		authority:      authority,
	}
}

// GetAuthority returns the module's authority address
func (k Keeper) GetAuthority() string {
	return k.authority
}

// Logger returns a module-scoped logger
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// getStore returns the KVStore for the market module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}

	unwrapped := sdk.UnwrapSDKContext(ctx)
	return unwrapped.KVStore(k.storeKey)
}

// setJSON stores an entity under key as canonical JSON
func (k Keeper) setJSON(ctx context.Context, key []byte, value any) error {
	bz, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %T: %w", value, err)
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

// jsonUnmarshal decodes a raw store value, used by the iterators
func jsonUnmarshal(bz []byte, value any) error {
	if err := json.Unmarshal(bz, value); err != nil {
		return fmt.Errorf("unmarshal %T: %w", value, err)
	}
	return nil
}

// getJSON loads an entity from key, reporting whether it was present
func (k Keeper) getJSON(ctx context.Context, key []byte, value any) (bool, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, value); err != nil {
		return false, fmt.Errorf("unmarshal %T: %w", value, err)
	}
	return true, nil
}
