package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterLegacyAminoCodec registers the necessary x/market interfaces and
// concrete types on the provided LegacyAmino codec. These types are used for
// Amino JSON serialization.
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&MsgCreateEscrow{}, "market/MsgCreateEscrow", nil)
	cdc.RegisterConcrete(&MsgActivateEscrow{}, "market/MsgActivateEscrow", nil)
	cdc.RegisterConcrete(&MsgReleaseEscrow{}, "market/MsgReleaseEscrow", nil)
	cdc.RegisterConcrete(&MsgRefundEscrow{}, "market/MsgRefundEscrow", nil)
	cdc.RegisterConcrete(&MsgDisputeEscrow{}, "market/MsgDisputeEscrow", nil)
	cdc.RegisterConcrete(&MsgRecordUsage{}, "market/MsgRecordUsage", nil)
	cdc.RegisterConcrete(&MsgAcknowledgeUsage{}, "market/MsgAcknowledgeUsage", nil)
	cdc.RegisterConcrete(&MsgSettleOrder{}, "market/MsgSettleOrder", nil)
	cdc.RegisterConcrete(&MsgClaimRewards{}, "market/MsgClaimRewards", nil)
	cdc.RegisterConcrete(&MsgCloseLease{}, "market/MsgCloseLease", nil)
	cdc.RegisterConcrete(&MsgUpdateParams{}, "market/MsgUpdateParams", nil)
}

// RegisterInterfaces registers the x/market message types with the interface
// registry
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgCreateEscrow{},
		&MsgActivateEscrow{},
		&MsgReleaseEscrow{},
		&MsgRefundEscrow{},
		&MsgDisputeEscrow{},
		&MsgRecordUsage{},
		&MsgAcknowledgeUsage{},
		&MsgSettleOrder{},
		&MsgClaimRewards{},
		&MsgCloseLease{},
		&MsgUpdateParams{},
	)
}

// ModuleCdc is the legacy amino codec used for JSON sign bytes
var ModuleCdc = codec.NewLegacyAmino()

func init() {
	RegisterLegacyAminoCodec(ModuleCdc)
}
