package types

import (
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Shared fixtures for the types tests. Addresses are generated so they are
// always checksum-valid for the configured bech32 prefix.
var (
	testOwner    = sdk.AccAddress(secp256k1.GenPrivKey().PubKey().Address()).String()
	testProvider = sdk.AccAddress(secp256k1.GenPrivKey().PubKey().Address()).String()
)

func testOrderID() OrderID {
	return OrderID{Owner: testOwner, DSeq: 7, GSeq: 1, OSeq: 1}
}

func testLeaseID() LeaseID {
	return LeaseID{Owner: testOwner, DSeq: 7, GSeq: 1, OSeq: 1, Provider: testProvider, BSeq: 1}
}
