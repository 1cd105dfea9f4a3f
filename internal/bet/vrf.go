package bet

import (
	"fmt"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// SourceKind selects how the VRF provider seeds the random value.
type SourceKind uint64

const (
	// SourceNonce seeds from the nonce the provider tracks for an address.
	SourceNonce SourceKind = 0
	// SourceSalt seeds from a caller-chosen salt.
	SourceSalt SourceKind = 1
)

// Source is the VRF provider's Source enum.
type Source struct {
	Kind  SourceKind
	Value starknet.Felt
}

// NonceSource seeds from the nonce of addr.
func NonceSource(addr starknet.Felt) Source {
	return Source{Kind: SourceNonce, Value: addr}
}

// SaltSource seeds from salt.
func SaltSource(salt starknet.Felt) Source {
	return Source{Kind: SourceSalt, Value: salt}
}

// RequestRandom builds the VRF provider call that must precede the consuming
// call in the same multicall. caller is the contract that will consume the value.
func RequestRandom(provider, caller starknet.Felt, src Source) (starknet.Call, error) {
	if provider.IsZero() {
		return starknet.Call{}, fmt.Errorf("vrf provider address is required")
	}
	if caller.IsZero() {
		return starknet.Call{}, fmt.Errorf("vrf caller address is required")
	}
	if src.Kind != SourceNonce && src.Kind != SourceSalt {
		return starknet.Call{}, fmt.Errorf("unknown vrf source %d", uint64(src.Kind))
	}
	return starknet.Call{
		To:         provider,
		Entrypoint: EntrypointRequestRandom,
		Calldata:   []starknet.Felt{caller, starknet.NewFelt(uint64(src.Kind)), src.Value},
	}, nil
}
