// Package bet encodes roulette bets and VRF randomness requests into
// Starknet call descriptors.
package bet

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// Contract entrypoints.
const (
	EntrypointRequestRandom  = "request_random"
	EntrypointPlayGame       = "play_game"
	EntrypointGetCurrentGame = "get_current_game"
)

// Type is the roulette bet kind.
type Type uint64

const (
	TypeStraight Type = iota
	TypeRedBlack
	TypeEvenOdd
	TypeColumn
	TypeDozen
	TypeHighLow
)

var typeNames = map[Type]string{
	TypeStraight: "straight",
	TypeRedBlack: "red-black",
	TypeEvenOdd:  "even-odd",
	TypeColumn:   "column",
	TypeDozen:    "dozen",
	TypeHighLow:  "high-low",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", uint64(t))
}

// Types returns every bet type in contract order.
func Types() []Type {
	return []Type{TypeStraight, TypeRedBlack, TypeEvenOdd, TypeColumn, TypeDozen, TypeHighLow}
}

// ParseType accepts a bet type name or its numeric value.
func ParseType(s string) (Type, error) {
	for t, n := range typeNames {
		if n == s {
			return t, nil
		}
	}
	var n uint64
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && fmt.Sprint(n) == s {
		if _, ok := typeNames[Type(n)]; ok {
			return Type(n), nil
		}
	}
	return 0, fmt.Errorf("unknown bet type %q", s)
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
var mask128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// ParseAmount parses a base-unit integer amount such as "10000000000000".
func ParseAmount(s string) (*big.Int, error) {
	u, err := math.ParseUint(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if u.IsZero() {
		return nil, fmt.Errorf("amount must be positive")
	}
	return u.BigInt(), nil
}

// Bet mirrors the roulette contract's Bet struct, field for field.
type Bet struct {
	GameID         uint64
	User           starknet.Felt
	Type           Type
	Value          uint64
	Amount         *big.Int
	SplitBet       bool
	SplitBetValue  [2]uint64
	CornerBet      bool
	CornerBetValue [4]uint64
}

// Validate checks the fields the contract cannot accept.
func (b Bet) Validate() error {
	if _, ok := typeNames[b.Type]; !ok {
		return fmt.Errorf("unknown bet type %d", uint64(b.Type))
	}
	if b.User.IsZero() {
		return fmt.Errorf("bet user address is required")
	}
	if b.Amount == nil || b.Amount.Sign() <= 0 {
		return fmt.Errorf("bet amount must be positive")
	}
	if b.Amount.Cmp(maxUint256) > 0 {
		return fmt.Errorf("bet amount %s exceeds u256", b.Amount.String())
	}
	return nil
}

// felts appends the Cairo serialization of b: u256 as (low, high), bools as
// 0/1, fixed-size arrays without a length prefix.
func (b Bet) felts(out []starknet.Felt) ([]starknet.Felt, error) {
	amount := b.Amount
	low, err := starknet.FeltFromBig(new(big.Int).And(amount, mask128))
	if err != nil {
		return nil, err
	}
	high, err := starknet.FeltFromBig(new(big.Int).Rsh(amount, 128))
	if err != nil {
		return nil, err
	}

	out = append(out,
		starknet.NewFelt(b.GameID),
		b.User,
		starknet.NewFelt(uint64(b.Type)),
		starknet.NewFelt(b.Value),
		low, high,
		starknet.BoolFelt(b.SplitBet),
	)
	for _, v := range b.SplitBetValue {
		out = append(out, starknet.NewFelt(v))
	}
	out = append(out, starknet.BoolFelt(b.CornerBet))
	for _, v := range b.CornerBetValue {
		out = append(out, starknet.NewFelt(v))
	}
	return out, nil
}

// EncodeBets serializes bets as a Cairo Array<Bet>.
func EncodeBets(bets []Bet) ([]starknet.Felt, error) {
	if len(bets) == 0 {
		return nil, fmt.Errorf("at least one bet is required")
	}
	out := []starknet.Felt{starknet.NewFelt(uint64(len(bets)))}
	for i, b := range bets {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("bet %d: %w", i, err)
		}
		var err error
		if out, err = b.felts(out); err != nil {
			return nil, fmt.Errorf("bet %d: %w", i, err)
		}
	}
	return out, nil
}

// PlayGame builds the roulette call that consumes the random value.
func PlayGame(roulette starknet.Felt, bets []Bet) (starknet.Call, error) {
	calldata, err := EncodeBets(bets)
	if err != nil {
		return starknet.Call{}, err
	}
	return starknet.Call{To: roulette, Entrypoint: EntrypointPlayGame, Calldata: calldata}, nil
}

// CurrentGame builds the view call returning the player's current game id.
func CurrentGame(roulette, player starknet.Felt) starknet.FunctionCall {
	return starknet.FunctionCall{
		ContractAddress:    roulette,
		EntryPointSelector: starknet.Selector(EntrypointGetCurrentGame),
		Calldata:           []starknet.Felt{player},
	}
}
