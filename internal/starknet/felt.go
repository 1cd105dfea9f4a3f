// Package starknet provides the Starknet wire types and JSON-RPC adapter used by
// the transaction engine.
package starknet

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// fieldPrime is the Stark field prime 2^251 + 17*2^192 + 1.
var fieldPrime = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 251)
	p.Add(p, new(big.Int).Lsh(big.NewInt(17), 192))
	return p.Add(p, big.NewInt(1))
}()

// selectorMask keeps the low 250 bits of a keccak digest.
var selectorMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// Felt is a Starknet field element. The zero value is 0. Felts are immutable;
// the wrapped integer is never modified after construction.
type Felt struct {
	v *big.Int
}

// NewFelt returns the felt for a non-negative integer.
func NewFelt(n uint64) Felt {
	return Felt{v: new(big.Int).SetUint64(n)}
}

// FeltFromBig returns the felt for b, which must be in [0, p).
func FeltFromBig(b *big.Int) (Felt, error) {
	if b == nil {
		return Felt{}, nil
	}
	if b.Sign() < 0 || b.Cmp(fieldPrime) >= 0 {
		return Felt{}, fmt.Errorf("value %s is outside the Stark field", b.String())
	}
	return Felt{v: new(big.Int).Set(b)}, nil
}

// ParseFelt parses a 0x-prefixed hex string or a decimal string.
func ParseFelt(s string) (Felt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Felt{}, fmt.Errorf("empty felt")
	}
	var (
		b  big.Int
		ok bool
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" {
			return Felt{}, fmt.Errorf("invalid felt %q", s)
		}
		_, ok = b.SetString(digits, 16)
	} else {
		_, ok = b.SetString(s, 10)
	}
	if !ok {
		return Felt{}, fmt.Errorf("invalid felt %q", s)
	}
	return FeltFromBig(&b)
}

// MustParseFelt is ParseFelt for constants; it panics on error.
func MustParseFelt(s string) Felt {
	f, err := ParseFelt(s)
	if err != nil {
		panic(err)
	}
	return f
}

// BoolFelt encodes a Cairo bool.
func BoolFelt(b bool) Felt {
	if b {
		return NewFelt(1)
	}
	return NewFelt(0)
}

func (f Felt) int() *big.Int {
	if f.v == nil {
		return new(big.Int)
	}
	return f.v
}

// Big returns a copy of the underlying integer.
func (f Felt) Big() *big.Int {
	return new(big.Int).Set(f.int())
}

// IsZero reports whether f is 0.
func (f Felt) IsZero() bool {
	return f.int().Sign() == 0
}

// Equal reports whether two felts hold the same value.
func (f Felt) Equal(o Felt) bool {
	return f.int().Cmp(o.int()) == 0
}

// Uint64 returns the value if it fits in 64 bits.
func (f Felt) Uint64() (uint64, bool) {
	v := f.int()
	if !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

// String returns the compact 0x-prefixed hex form used on the wire.
func (f Felt) String() string {
	return "0x" + f.int().Text(16)
}

// MarshalJSON implements json.Marshaler.
func (f Felt) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// MarshalYAML renders the felt as its hex string.
func (f Felt) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Felt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("felt must be a string: %w", err)
	}
	parsed, err := ParseFelt(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Selector returns sn_keccak(name): keccak256 truncated to 250 bits.
func Selector(name string) Felt {
	digest := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))
	return Felt{v: digest.And(digest, selectorMask)}
}

// Felts converts hex or decimal strings into felts.
func Felts(values ...string) ([]Felt, error) {
	out := make([]Felt, 0, len(values))
	for i, v := range values {
		f, err := ParseFelt(v)
		if err != nil {
			return nil, fmt.Errorf("calldata[%d]: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}
