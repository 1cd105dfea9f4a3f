package txflow

import (
	"fmt"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// SubCall is one immutable call of a TransactionIntent.
type SubCall struct {
	target     starknet.Felt
	entrypoint string
	args       []starknet.Felt
}

// NewSubCall validates and copies a call descriptor.
func NewSubCall(c starknet.Call) (SubCall, error) {
	if c.To.IsZero() {
		return SubCall{}, fmt.Errorf("target address is required")
	}
	if err := validateEntrypoint(c.Entrypoint); err != nil {
		return SubCall{}, err
	}
	args := make([]starknet.Felt, len(c.Calldata))
	copy(args, c.Calldata)
	return SubCall{target: c.To, entrypoint: c.Entrypoint, args: args}, nil
}

func validateEntrypoint(name string) error {
	if name == "" {
		return fmt.Errorf("entrypoint is required")
	}
	for _, r := range name {
		if r > 0x7e || r < 0x21 {
			return fmt.Errorf("entrypoint %q contains invalid character %q", name, r)
		}
	}
	return nil
}

// Target returns the contract address.
func (c SubCall) Target() starknet.Felt { return c.target }

// Entrypoint returns the function name.
func (c SubCall) Entrypoint() string { return c.entrypoint }

// Arguments returns a copy of the encoded arguments.
func (c SubCall) Arguments() []starknet.Felt {
	out := make([]starknet.Felt, len(c.args))
	copy(out, c.args)
	return out
}

func (c SubCall) call() starknet.Call {
	return starknet.Call{To: c.target, Entrypoint: c.entrypoint, Calldata: c.Arguments()}
}

// TransactionIntent is the ordered list of calls executed atomically. The
// order is fixed at composition time.
type TransactionIntent struct {
	calls []SubCall
}

// Calls returns the sub-calls in execution order.
func (i TransactionIntent) Calls() []SubCall {
	out := make([]SubCall, len(i.calls))
	copy(out, i.calls)
	return out
}

// Len returns the number of sub-calls.
func (i TransactionIntent) Len() int {
	return len(i.calls)
}

// calldata encodes the intent as account __execute__ calldata.
func (i TransactionIntent) calldata() ([]starknet.Felt, error) {
	calls := make([]starknet.Call, len(i.calls))
	for n, c := range i.calls {
		calls[n] = c.call()
	}
	return starknet.ExecuteCalldata(calls)
}

// Compose returns the intent [oracle, consume]: the randomness request always
// precedes the call that consumes it.
func Compose(oracle, consume starknet.Call) (TransactionIntent, error) {
	first, err := NewSubCall(oracle)
	if err != nil {
		return TransactionIntent{}, fmt.Errorf("oracle request call: %w", err)
	}
	second, err := NewSubCall(consume)
	if err != nil {
		return TransactionIntent{}, fmt.Errorf("consuming call: %w", err)
	}
	return TransactionIntent{calls: []SubCall{first, second}}, nil
}
