package starknet

import "fmt"

// ExecuteCalldata encodes calls as the __execute__ calldata of a Cairo 1
// account: [n, (to, selector, len, data...)...]. Call order is preserved.
func ExecuteCalldata(calls []Call) ([]Felt, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("multicall requires at least one call")
	}
	size := 1
	for _, c := range calls {
		size += 3 + len(c.Calldata)
	}
	out := make([]Felt, 0, size)
	out = append(out, NewFelt(uint64(len(calls))))
	for i, c := range calls {
		if c.Entrypoint == "" {
			return nil, fmt.Errorf("call %d has no entrypoint", i)
		}
		out = append(out, c.To, Selector(c.Entrypoint), NewFelt(uint64(len(c.Calldata))))
		out = append(out, c.Calldata...)
	}
	return out, nil
}
