// Package txflow composes, estimates, submits and confirms the VRF bet
// multicall against a Starknet node.
package txflow

import (
	"context"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// ReceiptFetcher is the node capability the ConfirmationPoller needs. Errors
// must be classifiable with starknet.KindOf.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, hash starknet.Felt) (starknet.Observation, error)
}

// Node is the ledger node RPC surface consumed by the engine.
type Node interface {
	ReceiptFetcher

	// Nonce returns the account nonce at block.
	Nonce(ctx context.Context, block starknet.BlockTag, address starknet.Felt) (starknet.Felt, error)

	// EstimateFee simulates txs and returns one estimate per transaction.
	EstimateFee(ctx context.Context, txs []*starknet.InvokeTxnV3, flags []starknet.SimulationFlag, block starknet.BlockTag) ([]starknet.FeeEstimate, error)

	// AddInvokeTransaction broadcasts a signed transaction.
	AddInvokeTransaction(ctx context.Context, tx *starknet.InvokeTxnV3) (starknet.Felt, error)
}

// Signer is the account signing capability. Implementations hold the chain
// id and key material; the engine never sees a private key.
type Signer interface {
	// Address returns the account contract address.
	Address() starknet.Felt

	// SignInvoke returns the account signature over tx.
	SignInvoke(ctx context.Context, tx *starknet.InvokeTxnV3) ([]starknet.Felt, error)
}

var _ Node = (*starknet.Client)(nil)
