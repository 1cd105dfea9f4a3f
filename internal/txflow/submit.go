package txflow

import (
	"context"
	"fmt"

	"cosmossdk.io/log"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// Submitter signs and sends an intent exactly once.
type Submitter struct {
	node   Node
	signer Signer
	logger log.Logger
}

// NewSubmitter creates a Submitter.
func NewSubmitter(node Node, signer Signer) *Submitter {
	return &Submitter{
		node:   node,
		signer: signer,
		logger: log.NewNopLogger(),
	}
}

// SetLogger sets the logger.
func (s *Submitter) SetLogger(logger log.Logger) {
	s.logger = logger
}

// Submit attaches the estimate's bounds to intent and broadcasts it. The
// returned hash is the only handle to the transaction. Failures are
// SubmissionFailedError and are not retried.
func (s *Submitter) Submit(ctx context.Context, intent TransactionIntent, est *ResourceEstimate) (starknet.Felt, error) {
	if est == nil {
		return starknet.Felt{}, &SubmissionFailedError{Err: fmt.Errorf("resource estimate is required")}
	}
	calldata, err := intent.calldata()
	if err != nil {
		return starknet.Felt{}, &SubmissionFailedError{Err: err}
	}

	account := s.signer.Address()
	nonce, err := s.node.Nonce(ctx, starknet.BlockPending, account)
	if err != nil {
		return starknet.Felt{}, &SubmissionFailedError{Err: fmt.Errorf("fetch nonce: %w", err)}
	}

	tx := starknet.NewInvokeTxnV3(account, calldata, nonce, est.FeeMode)
	tx.ResourceBounds = est.Bounds

	sig, err := s.signer.SignInvoke(ctx, tx)
	if err != nil {
		return starknet.Felt{}, &SubmissionFailedError{Err: fmt.Errorf("sign transaction: %w", err)}
	}
	tx.Signature = sig

	s.logger.Debug("submitting transaction", "sender", account.String(), "nonce", nonce.String())
	hash, err := s.node.AddInvokeTransaction(ctx, tx)
	if err != nil {
		return starknet.Felt{}, &SubmissionFailedError{Err: err}
	}
	s.logger.Info("transaction submitted", "tx_hash", hash.String())
	return hash, nil
}
