package txflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// ErrSubmissionDeclined is returned when the BeforeSubmit hook vetoes a run.
var ErrSubmissionDeclined = errors.New("submission declined")

// EstimationFailedError is returned when the node refuses to simulate the
// intent. It is never retried: the ledger state that made it fail is unchanged.
type EstimationFailedError struct {
	Err error
}

func (e *EstimationFailedError) Error() string {
	return fmt.Sprintf("fee estimation failed: %v", e.Err)
}

func (e *EstimationFailedError) Unwrap() error {
	return e.Err
}

// SubmissionFailedError is returned when the transaction could not be sent.
// Resubmitting is left to the caller because it may duplicate the transaction.
type SubmissionFailedError struct {
	Err error
}

func (e *SubmissionFailedError) Error() string {
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *SubmissionFailedError) Unwrap() error {
	return e.Err
}

// TransientFetchError describes a receipt fetch that failed in a way the
// poller recovers from. It is logged, never returned from Confirm.
type TransientFetchError struct {
	Hash    starknet.Felt
	Attempt int
	Err     error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("transient error fetching receipt for %s (poll %d): %v", e.Hash, e.Attempt, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// FetchFailedError is returned when a receipt fetch fails in a way that
// cannot improve by polling again.
type FetchFailedError struct {
	Hash  starknet.Felt
	Polls int
	Err   error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetching receipt for %s failed after %d polls: %v", e.Hash, e.Polls, e.Err)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// TransactionRejectedError is returned when the transaction reverted on chain.
type TransactionRejectedError struct {
	Hash            starknet.Felt
	Reason          string
	ExecutionStatus starknet.ExecutionStatus
	FinalityStatus  starknet.FinalityStatus
	Receipt         *starknet.Receipt
	Polls           int
}

func (e *TransactionRejectedError) Error() string {
	msg := fmt.Sprintf("transaction %s rejected (execution %s, finality %s)", e.Hash, e.ExecutionStatus, e.FinalityStatus)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// TransactionTimeoutError is returned when no terminal status was reached
// before the deadline.
type TransactionTimeoutError struct {
	Hash       starknet.Felt
	Timeout    time.Duration
	Polls      int
	LastStatus Status
}

func (e *TransactionTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s timed out after %s (%d polls, last status %s)", e.Hash, e.Timeout, e.Polls, e.LastStatus)
}

// IsEstimationFailed reports whether err is an EstimationFailedError.
func IsEstimationFailed(err error) bool {
	var target *EstimationFailedError
	return errors.As(err, &target)
}

// IsSubmissionFailed reports whether err is a SubmissionFailedError.
func IsSubmissionFailed(err error) bool {
	var target *SubmissionFailedError
	return errors.As(err, &target)
}

// IsRejected reports whether err is a TransactionRejectedError.
func IsRejected(err error) bool {
	var target *TransactionRejectedError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is a TransactionTimeoutError.
func IsTimeout(err error) bool {
	var target *TransactionTimeoutError
	return errors.As(err, &target)
}
