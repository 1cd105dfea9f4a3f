package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/altuslabsxyz/roulette-vrf/internal/interactive"
	"github.com/altuslabsxyz/roulette-vrf/internal/output"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

// Process exit codes, one per failure kind.
const (
	exitOK         = 0
	exitFailure    = 1
	exitEstimation = 2
	exitSubmission = 3
	exitRejected   = 4
	exitTimeout    = 5
)

var (
	errEmptyCallResult = errors.New("contract call returned no data")
	errGameIDOverflow  = errors.New("game id does not fit in u64")
)

// exitCode maps a command error onto the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil, isCancellation(err):
		return exitOK
	case txflow.IsEstimationFailed(err):
		return exitEstimation
	case txflow.IsSubmissionFailed(err):
		return exitSubmission
	case txflow.IsRejected(err):
		return exitRejected
	case txflow.IsTimeout(err):
		return exitTimeout
	default:
		return exitFailure
	}
}

// isCancellation reports whether the operator stopped the run before
// anything was sent.
func isCancellation(err error) bool {
	return errors.Is(err, txflow.ErrSubmissionDeclined) || errors.Is(err, interactive.ErrCanceled)
}

// recoveryHint returns a next step for the operator, if one applies.
func recoveryHint(err error) string {
	var timeoutErr *txflow.TransactionTimeoutError
	var rejectedErr *txflow.TransactionRejectedError
	switch {
	case errors.As(err, &timeoutErr):
		return fmt.Sprintf("the transaction may still be accepted; check again with `%s wait %s`", appName, timeoutErr.Hash)
	case errors.As(err, &rejectedErr):
		return "the bet was not played; inspect the revert reason before retrying"
	case txflow.IsEstimationFailed(err):
		return "nothing was sent; check the bet values, contract addresses and account balance"
	case txflow.IsSubmissionFailed(err):
		return "nothing was confirmed; check the signer command and account nonce"
	case errors.Is(err, context.Canceled):
		return "interrupted; a submitted transaction keeps going on chain"
	}
	return ""
}

// reportError prints err for the operator and returns the exit code.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	if isCancellation(err) {
		fmt.Fprintln(w, "Operation cancelled. Nothing was submitted.")
		return exitOK
	}

	var rejectedErr *txflow.TransactionRejectedError
	if errors.As(err, &rejectedErr) {
		_ = output.RenderRejection(w, rejectedErr)
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := recoveryHint(err); hint != "" {
		fmt.Fprintf(w, "\nHint: %s\n", hint)
	}
	return exitCode(err)
}
