package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/roulette-vrf/internal/interactive"
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"declined", fmt.Errorf("run: %w", txflow.ErrSubmissionDeclined), exitOK},
		{"prompt canceled", interactive.ErrCanceled, exitOK},
		{"estimation", &txflow.EstimationFailedError{Err: errors.New("boom")}, exitEstimation},
		{"submission", &txflow.SubmissionFailedError{Err: errors.New("boom")}, exitSubmission},
		{"rejected", &txflow.TransactionRejectedError{Hash: testHash}, exitRejected},
		{"timeout", &txflow.TransactionTimeoutError{Hash: testHash, Timeout: time.Second}, exitTimeout},
		{"wrapped timeout", fmt.Errorf("wait: %w", &txflow.TransactionTimeoutError{Hash: testHash}), exitTimeout},
		{"fetch failed", &txflow.FetchFailedError{Hash: testHash, Err: errors.New("bad params")}, exitFailure},
		{"other", errors.New("config validation failed"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestReportError(t *testing.T) {
	t.Run("timeout hint names the wait command", func(t *testing.T) {
		var buf bytes.Buffer
		code := reportError(&buf, &txflow.TransactionTimeoutError{Hash: testHash, Timeout: time.Minute})
		assert.Equal(t, exitTimeout, code)
		assert.Contains(t, buf.String(), "Error: ")
		assert.Contains(t, buf.String(), "roulette-vrf wait "+testHash.String())
	})

	t.Run("rejection details", func(t *testing.T) {
		var buf bytes.Buffer
		code := reportError(&buf, &txflow.TransactionRejectedError{
			Hash:            testHash,
			Reason:          "Game already played",
			ExecutionStatus: starknet.ExecutionReverted,
			FinalityStatus:  starknet.FinalityAcceptedOnL2,
		})
		assert.Equal(t, exitRejected, code)
		assert.Contains(t, buf.String(), "reason:     Game already played")
	})

	t.Run("cancellation is not an error", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Equal(t, exitOK, reportError(&buf, txflow.ErrSubmissionDeclined))
		assert.Contains(t, buf.String(), "Operation cancelled")
		assert.NotContains(t, buf.String(), "Error:")
	})
}

func TestWait(t *testing.T) {
	h := newHarness(t)
	h.node.receipts = []starknet.Observation{
		starknet.Absent(),
		{Shape: starknet.ShapePending},
		accepted(starknet.ExecutionSucceeded, starknet.FinalityAcceptedOnL2),
	}

	stdout, _, err := h.execute("wait", testHash.String(), "--rpc-url", "http://localhost:5050", "--poll-interval", "10ms", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "status: ACCEPTED_L2")
	assert.Contains(t, stdout, "polls: 3")
	assert.Equal(t, 3, h.node.fetches)
	assert.Empty(t, h.node.submitted)
}

func TestWait_Invalid(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.execute("wait", "not-a-hash", "--rpc-url", "http://localhost:5050")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transaction hash")

	_, _, err = h.execute("wait", testHash.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc.endpoint is required")
	assert.Equal(t, 0, h.node.fetches)
}

func TestCurrentGame(t *testing.T) {
	h := newHarness(t)
	h.node.gameID = 12

	stdout, _, err := h.execute("current-game", "0x99", "--rpc-url", "http://localhost:5050", "--roulette", testRoulette.String())
	require.NoError(t, err)
	assert.Equal(t, "Current game for 0x99: 12\n", stdout)

	require.Len(t, h.node.calls, 1)
	call := h.node.calls[0]
	assert.True(t, call.ContractAddress.Equal(testRoulette))
	require.Len(t, call.Calldata, 1)
	assert.True(t, call.Calldata[0].Equal(starknet.MustParseFelt("0x99")))
}

func TestCurrentGame_CallFails(t *testing.T) {
	h := newHarness(t)
	h.node.callErr = &starknet.RPCError{Operation: "starknet_call", Kind: starknet.KindFatal, Code: starknet.CodeContractNotFound, Message: "Contract not found"}

	_, _, err := h.execute("current-game", "0x99", "--rpc-url", "http://localhost:5050", "--roulette", testRoulette.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read current game")
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.execute("config", "init",
		"--rpc-url", "http://localhost:5050",
		"--account", testAccount.String(),
		"--roulette", testRoulette.String(),
		"--signer-command", "sign-tx --profile dev")
	require.NoError(t, err)
	path := filepath.Join(h.dataDir, "config.toml")
	assert.Contains(t, stdout, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://localhost:5050")
	assert.Contains(t, string(data), "sign-tx --profile dev")

	_, _, err = h.execute("config", "init")
	require.Error(t, err, "existing file is kept without --force")
	_, _, err = h.execute("config", "init", "--force", "--rpc-url", "http://localhost:6060", "--roulette", testRoulette.String())
	require.NoError(t, err)

	stdout, _, err = h.execute("config", "show", "--log-format", "json")
	require.NoError(t, err)
	lines := strings.Split(stdout, "\n")
	assert.Contains(t, findLine(lines, "rpc.endpoint"), "http://localhost:6060")
	assert.Contains(t, findLine(lines, "rpc.endpoint"), "config.toml")
	assert.Contains(t, findLine(lines, "log.format"), "flag")
	assert.Contains(t, findLine(lines, "account.address"), testAccount.String())
	assert.Contains(t, findLine(lines, "poll.interval"), "config.toml")
	assert.Contains(t, stdout, "Config file: "+path)
}

func TestConfigShow_EnvironmentSource(t *testing.T) {
	h := newHarness(t)
	t.Setenv("ROULETTE_VRF_POLL_INTERVAL", "2s")

	stdout, _, err := h.execute("config", "show", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"key": "poll.interval"`)
	assert.Contains(t, stdout, `"value": "2s"`)
	assert.Contains(t, stdout, `"source": "environment"`)
	assert.Contains(t, stdout, `"source": "default"`)
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.execute("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "roulette-vrf")
}

func TestExecuteHonorsCancellation(t *testing.T) {
	h := newHarness(t)
	newClock = func() txflow.Clock { return txflow.RealClock() }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data-dir", h.dataDir, "wait", testHash.String(), "--rpc-url", "http://localhost:5050", "--poll-interval", "1s", "--timeout", "1m"})
	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func findLine(lines []string, prefix string) string {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return l
		}
	}
	return ""
}
