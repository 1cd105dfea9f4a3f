package main

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"

	"github.com/altuslabsxyz/roulette-vrf/internal/config"
	"github.com/altuslabsxyz/roulette-vrf/internal/interactive"
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

var (
	testAccount  = starknet.MustParseFelt("0x1234")
	testRoulette = starknet.MustParseFelt("0x5678")
	testHash     = starknet.MustParseFelt("0xabc")
	testChainID  = starknet.MustParseFelt("0x534e5f5345504f4c4941")
)

// fakeNode answers every node call from memory.
type fakeNode struct {
	mu sync.Mutex

	gameID    uint64
	callErr   error
	receipts  []starknet.Observation
	addErr    error
	calls     []starknet.FunctionCall
	submitted []*starknet.InvokeTxnV3
	fetches   int
	closed    bool
}

func (n *fakeNode) ChainID(ctx context.Context) (starknet.Felt, error) {
	return testChainID, nil
}

func (n *fakeNode) Call(ctx context.Context, call starknet.FunctionCall, block starknet.BlockTag) ([]starknet.Felt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call)
	if n.callErr != nil {
		return nil, n.callErr
	}
	return []starknet.Felt{starknet.NewFelt(n.gameID)}, nil
}

func (n *fakeNode) Nonce(ctx context.Context, block starknet.BlockTag, address starknet.Felt) (starknet.Felt, error) {
	return starknet.NewFelt(7), nil
}

func (n *fakeNode) EstimateFee(ctx context.Context, txs []*starknet.InvokeTxnV3, flags []starknet.SimulationFlag, block starknet.BlockTag) ([]starknet.FeeEstimate, error) {
	return []starknet.FeeEstimate{{
		L1GasConsumed:     starknet.NewFelt(0),
		L1GasPrice:        starknet.NewFelt(1000),
		L2GasConsumed:     starknet.NewFelt(1_000_001),
		L2GasPrice:        starknet.NewFelt(3),
		L1DataGasConsumed: starknet.NewFelt(128),
		L1DataGasPrice:    starknet.NewFelt(7),
		OverallFee:        starknet.NewFelt(3_000_899),
		Unit:              "FRI",
	}}, nil
}

func (n *fakeNode) AddInvokeTransaction(ctx context.Context, tx *starknet.InvokeTxnV3) (starknet.Felt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, tx)
	if n.addErr != nil {
		return starknet.Felt{}, n.addErr
	}
	return testHash, nil
}

func (n *fakeNode) TransactionReceipt(ctx context.Context, hash starknet.Felt) (starknet.Observation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	idx := n.fetches
	n.fetches++
	if len(n.receipts) == 0 {
		return starknet.Absent(), nil
	}
	if idx >= len(n.receipts) {
		idx = len(n.receipts) - 1
	}
	return n.receipts[idx], nil
}

func (n *fakeNode) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

type fakeSigner struct {
	signed int
}

func (s *fakeSigner) Address() starknet.Felt { return testAccount }

func (s *fakeSigner) SignInvoke(ctx context.Context, tx *starknet.InvokeTxnV3) ([]starknet.Felt, error) {
	s.signed++
	return []starknet.Felt{starknet.NewFelt(1), starknet.NewFelt(2)}, nil
}

// instantClock never sleeps.
type instantClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *instantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *instantClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

type mockPrompter struct {
	confirm    bool
	confirmErr error
	selectIdx  int
	labels     []string
}

func (m *mockPrompter) Confirm(label string) (bool, error) {
	m.labels = append(m.labels, label)
	return m.confirm, m.confirmErr
}

func (m *mockPrompter) SelectFromList(label string, items []string) (int, error) {
	m.labels = append(m.labels, label)
	return m.selectIdx, nil
}

func accepted(exec starknet.ExecutionStatus, fin starknet.FinalityStatus) starknet.Observation {
	return starknet.Observed(&starknet.Receipt{
		TransactionHash: testHash,
		Type:            "INVOKE",
		ExecutionStatus: exec,
		FinalityStatus:  fin,
		ActualFee:       &starknet.FeePayment{Amount: starknet.NewFelt(2_500_000), Unit: "FRI"},
	})
}

// harness swaps the command constructors for fakes.
type harness struct {
	node        *fakeNode
	signer      *fakeSigner
	prompter    *mockPrompter
	interactive bool
	dataDir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		node:     &fakeNode{gameID: 3},
		signer:   &fakeSigner{},
		prompter: &mockPrompter{confirm: true},
		dataDir:  t.TempDir(),
	}

	for _, env := range []string{
		config.EnvRPCEndpoint, config.EnvAccountAddress, config.EnvSignerCommand,
		config.EnvRoulette, config.EnvPollInterval, config.EnvTimeout, config.EnvLogLevel,
	} {
		t.Setenv(env, "")
	}

	origDial, origSigner, origPrompter, origInteractive, origClock := dialNode, newSigner, newPrompter, isInteractive, newClock
	t.Cleanup(func() {
		dialNode, newSigner, newPrompter, isInteractive, newClock = origDial, origSigner, origPrompter, origInteractive, origClock
	})

	dialNode = func(ctx context.Context, cfg *config.Config, logger log.Logger) (nodeClient, error) {
		return h.node, nil
	}
	newSigner = func(cfg *config.Config, chainID starknet.Felt, logger log.Logger) (txflow.Signer, error) {
		return h.signer, nil
	}
	newPrompter = func() interactive.Prompter { return h.prompter }
	isInteractive = func() bool { return h.interactive }
	newClock = func() txflow.Clock {
		return &instantClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	}
	return h
}

// execute runs the CLI with args and returns stdout, stderr and the error.
func (h *harness) execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--data-dir", h.dataDir, "--no-color", "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// runArgs are the flags of a complete non-interactive run.
func runArgs(extra ...string) []string {
	args := []string{
		"run",
		"--rpc-url", "http://localhost:5050",
		"--account", testAccount.String(),
		"--roulette", testRoulette.String(),
		"--signer-command", "sign-tx",
		"--type", "straight",
		"--value", "17",
		"--amount", "1000",
		"--poll-interval", "10ms",
		"--timeout", "1s",
	}
	return append(args, extra...)
}
