package txflow

import (
	"context"
	"sync"
	"time"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// fakeClock advances virtual time whenever a wait is requested.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.waits = append(c.waits, d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// fetchResult is one scripted answer of a receipt fetch.
type fetchResult struct {
	obs starknet.Observation
	err error
}

// fakeNode scripts node answers. The last receipt result repeats once the
// script is exhausted.
type fakeNode struct {
	mu sync.Mutex

	nonce       starknet.Felt
	nonceErr    error
	estimates   []starknet.FeeEstimate
	estimateErr error
	hash        starknet.Felt
	addErr      error
	receipts    []fetchResult

	estimated []*starknet.InvokeTxnV3
	submitted []*starknet.InvokeTxnV3
	fetches   int
	deadlines []bool
}

func (n *fakeNode) Nonce(ctx context.Context, block starknet.BlockTag, address starknet.Felt) (starknet.Felt, error) {
	if n.nonceErr != nil {
		return starknet.Felt{}, n.nonceErr
	}
	return n.nonce, nil
}

func (n *fakeNode) EstimateFee(ctx context.Context, txs []*starknet.InvokeTxnV3, flags []starknet.SimulationFlag, block starknet.BlockTag) ([]starknet.FeeEstimate, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.estimated = append(n.estimated, txs...)
	if n.estimateErr != nil {
		return nil, n.estimateErr
	}
	return n.estimates, nil
}

func (n *fakeNode) AddInvokeTransaction(ctx context.Context, tx *starknet.InvokeTxnV3) (starknet.Felt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, tx)
	if n.addErr != nil {
		return starknet.Felt{}, n.addErr
	}
	return n.hash, nil
}

func (n *fakeNode) TransactionReceipt(ctx context.Context, hash starknet.Felt) (starknet.Observation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	n.deadlines = append(n.deadlines, hasDeadline)
	idx := n.fetches
	n.fetches++
	if len(n.receipts) == 0 {
		return starknet.Absent(), nil
	}
	if idx >= len(n.receipts) {
		idx = len(n.receipts) - 1
	}
	r := n.receipts[idx]
	return r.obs, r.err
}

func (n *fakeNode) Fetches() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fetches
}

type fakeSigner struct {
	address starknet.Felt
	sig     []starknet.Felt
	err     error
	signed  int
}

func (s *fakeSigner) Address() starknet.Felt { return s.address }

func (s *fakeSigner) SignInvoke(ctx context.Context, tx *starknet.InvokeTxnV3) ([]starknet.Felt, error) {
	s.signed++
	if s.err != nil {
		return nil, s.err
	}
	return s.sig, nil
}

func receipt(exec starknet.ExecutionStatus, fin starknet.FinalityStatus) starknet.Observation {
	return starknet.Observed(&starknet.Receipt{
		TransactionHash: starknet.NewFelt(0xabc),
		Type:            "INVOKE",
		ExecutionStatus: exec,
		FinalityStatus:  fin,
	})
}

func notFound() error {
	return &starknet.RPCError{Operation: "starknet_getTransactionReceipt", Kind: starknet.KindNotFound, Code: starknet.CodeTxnHashNotFound, Message: "Transaction hash not found"}
}

func transient() error {
	return &starknet.RPCError{Operation: "starknet_getTransactionReceipt", Kind: starknet.KindTransient, Code: 503, Message: "503 Service Unavailable"}
}

func fatal() error {
	return &starknet.RPCError{Operation: "starknet_getTransactionReceipt", Kind: starknet.KindFatal, Code: -32602, Message: "invalid params"}
}

var (
	testAccount  = starknet.MustParseFelt("0x1234")
	testVRF      = starknet.MustParseFelt("0x051fea4450da9d6aee758bdeba88b2f665bcbf549d2c61421aa724e9ac0ced8f")
	testRoulette = starknet.MustParseFelt("0x5678")
	testHash     = starknet.MustParseFelt("0xabc")
)

func sampleEstimate() starknet.FeeEstimate {
	return starknet.FeeEstimate{
		L1GasConsumed:     starknet.NewFelt(0),
		L1GasPrice:        starknet.NewFelt(1000),
		L2GasConsumed:     starknet.NewFelt(1_000_001),
		L2GasPrice:        starknet.NewFelt(3),
		L1DataGasConsumed: starknet.NewFelt(128),
		L1DataGasPrice:    starknet.NewFelt(7),
		OverallFee:        starknet.NewFelt(3_000_899),
		Unit:              "FRI",
	}
}
