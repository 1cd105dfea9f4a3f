package txflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

func newTestPoller(node *fakeNode) (*Poller, *fakeClock) {
	clock := newFakeClock()
	p := NewPoller(node)
	p.SetClock(clock)
	return p, clock
}

func TestPoller_ConfirmsAfterAbsentReceipts(t *testing.T) {
	node := &fakeNode{receipts: []fetchResult{
		{obs: starknet.Absent()},
		{obs: starknet.Absent()},
		{obs: receipt(starknet.ExecutionSucceeded, starknet.FinalityAcceptedOnL2)},
	}}
	p, clock := newTestPoller(node)

	conf, err := p.Confirm(context.Background(), testHash, 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusAcceptedL2, conf.Status)
	assert.Equal(t, 3, conf.Polls)
	assert.Equal(t, 3, node.Fetches())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, clock.Waits())
	assert.Equal(t, 20*time.Millisecond, conf.Elapsed)
	require.NotNil(t, conf.Receipt)
	assert.Equal(t, starknet.FinalityAcceptedOnL2, conf.Receipt.FinalityStatus)
}

func TestPoller_RejectedWithReason(t *testing.T) {
	rejected := starknet.Observed(&starknet.Receipt{
		TransactionHash: testHash,
		ExecutionStatus: starknet.ExecutionReverted,
		FinalityStatus:  starknet.FinalityAcceptedOnL2,
		RevertReason:    "insufficient balance",
	})
	node := &fakeNode{receipts: []fetchResult{{obs: rejected}}}
	p, _ := newTestPoller(node)

	_, err := p.Confirm(context.Background(), testHash, 10*time.Millisecond, time.Second)
	require.Error(t, err)

	var rej *TransactionRejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "insufficient balance", rej.Reason)
	assert.Equal(t, starknet.ExecutionReverted, rej.ExecutionStatus)
	assert.Equal(t, starknet.FinalityAcceptedOnL2, rej.FinalityStatus)
	assert.Equal(t, 1, rej.Polls)
	assert.Equal(t, 1, node.Fetches())
}

func TestPoller_TimesOutOnNotFound(t *testing.T) {
	node := &fakeNode{receipts: []fetchResult{{obs: starknet.Absent(), err: notFound()}}}
	p, clock := newTestPoller(node)

	_, err := p.Confirm(context.Background(), testHash, 10*time.Millisecond, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	var te *TransactionTimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 5, te.Polls)
	assert.Equal(t, StatusReceived, te.LastStatus)
	assert.Equal(t, 50*time.Millisecond, te.Timeout)

	// no polls after the deadline
	assert.Equal(t, 5, node.Fetches())
	assert.Len(t, clock.Waits(), 5)
}

func TestPoller_TimeoutCapsLastWait(t *testing.T) {
	node := &fakeNode{}
	p, clock := newTestPoller(node)

	_, err := p.Confirm(context.Background(), testHash, 20*time.Millisecond, 50*time.Millisecond)
	require.True(t, IsTimeout(err))
	assert.Equal(t, 3, node.Fetches())
	assert.Equal(t, []time.Duration{20 * time.Millisecond, 20 * time.Millisecond, 10 * time.Millisecond}, clock.Waits())
}

func TestPoller_TransientErrorDoesNotAbort(t *testing.T) {
	node := &fakeNode{receipts: []fetchResult{
		{err: transient()},
		{obs: receipt(starknet.ExecutionSucceeded, starknet.FinalityAcceptedOnL1)},
	}}
	p, _ := newTestPoller(node)

	conf, err := p.Confirm(context.Background(), testHash, 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusAcceptedL1, conf.Status)
	assert.Equal(t, 2, conf.Polls)
}

func TestPoller_PendingShapeKeepsPolling(t *testing.T) {
	node := &fakeNode{receipts: []fetchResult{
		{obs: starknet.Observation{Shape: starknet.ShapePending}},
		{obs: receipt(starknet.ExecutionSucceeded, starknet.FinalityReceived)},
		{obs: receipt(starknet.ExecutionSucceeded, starknet.FinalityAcceptedOnL2)},
	}}
	p, _ := newTestPoller(node)

	conf, err := p.Confirm(context.Background(), testHash, time.Second, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, conf.Polls)
}

func TestPoller_FatalFetchAborts(t *testing.T) {
	node := &fakeNode{receipts: []fetchResult{{obs: starknet.Absent()}, {err: fatal()}}}
	p, _ := newTestPoller(node)

	_, err := p.Confirm(context.Background(), testHash, 10*time.Millisecond, time.Second)
	require.Error(t, err)

	var ff *FetchFailedError
	require.True(t, errors.As(err, &ff))
	assert.Equal(t, 2, ff.Polls)
	assert.Equal(t, starknet.KindFatal, starknet.KindOf(err))
	assert.Equal(t, 2, node.Fetches())
}

func TestPoller_FetchBoundedByDeadline(t *testing.T) {
	node := &fakeNode{receipts: []fetchResult{
		{obs: starknet.Absent()},
		{obs: receipt(starknet.ExecutionSucceeded, starknet.FinalityAcceptedOnL2)},
	}}
	p, _ := newTestPoller(node)

	_, err := p.Confirm(context.Background(), testHash, 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, node.deadlines)
}

func TestPoller_Canceled(t *testing.T) {
	node := &fakeNode{}
	p := NewPoller(node)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		_, err = p.Confirm(ctx, testHash, time.Hour, 2*time.Hour)
	}()

	require.Eventually(t, func() bool { return node.Fetches() == 1 }, time.Second, time.Millisecond)
	cancel()
	wg.Wait()

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsTimeout(err))
	assert.Equal(t, 1, node.Fetches())
}

func TestPoller_InvalidTiming(t *testing.T) {
	p, _ := newTestPoller(&fakeNode{})

	_, err := p.Confirm(context.Background(), testHash, 0, time.Second)
	assert.ErrorContains(t, err, "poll interval must be positive")

	_, err = p.Confirm(context.Background(), testHash, time.Second, 0)
	assert.ErrorContains(t, err, "timeout must be positive")
}

func TestPoller_BackoffAfterTransientErrors(t *testing.T) {
	node := &fakeNode{receipts: []fetchResult{
		{err: transient()},
		{err: transient()},
		{err: transient()},
		{obs: starknet.Absent()},
		{obs: receipt(starknet.ExecutionSucceeded, starknet.FinalityAcceptedOnL2)},
	}}
	p, clock := newTestPoller(node)
	p.SetBackoff(&BackoffConfig{Multiplier: 2, MaxInterval: 30 * time.Millisecond})

	conf, err := p.Confirm(context.Background(), testHash, 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5, conf.Polls)
	assert.Equal(t, []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		10 * time.Millisecond,
	}, clock.Waits())
}

func TestPoller_BackoffDisabledKeepsFixedInterval(t *testing.T) {
	node := &fakeNode{receipts: []fetchResult{
		{err: transient()},
		{err: transient()},
		{obs: receipt(starknet.ExecutionSucceeded, starknet.FinalityAcceptedOnL2)},
	}}
	p, clock := newTestPoller(node)
	p.SetBackoff(&BackoffConfig{Multiplier: 1})

	_, err := p.Confirm(context.Background(), testHash, 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, clock.Waits())
}

func TestPoller_ConcurrentConfirms(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			node := &fakeNode{receipts: []fetchResult{
				{obs: starknet.Absent()},
				{obs: receipt(starknet.ExecutionSucceeded, starknet.FinalityAcceptedOnL1)},
			}}
			p, _ := newTestPoller(node)
			conf, err := p.Confirm(context.Background(), testHash, time.Millisecond, time.Second)
			assert.NoError(t, err)
			if conf != nil {
				assert.Equal(t, 2, conf.Polls)
			}
		}()
	}
	wg.Wait()
}
