package txflow

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/log"
	"github.com/cenkalti/backoff/v4"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// PollState is a state of the confirmation state machine.
type PollState int

const (
	StatePolling PollState = iota
	StateConfirmed
	StateFailed
	StateTimedOut
)

func (s PollState) String() string {
	switch s {
	case StatePolling:
		return "Polling"
	case StateConfirmed:
		return "Confirmed"
	case StateFailed:
		return "Failed"
	case StateTimedOut:
		return "TimedOut"
	default:
		return fmt.Sprintf("PollState(%d)", int(s))
	}
}

// BackoffConfig spaces polls out after consecutive transient fetch errors.
// A Multiplier of 1 or less keeps the fixed interval.
type BackoffConfig struct {
	Multiplier  float64
	MaxInterval time.Duration
}

func (b *BackoffConfig) enabled() bool {
	return b != nil && b.Multiplier > 1
}

// Confirmation is the outcome of a successful Confirm.
type Confirmation struct {
	Hash    starknet.Felt
	Status  Status
	Receipt *starknet.Receipt
	Polls   int
	Elapsed time.Duration
}

// Poller waits for a submitted transaction to reach a terminal status. It
// only reads from the node and holds no state between Confirm calls, so
// independent Confirm loops may run concurrently.
type Poller struct {
	fetcher ReceiptFetcher
	clock   Clock
	backoff *BackoffConfig
	logger  log.Logger
}

// NewPoller creates a Poller using the wall clock.
func NewPoller(fetcher ReceiptFetcher) *Poller {
	return &Poller{
		fetcher: fetcher,
		clock:   RealClock(),
		logger:  log.NewNopLogger(),
	}
}

// SetLogger sets the logger.
func (p *Poller) SetLogger(logger log.Logger) {
	p.logger = logger
}

// SetClock replaces the time source.
func (p *Poller) SetClock(c Clock) {
	p.clock = c
}

// SetBackoff enables spacing after transient errors; nil disables it.
func (p *Poller) SetBackoff(b *BackoffConfig) {
	p.backoff = b
}

// pollRun is the mutable state of one Confirm call.
type pollRun struct {
	hash     starknet.Felt
	interval time.Duration
	timeout  time.Duration
	start    time.Time
	deadline time.Time

	state     PollState
	polls     int
	status    Status
	receipt   *starknet.Receipt
	err       error
	transient int
	spacing   *backoff.ExponentialBackOff
}

// Confirm polls for the receipt of hash every interval until it is accepted,
// rejected, or timeout elapses. Not-found and transient fetch errors keep the
// loop polling. Cancelling ctx stops the loop immediately.
func (p *Poller) Confirm(ctx context.Context, hash starknet.Felt, interval, timeout time.Duration) (*Confirmation, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	now := p.clock.Now()
	run := &pollRun{
		hash:     hash,
		interval: interval,
		timeout:  timeout,
		start:    now,
		deadline: now.Add(timeout),
		state:    StatePolling,
	}
	if p.backoff.enabled() {
		run.spacing = p.newSpacing(interval)
	}
	logger := p.logger.With("tx_hash", hash.String())
	logger.Info("waiting for transaction", "interval", interval, "timeout", timeout)

	for {
		switch run.state {
		case StatePolling:
			if err := p.poll(ctx, run, logger); err != nil {
				return nil, err
			}
		case StateConfirmed:
			logger.Info("transaction confirmed", "status", run.status.String(), "polls", run.polls)
			return &Confirmation{
				Hash:    hash,
				Status:  run.status,
				Receipt: run.receipt,
				Polls:   run.polls,
				Elapsed: p.clock.Now().Sub(run.start),
			}, nil
		case StateFailed:
			logger.Error("transaction failed", "polls", run.polls, "error", run.err)
			return nil, run.err
		case StateTimedOut:
			logger.Error("transaction timed out", "polls", run.polls, "last_status", run.status.String())
			return nil, &TransactionTimeoutError{
				Hash:       hash,
				Timeout:    timeout,
				Polls:      run.polls,
				LastStatus: run.status,
			}
		}
	}
}

// poll performs one fetch-classify-wait cycle and moves run to its next
// state. A non-nil error aborts without a terminal state (cancellation).
func (p *Poller) poll(ctx context.Context, run *pollRun, logger log.Logger) error {
	run.polls++
	obs, fetchErr := p.fetch(ctx, run)

	if fetchErr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("confirmation of %s canceled: %w", run.hash, ctx.Err())
		}
		switch starknet.KindOf(fetchErr) {
		case starknet.KindNotFound:
			logger.Debug("transaction not found yet", "poll", run.polls)
			obs = starknet.Absent()
			run.transient = 0
		case starknet.KindTransient:
			run.transient++
			tfe := &TransientFetchError{Hash: run.hash, Attempt: run.polls, Err: fetchErr}
			logger.Info("receipt fetch failed, will retry", "poll", run.polls, "error", tfe.Error())
			obs = starknet.Absent()
		default:
			run.err = &FetchFailedError{Hash: run.hash, Polls: run.polls, Err: fetchErr}
			run.state = StateFailed
			return nil
		}
	} else {
		run.transient = 0
	}

	run.status = Classify(obs)
	switch run.status {
	case StatusAcceptedL2, StatusAcceptedL1:
		run.receipt = obs.Receipt
		run.state = StateConfirmed
		return nil
	case StatusRejected:
		r := obs.Receipt
		run.receipt = r
		run.err = &TransactionRejectedError{
			Hash:            run.hash,
			Reason:          r.RevertReason,
			ExecutionStatus: r.ExecutionStatus,
			FinalityStatus:  r.FinalityStatus,
			Receipt:         r,
			Polls:           run.polls,
		}
		run.state = StateFailed
		return nil
	}
	logger.Debug("transaction not final", "poll", run.polls, "shape", obs.Shape.String())

	remaining := run.deadline.Sub(p.clock.Now())
	if remaining <= 0 {
		run.state = StateTimedOut
		return nil
	}
	wait := p.nextWait(run)
	if wait > remaining {
		wait = remaining
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("confirmation of %s canceled: %w", run.hash, ctx.Err())
	case <-p.clock.After(wait):
	}

	if !p.clock.Now().Before(run.deadline) {
		run.state = StateTimedOut
	}
	return nil
}

// fetch bounds a single receipt request by the time left before the deadline.
func (p *Poller) fetch(ctx context.Context, run *pollRun) (starknet.Observation, error) {
	remaining := run.deadline.Sub(p.clock.Now())
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	fetchCtx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()
	return p.fetcher.TransactionReceipt(fetchCtx, run.hash)
}

func (p *Poller) nextWait(run *pollRun) time.Duration {
	if run.spacing == nil {
		return run.interval
	}
	if run.transient == 0 {
		run.spacing.Reset()
		return run.interval
	}
	d := run.spacing.NextBackOff()
	if d == backoff.Stop || d < run.interval {
		return run.interval
	}
	return d
}

func (p *Poller) newSpacing(interval time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.RandomizationFactor = 0
	b.Multiplier = p.backoff.Multiplier
	b.MaxInterval = p.backoff.MaxInterval
	if b.MaxInterval < interval {
		b.MaxInterval = interval
	}
	b.MaxElapsedTime = 0
	b.Clock = p.clock
	b.Reset()
	return b
}
