package txflow

import (
	"context"
	"fmt"
	"time"

	"cosmossdk.io/log"
	"github.com/google/uuid"

	"github.com/altuslabsxyz/roulette-vrf/internal/bet"
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// Default confirmation timing.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultTimeout      = 180 * time.Second
)

// Contracts holds the addresses the engine calls into.
type Contracts struct {
	VRFProvider starknet.Felt
	Roulette    starknet.Felt
}

// EngineConfig holds the static settings of an Engine.
type EngineConfig struct {
	Contracts Contracts
	FeeMode   FeeMode
	Overhead  Overhead
	Backoff   *BackoffConfig
}

// Timing controls the confirmation loop of one run.
type Timing struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

// DefaultTiming polls every 5s for up to 180s.
func DefaultTiming() Timing {
	return Timing{PollInterval: DefaultPollInterval, Timeout: DefaultTimeout}
}

// BetPayload is the game action of one run. A nil Source seeds the VRF
// request from the account nonce.
type BetPayload struct {
	Bets   []bet.Bet
	Source *bet.Source
}

// Hooks let the caller observe or veto a run between its phases.
type Hooks struct {
	// BeforeSubmit runs after estimation. Returning false aborts the run with
	// ErrSubmissionDeclined; returning an error aborts with that error.
	BeforeSubmit func(ctx context.Context, intent TransactionIntent, est *ResourceEstimate) (bool, error)

	// Submitted runs once the node has accepted the transaction for processing.
	Submitted func(hash starknet.Felt)
}

// FinalReceipt is the result of a confirmed run.
type FinalReceipt struct {
	RunID    string            `json:"run_id" yaml:"run_id"`
	Hash     starknet.Felt     `json:"transaction_hash" yaml:"transaction_hash"`
	Status   Status            `json:"status" yaml:"status"`
	Receipt  *starknet.Receipt `json:"receipt" yaml:"receipt"`
	Estimate *ResourceEstimate `json:"estimate,omitempty" yaml:"estimate,omitempty"`
	Polls    int               `json:"polls" yaml:"polls"`
	Elapsed  time.Duration     `json:"elapsed" yaml:"elapsed"`
}

// Engine runs bet transactions end to end: compose, estimate, submit, confirm.
type Engine struct {
	cfg       EngineConfig
	signer    Signer
	estimator *Estimator
	submitter *Submitter
	poller    *Poller
	hooks     Hooks
	logger    log.Logger
}

// NewEngine wires the core components against node and signer.
func NewEngine(node Node, signer Signer, cfg EngineConfig) *Engine {
	if cfg.FeeMode == "" {
		cfg.FeeMode = starknet.DAModeL1
	}
	if cfg.Overhead.Amount.IsNil() || cfg.Overhead.Price.IsNil() {
		cfg.Overhead = DefaultOverhead()
	}

	estimator := NewEstimator(node, signer.Address())
	estimator.SetOverhead(cfg.Overhead)
	poller := NewPoller(node)
	poller.SetBackoff(cfg.Backoff)

	return &Engine{
		cfg:       cfg,
		signer:    signer,
		estimator: estimator,
		submitter: NewSubmitter(node, signer),
		poller:    poller,
		logger:    log.NewNopLogger(),
	}
}

// SetLogger sets the logger on the engine and its components.
func (e *Engine) SetLogger(logger log.Logger) {
	e.logger = logger
	e.estimator.SetLogger(logger.With("component", "estimator"))
	e.submitter.SetLogger(logger.With("component", "submitter"))
	e.poller.SetLogger(logger.With("component", "poller"))
}

// SetClock replaces the poller's time source.
func (e *Engine) SetClock(c Clock) {
	e.poller.SetClock(c)
}

// SetHooks installs run hooks.
func (e *Engine) SetHooks(h Hooks) {
	e.hooks = h
}

// Intent encodes payload into the two-call VRF multicall.
func (e *Engine) Intent(payload BetPayload) (TransactionIntent, error) {
	src := bet.NonceSource(e.signer.Address())
	if payload.Source != nil {
		src = *payload.Source
	}
	oracle, err := bet.RequestRandom(e.cfg.Contracts.VRFProvider, e.cfg.Contracts.Roulette, src)
	if err != nil {
		return TransactionIntent{}, fmt.Errorf("encode vrf request: %w", err)
	}
	consume, err := bet.PlayGame(e.cfg.Contracts.Roulette, payload.Bets)
	if err != nil {
		return TransactionIntent{}, fmt.Errorf("encode bets: %w", err)
	}
	return Compose(oracle, consume)
}

// Estimate composes payload and estimates its cost without submitting.
func (e *Engine) Estimate(ctx context.Context, payload BetPayload) (TransactionIntent, *ResourceEstimate, error) {
	intent, err := e.Intent(payload)
	if err != nil {
		return TransactionIntent{}, nil, err
	}
	est, err := e.estimator.Estimate(ctx, intent, e.cfg.FeeMode)
	if err != nil {
		return TransactionIntent{}, nil, err
	}
	return intent, est, nil
}

// RunBetTransaction submits payload as one multicall and waits for a terminal
// status. It returns the final receipt, or the typed error of the phase that
// failed. Nothing is submitted when estimation fails.
func (e *Engine) RunBetTransaction(ctx context.Context, payload BetPayload, timing Timing) (*FinalReceipt, error) {
	if timing.PollInterval <= 0 {
		timing.PollInterval = DefaultPollInterval
	}
	if timing.Timeout <= 0 {
		timing.Timeout = DefaultTimeout
	}

	runID := uuid.New().String()
	logger := e.logger.With("run_id", runID)
	logger.Info("starting bet transaction",
		"account", e.signer.Address().String(),
		"bets", len(payload.Bets),
		"fee_mode", string(e.cfg.FeeMode))

	intent, est, err := e.Estimate(ctx, payload)
	if err != nil {
		logger.Error("estimation phase failed", "error", err)
		return nil, err
	}

	if e.hooks.BeforeSubmit != nil {
		ok, err := e.hooks.BeforeSubmit(ctx, intent, est)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Info("submission declined")
			return nil, ErrSubmissionDeclined
		}
	}

	hash, err := e.submitter.Submit(ctx, intent, est)
	if err != nil {
		logger.Error("submission phase failed", "error", err)
		return nil, err
	}
	if e.hooks.Submitted != nil {
		e.hooks.Submitted(hash)
	}

	conf, err := e.poller.Confirm(ctx, hash, timing.PollInterval, timing.Timeout)
	if err != nil {
		return nil, err
	}
	return &FinalReceipt{
		RunID:    runID,
		Hash:     hash,
		Status:   conf.Status,
		Receipt:  conf.Receipt,
		Estimate: est,
		Polls:    conf.Polls,
		Elapsed:  conf.Elapsed,
	}, nil
}
