package txflow

import (
	"context"
	"fmt"
	"math/big"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// FeeMode selects the data-availability mode used for fee and nonce accounting.
type FeeMode = starknet.DataAvailabilityMode

// Resource bound limits imposed by the INVOKE v3 format.
var (
	maxBoundAmount = new(big.Int).SetUint64(^uint64(0))
	maxBoundPrice  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// Overhead scales node estimates into resource bounds.
type Overhead struct {
	Amount math.LegacyDec
	Price  math.LegacyDec
}

// DefaultOverhead is 1.5x on both amount and price.
func DefaultOverhead() Overhead {
	return Overhead{
		Amount: math.LegacyNewDecWithPrec(15, 1),
		Price:  math.LegacyNewDecWithPrec(15, 1),
	}
}

// ResourceEstimate is the estimate for one intent. It is produced once and
// consumed once by the Submitter.
type ResourceEstimate struct {
	FeeMode         FeeMode                 `json:"fee_mode" yaml:"fee_mode"`
	Bounds          starknet.ResourceBounds `json:"resource_bounds" yaml:"resource_bounds"`
	OverallFee      starknet.Felt           `json:"overall_fee" yaml:"overall_fee"`
	SuggestedMaxFee starknet.Felt           `json:"suggested_max_fee" yaml:"suggested_max_fee"`
	Unit            string                  `json:"unit" yaml:"unit"`
}

// Estimator asks the node what an intent will cost.
type Estimator struct {
	node     Node
	account  starknet.Felt
	overhead Overhead
	logger   log.Logger
}

// NewEstimator creates an Estimator for the given account address.
func NewEstimator(node Node, account starknet.Felt) *Estimator {
	return &Estimator{
		node:     node,
		account:  account,
		overhead: DefaultOverhead(),
		logger:   log.NewNopLogger(),
	}
}

// SetLogger sets the logger.
func (e *Estimator) SetLogger(logger log.Logger) {
	e.logger = logger
}

// SetOverhead replaces the bound multipliers.
func (e *Estimator) SetOverhead(o Overhead) {
	e.overhead = o
}

// Estimate simulates intent in the given fee mode. Any failure is an
// EstimationFailedError.
func (e *Estimator) Estimate(ctx context.Context, intent TransactionIntent, mode FeeMode) (*ResourceEstimate, error) {
	if intent.Len() == 0 {
		return nil, &EstimationFailedError{Err: fmt.Errorf("intent has no calls")}
	}
	calldata, err := intent.calldata()
	if err != nil {
		return nil, &EstimationFailedError{Err: err}
	}

	nonce, err := e.node.Nonce(ctx, starknet.BlockPending, e.account)
	if err != nil {
		return nil, &EstimationFailedError{Err: fmt.Errorf("fetch nonce: %w", err)}
	}

	tx := starknet.NewInvokeTxnV3(e.account, calldata, nonce, mode)
	tx.Version = starknet.InvokeQueryVersion3

	e.logger.Debug("estimating fee", "calls", intent.Len(), "nonce", nonce.String(), "fee_mode", string(mode))
	estimates, err := e.node.EstimateFee(ctx, []*starknet.InvokeTxnV3{tx}, []starknet.SimulationFlag{starknet.SimulationSkipValidate}, starknet.BlockPending)
	if err != nil {
		return nil, &EstimationFailedError{Err: err}
	}
	if len(estimates) == 0 {
		return nil, &EstimationFailedError{Err: fmt.Errorf("node returned no estimate")}
	}

	est, err := e.fromNodeEstimate(estimates[0], mode)
	if err != nil {
		return nil, &EstimationFailedError{Err: err}
	}
	e.logger.Info("fee estimated",
		"overall_fee", est.OverallFee.String(),
		"suggested_max_fee", est.SuggestedMaxFee.String(),
		"unit", est.Unit)
	return est, nil
}

func (e *Estimator) fromNodeEstimate(fe starknet.FeeEstimate, mode FeeMode) (*ResourceEstimate, error) {
	l1, err := e.bound(fe.L1GasConsumed, fe.L1GasPrice)
	if err != nil {
		return nil, fmt.Errorf("l1_gas: %w", err)
	}
	l2, err := e.bound(fe.L2GasConsumed, fe.L2GasPrice)
	if err != nil {
		return nil, fmt.Errorf("l2_gas: %w", err)
	}
	l1Data, err := e.bound(fe.L1DataGasConsumed, fe.L1DataGasPrice)
	if err != nil {
		return nil, fmt.Errorf("l1_data_gas: %w", err)
	}

	ceiling := new(big.Int)
	for _, b := range []starknet.ResourceBound{l1, l2, l1Data} {
		ceiling.Add(ceiling, new(big.Int).Mul(b.MaxAmount.Big(), b.MaxPricePerUnit.Big()))
	}
	suggested, err := starknet.FeltFromBig(ceiling)
	if err != nil {
		return nil, fmt.Errorf("suggested max fee: %w", err)
	}

	return &ResourceEstimate{
		FeeMode:         mode,
		Bounds:          starknet.ResourceBounds{L1Gas: l1, L2Gas: l2, L1DataGas: l1Data},
		OverallFee:      fe.OverallFee,
		SuggestedMaxFee: suggested,
		Unit:            fe.Unit,
	}, nil
}

func (e *Estimator) bound(consumed, price starknet.Felt) (starknet.ResourceBound, error) {
	amount, err := scaleCeil(consumed.Big(), e.overhead.Amount, maxBoundAmount)
	if err != nil {
		return starknet.ResourceBound{}, err
	}
	unit, err := scaleCeil(price.Big(), e.overhead.Price, maxBoundPrice)
	if err != nil {
		return starknet.ResourceBound{}, err
	}
	return starknet.ResourceBound{MaxAmount: amount, MaxPricePerUnit: unit}, nil
}

// scaleCeil returns ceil(v * factor), clamped to limit.
func scaleCeil(v *big.Int, factor math.LegacyDec, limit *big.Int) (starknet.Felt, error) {
	if v.Cmp(limit) > 0 {
		return starknet.FeltFromBig(limit)
	}
	scaled := math.LegacyNewDecFromBigInt(v).Mul(factor).Ceil().TruncateInt().BigInt()
	if scaled.Cmp(limit) > 0 {
		scaled = limit
	}
	return starknet.FeltFromBig(scaled)
}
