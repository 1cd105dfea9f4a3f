package starknet

import "fmt"

// Call is a single contract invocation inside an account multicall.
type Call struct {
	To         Felt
	Entrypoint string
	Calldata   []Felt
}

// DataAvailabilityMode selects where nonce and fee data are published.
type DataAvailabilityMode string

const (
	DAModeL1 DataAvailabilityMode = "L1"
	DAModeL2 DataAvailabilityMode = "L2"
)

// ParseDAMode parses a data-availability mode name, case-sensitively.
func ParseDAMode(s string) (DataAvailabilityMode, error) {
	switch DataAvailabilityMode(s) {
	case DAModeL1, DAModeL2:
		return DataAvailabilityMode(s), nil
	default:
		return "", fmt.Errorf("unknown data availability mode %q (must be L1 or L2)", s)
	}
}

// Transaction versions for INVOKE v3. The query version marks estimation-only
// transactions so they can never be replayed on chain.
var (
	InvokeVersion3      = NewFelt(3)
	InvokeQueryVersion3 = MustParseFelt("0x100000000000000000000000000000003")
)

// SimulationFlag alters how the node simulates a transaction.
type SimulationFlag string

const (
	SimulationSkipValidate SimulationFlag = "SKIP_VALIDATE"
)

// ResourceBound is the caller-declared ceiling for one resource kind.
type ResourceBound struct {
	MaxAmount       Felt `json:"max_amount" yaml:"max_amount"`
	MaxPricePerUnit Felt `json:"max_price_per_unit" yaml:"max_price_per_unit"`
}

// ResourceBounds holds the ceilings for every resource the node meters.
type ResourceBounds struct {
	L1Gas     ResourceBound `json:"l1_gas" yaml:"l1_gas"`
	L2Gas     ResourceBound `json:"l2_gas" yaml:"l2_gas"`
	L1DataGas ResourceBound `json:"l1_data_gas" yaml:"l1_data_gas"`
}

// InvokeTxnV3 is a broadcasted INVOKE v3 transaction.
type InvokeTxnV3 struct {
	Type                      string               `json:"type"`
	SenderAddress             Felt                 `json:"sender_address"`
	Calldata                  []Felt               `json:"calldata"`
	Version                   Felt                 `json:"version"`
	Signature                 []Felt               `json:"signature"`
	Nonce                     Felt                 `json:"nonce"`
	ResourceBounds            ResourceBounds       `json:"resource_bounds"`
	Tip                       Felt                 `json:"tip"`
	PaymasterData             []Felt               `json:"paymaster_data"`
	AccountDeploymentData     []Felt               `json:"account_deployment_data"`
	NonceDataAvailabilityMode DataAvailabilityMode `json:"nonce_data_availability_mode"`
	FeeDataAvailabilityMode   DataAvailabilityMode `json:"fee_data_availability_mode"`
}

// NewInvokeTxnV3 returns an unsigned INVOKE v3 transaction with empty bounds.
func NewInvokeTxnV3(sender Felt, calldata []Felt, nonce Felt, mode DataAvailabilityMode) *InvokeTxnV3 {
	return &InvokeTxnV3{
		Type:                      "INVOKE",
		SenderAddress:             sender,
		Calldata:                  calldata,
		Version:                   InvokeVersion3,
		Signature:                 []Felt{},
		Nonce:                     nonce,
		Tip:                       NewFelt(0),
		PaymasterData:             []Felt{},
		AccountDeploymentData:     []Felt{},
		NonceDataAvailabilityMode: mode,
		FeeDataAvailabilityMode:   mode,
	}
}

// FeeEstimate is one element of a starknet_estimateFee response.
type FeeEstimate struct {
	L1GasConsumed     Felt   `json:"l1_gas_consumed"`
	L1GasPrice        Felt   `json:"l1_gas_price"`
	L2GasConsumed     Felt   `json:"l2_gas_consumed"`
	L2GasPrice        Felt   `json:"l2_gas_price"`
	L1DataGasConsumed Felt   `json:"l1_data_gas_consumed"`
	L1DataGasPrice    Felt   `json:"l1_data_gas_price"`
	OverallFee        Felt   `json:"overall_fee"`
	Unit              string `json:"unit"`
}

// ExecutionStatus reports whether the transaction logic ran to completion.
type ExecutionStatus string

const (
	ExecutionSucceeded ExecutionStatus = "SUCCEEDED"
	ExecutionReverted  ExecutionStatus = "REVERTED"
	ExecutionFailed    ExecutionStatus = "FAILED"
)

// FinalityStatus reports how durably the transaction is anchored.
type FinalityStatus string

const (
	FinalityReceived     FinalityStatus = "RECEIVED"
	FinalityAcceptedOnL2 FinalityStatus = "ACCEPTED_ON_L2"
	FinalityAcceptedOnL1 FinalityStatus = "ACCEPTED_ON_L1"
)

// FeePayment is the fee actually charged for a transaction.
type FeePayment struct {
	Amount Felt   `json:"amount" yaml:"amount"`
	Unit   string `json:"unit" yaml:"unit"`
}

// Receipt is a fully shaped transaction receipt.
type Receipt struct {
	TransactionHash Felt            `json:"transaction_hash" yaml:"transaction_hash"`
	Type            string          `json:"type,omitempty" yaml:"type,omitempty"`
	ExecutionStatus ExecutionStatus `json:"execution_status" yaml:"execution_status"`
	FinalityStatus  FinalityStatus  `json:"finality_status" yaml:"finality_status"`
	RevertReason    string          `json:"revert_reason,omitempty" yaml:"revert_reason,omitempty"`
	ActualFee       *FeePayment     `json:"actual_fee,omitempty" yaml:"actual_fee,omitempty"`
	BlockHash       *Felt           `json:"block_hash,omitempty" yaml:"block_hash,omitempty"`
	BlockNumber     *uint64         `json:"block_number,omitempty" yaml:"block_number,omitempty"`
}

// Shape tags what a receipt query produced.
type Shape int

const (
	// ShapeAbsent means the node returned nothing or does not know the hash yet.
	ShapeAbsent Shape = iota
	// ShapePending means a response arrived without execution and finality status.
	ShapePending
	// ShapeInvoke means a receipt with both status fields.
	ShapeInvoke
)

func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapePending:
		return "pending"
	case ShapeInvoke:
		return "invoke"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Observation is the result of one receipt query. Receipt is non-nil only
// when Shape is ShapeInvoke.
type Observation struct {
	Shape   Shape
	Receipt *Receipt
}

// Absent is the observation for a hash the node has not indexed.
func Absent() Observation {
	return Observation{Shape: ShapeAbsent}
}

// Observed wraps a shaped receipt.
func Observed(r *Receipt) Observation {
	if r == nil {
		return Absent()
	}
	return Observation{Shape: ShapeInvoke, Receipt: r}
}

// FunctionCall is a read-only call for starknet_call.
type FunctionCall struct {
	ContractAddress    Felt   `json:"contract_address"`
	EntryPointSelector Felt   `json:"entry_point_selector"`
	Calldata           []Felt `json:"calldata"`
}

// BlockTag names a symbolic block for state queries.
type BlockTag string

const (
	BlockLatest  BlockTag = "latest"
	BlockPending BlockTag = "pending"
)
