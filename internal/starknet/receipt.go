package starknet

import (
	"bytes"
	"encoding/json"

	"cosmossdk.io/log"
)

// rawReceipt mirrors the node response. Fields stay raw so that one malformed
// optional field cannot fail the whole fetch.
type rawReceipt struct {
	TransactionHash json.RawMessage `json:"transaction_hash"`
	Type            json.RawMessage `json:"type"`
	ExecutionStatus json.RawMessage `json:"execution_status"`
	FinalityStatus  json.RawMessage `json:"finality_status"`
	RevertReason    json.RawMessage `json:"revert_reason"`
	ActualFee       json.RawMessage `json:"actual_fee"`
	BlockHash       json.RawMessage `json:"block_hash"`
	BlockNumber     json.RawMessage `json:"block_number"`
}

// decodeReceipt converts a receipt result into the tagged variant once, at the
// adapter boundary. The two status fields decide the shape. Optional fields
// that do not decode are dropped.
func decodeReceipt(data json.RawMessage, hash Felt, logger log.Logger) Observation {
	if isNull(data) {
		return Absent()
	}
	var raw rawReceipt
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Debug("receipt is not an object, treating as pending", "hash", hash.String(), "error", err)
		return Observation{Shape: ShapePending}
	}

	var exec, fin string
	if !decodeOptional(raw.ExecutionStatus, &exec, "execution_status", logger) ||
		!decodeOptional(raw.FinalityStatus, &fin, "finality_status", logger) {
		return Observation{Shape: ShapePending}
	}

	rc := &Receipt{
		TransactionHash: hash,
		ExecutionStatus: ExecutionStatus(exec),
		FinalityStatus:  FinalityStatus(fin),
	}
	var txHash Felt
	if decodeOptional(raw.TransactionHash, &txHash, "transaction_hash", logger) {
		rc.TransactionHash = txHash
	}
	decodeOptional(raw.Type, &rc.Type, "type", logger)
	decodeOptional(raw.RevertReason, &rc.RevertReason, "revert_reason", logger)

	var fee FeePayment
	if decodeOptional(raw.ActualFee, &fee, "actual_fee", logger) {
		rc.ActualFee = &fee
	}
	var blockHash Felt
	if decodeOptional(raw.BlockHash, &blockHash, "block_hash", logger) {
		rc.BlockHash = &blockHash
	}
	var blockNumber uint64
	if decodeOptional(raw.BlockNumber, &blockNumber, "block_number", logger) {
		rc.BlockNumber = &blockNumber
	}
	return Observed(rc)
}

// decodeOptional reports whether field was present and decoded into v.
func decodeOptional(field json.RawMessage, v interface{}, name string, logger log.Logger) bool {
	if isNull(field) {
		return false
	}
	if err := json.Unmarshal(field, v); err != nil {
		logger.Debug("dropping malformed receipt field", "field", name, "error", err)
		return false
	}
	return true
}

func isNull(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}
