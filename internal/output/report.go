package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

// Format selects how results are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be text, json or yaml)", s)
	}
}

// receiptView is the machine-readable form of a final receipt.
type receiptView struct {
	RunID           string                   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	TransactionHash string                   `json:"transaction_hash" yaml:"transaction_hash"`
	Status          string                   `json:"status" yaml:"status"`
	ExecutionStatus string                   `json:"execution_status,omitempty" yaml:"execution_status,omitempty"`
	FinalityStatus  string                   `json:"finality_status,omitempty" yaml:"finality_status,omitempty"`
	BlockNumber     *uint64                  `json:"block_number,omitempty" yaml:"block_number,omitempty"`
	BlockHash       string                   `json:"block_hash,omitempty" yaml:"block_hash,omitempty"`
	ActualFee       *starknet.FeePayment     `json:"actual_fee,omitempty" yaml:"actual_fee,omitempty"`
	Estimate        *txflow.ResourceEstimate `json:"estimate,omitempty" yaml:"estimate,omitempty"`
	Polls           int                      `json:"polls" yaml:"polls"`
	Elapsed         string                   `json:"elapsed" yaml:"elapsed"`
}

func newReceiptView(r *txflow.FinalReceipt) receiptView {
	v := receiptView{
		RunID:           r.RunID,
		TransactionHash: r.Hash.String(),
		Status:          r.Status.String(),
		Estimate:        r.Estimate,
		Polls:           r.Polls,
		Elapsed:         r.Elapsed.Round(time.Millisecond).String(),
	}
	if rc := r.Receipt; rc != nil {
		v.ExecutionStatus = string(rc.ExecutionStatus)
		v.FinalityStatus = string(rc.FinalityStatus)
		v.BlockNumber = rc.BlockNumber
		v.ActualFee = rc.ActualFee
		if rc.BlockHash != nil {
			v.BlockHash = rc.BlockHash.String()
		}
	}
	return v
}

// RenderReceipt writes the final receipt of a run in the given format.
func RenderReceipt(w io.Writer, format Format, r *txflow.FinalReceipt) error {
	if format == FormatText {
		return renderReceiptText(w, r)
	}
	return RenderValue(w, format, newReceiptView(r))
}

// RenderValue writes v as indented JSON or as YAML.
func RenderValue(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("format %q has no structured encoding", format)
	}
}

func renderReceiptText(w io.Writer, r *txflow.FinalReceipt) error {
	v := newReceiptView(r)
	green := color.New(color.FgGreen, color.Bold)

	var sb strings.Builder
	sb.WriteString(CyanSeparator() + "\n")
	sb.WriteString(green.Sprintf("✓ Transaction %s", v.Status) + "\n")
	sb.WriteString(fmt.Sprintf("  hash:       %s\n", v.TransactionHash))
	if v.ExecutionStatus != "" {
		sb.WriteString(fmt.Sprintf("  execution:  %s\n", v.ExecutionStatus))
		sb.WriteString(fmt.Sprintf("  finality:   %s\n", v.FinalityStatus))
	}
	if v.BlockNumber != nil {
		sb.WriteString(fmt.Sprintf("  block:      %d\n", *v.BlockNumber))
	}
	if v.ActualFee != nil {
		sb.WriteString(fmt.Sprintf("  actual fee: %s %s\n", FormatAmount(v.ActualFee.Amount), v.ActualFee.Unit))
	} else {
		sb.WriteString("  actual fee: not available in this receipt\n")
	}
	sb.WriteString(fmt.Sprintf("  polls:      %d in %s\n", v.Polls, v.Elapsed))
	if v.RunID != "" {
		sb.WriteString(fmt.Sprintf("  run id:     %s\n", v.RunID))
	}
	sb.WriteString(CyanSeparator() + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderEstimate writes a fee estimate as text.
func RenderEstimate(w io.Writer, est *txflow.ResourceEstimate) error {
	b := est.Bounds
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Fee estimate (%s, data availability %s)\n", est.Unit, est.FeeMode))
	sb.WriteString(fmt.Sprintf("  %-12s %22s %22s\n", "resource", "max amount", "max price/unit"))
	for _, row := range []struct {
		name  string
		bound starknet.ResourceBound
	}{
		{"l1_gas", b.L1Gas},
		{"l2_gas", b.L2Gas},
		{"l1_data_gas", b.L1DataGas},
	} {
		sb.WriteString(fmt.Sprintf("  %-12s %22s %22s\n", row.name, FormatAmount(row.bound.MaxAmount), FormatAmount(row.bound.MaxPricePerUnit)))
	}
	sb.WriteString(fmt.Sprintf("  overall fee:       %s\n", FormatAmount(est.OverallFee)))
	sb.WriteString(fmt.Sprintf("  suggested max fee: %s\n", FormatAmount(est.SuggestedMaxFee)))
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatAmount renders a felt as a decimal integer.
func FormatAmount(f starknet.Felt) string {
	return f.Big().String()
}

// RenderRejection writes the details of a rejected transaction.
func RenderRejection(w io.Writer, e *txflow.TransactionRejectedError) error {
	red := color.New(color.FgRed, color.Bold)

	var sb strings.Builder
	sb.WriteString(RedSeparator() + "\n")
	sb.WriteString(red.Sprint("✗ Transaction REJECTED") + "\n")
	sb.WriteString(fmt.Sprintf("  hash:       %s\n", e.Hash))
	sb.WriteString(fmt.Sprintf("  execution:  %s\n", e.ExecutionStatus))
	sb.WriteString(fmt.Sprintf("  finality:   %s\n", e.FinalityStatus))
	if e.Reason != "" {
		sb.WriteString(fmt.Sprintf("  reason:     %s\n", e.Reason))
	}
	if e.Receipt != nil && e.Receipt.ActualFee != nil {
		sb.WriteString(fmt.Sprintf("  actual fee: %s %s\n", FormatAmount(e.Receipt.ActualFee.Amount), e.Receipt.ActualFee.Unit))
	}
	sb.WriteString(RedSeparator() + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
