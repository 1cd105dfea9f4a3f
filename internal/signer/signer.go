// Package signer provides account signers for the transaction engine.
//
// The engine never handles key material. CommandSigner delegates signing to an
// external program (a hardware wallet bridge, a keystore tool, or a remote
// signing service client) which receives the unsigned transaction as JSON on
// stdin and prints the signature as a JSON array of felts on stdout.
package signer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/log"
	"github.com/caarlos0/go-shellwords"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

// DefaultTimeout bounds one signing request.
const DefaultTimeout = 30 * time.Second

// Request is the JSON document written to the signer's stdin.
type Request struct {
	ChainID     starknet.Felt         `json:"chain_id"`
	Account     starknet.Felt         `json:"account"`
	Transaction *starknet.InvokeTxnV3 `json:"transaction"`
}

// response accepts either a bare array or {"signature": [...]}.
type response struct {
	Signature []starknet.Felt `json:"signature"`
}

// CommandSigner signs by running an external command.
type CommandSigner struct {
	address  starknet.Felt
	chainID  starknet.Felt
	name     string
	args     []string
	executor CommandExecutor
	timeout  time.Duration
	logger   log.Logger
}

var _ txflow.Signer = (*CommandSigner)(nil)

// NewCommandSigner parses command with shell quoting rules. The command is
// executed directly, never through a shell.
func NewCommandSigner(address, chainID starknet.Felt, command string) (*CommandSigner, error) {
	if address.IsZero() {
		return nil, fmt.Errorf("account address is required")
	}
	words, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse signer command: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("signer command is empty")
	}
	return &CommandSigner{
		address:  address,
		chainID:  chainID,
		name:     words[0],
		args:     words[1:],
		executor: NewOSCommandExecutor(),
		timeout:  DefaultTimeout,
		logger:   log.NewNopLogger(),
	}, nil
}

// SetExecutor replaces the command executor.
func (s *CommandSigner) SetExecutor(e CommandExecutor) {
	s.executor = e
}

// SetTimeout sets the per-request timeout.
func (s *CommandSigner) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// SetLogger sets the logger.
func (s *CommandSigner) SetLogger(logger log.Logger) {
	s.logger = logger.With("module", "signer")
}

// Address returns the account address.
func (s *CommandSigner) Address() starknet.Felt {
	return s.address
}

// Command returns the program and arguments that will be executed.
func (s *CommandSigner) Command() (string, []string) {
	return s.name, append([]string(nil), s.args...)
}

// SignInvoke runs the signer command for tx.
func (s *CommandSigner) SignInvoke(ctx context.Context, tx *starknet.InvokeTxnV3) ([]starknet.Felt, error) {
	payload, err := json.Marshal(Request{ChainID: s.chainID, Account: s.address, Transaction: tx})
	if err != nil {
		return nil, fmt.Errorf("encode signing request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Debug("requesting signature", "command", s.name, "nonce", tx.Nonce.String())
	out, err := s.executor.Run(ctx, payload, s.name, s.args...)
	if err != nil {
		return nil, fmt.Errorf("signer command %s failed: %w", s.name, err)
	}

	sig, err := decodeSignature(out)
	if err != nil {
		return nil, fmt.Errorf("signer command %s: %w", s.name, err)
	}
	return sig, nil
}

func decodeSignature(out []byte) ([]starknet.Felt, error) {
	var sig []starknet.Felt
	if err := json.Unmarshal(out, &sig); err != nil {
		var resp response
		if objErr := json.Unmarshal(out, &resp); objErr != nil {
			return nil, fmt.Errorf("invalid signature output: %w", err)
		}
		sig = resp.Signature
	}
	if len(sig) == 0 {
		return nil, fmt.Errorf("signature is empty")
	}
	return sig, nil
}
