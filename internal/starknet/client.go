package starknet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	// DefaultRequestTimeout bounds a single JSON-RPC round trip.
	DefaultRequestTimeout = 15 * time.Second
)

// Client talks to a Starknet node over JSON-RPC. Every failure it returns is
// an *RPCError with its ErrorKind already decided.
type Client struct {
	endpoint string
	rpc      *rpc.Client
	logger   log.Logger
}

// Dial connects to the node at endpoint (http, https, ws or wss).
func Dial(ctx context.Context, endpoint string, requestTimeout time.Duration) (*Client, error) {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	c, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(&http.Client{Timeout: requestTimeout}))
	if err != nil {
		return nil, &RPCError{Operation: "dial", Kind: KindFatal, Message: err.Error(), Err: err}
	}
	return NewClient(endpoint, c), nil
}

// NewClient wraps an existing go-ethereum RPC client.
func NewClient(endpoint string, c *rpc.Client) *Client {
	return &Client{
		endpoint: endpoint,
		rpc:      c,
		logger:   log.NewNopLogger(),
	}
}

// SetLogger sets the logger.
func (c *Client) SetLogger(logger log.Logger) {
	c.logger = logger.With("module", "starknet-rpc", "endpoint", c.endpoint)
}

func (c *Client) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	start := time.Now()
	err := c.rpc.CallContext(ctx, result, method, args...)
	if err != nil {
		rpcErr := classify(method, err)
		c.logger.Debug("rpc call failed", "method", method, "kind", rpcErr.Kind.String(), "elapsed", time.Since(start), "error", err)
		return rpcErr
	}
	c.logger.Debug("rpc call", "method", method, "elapsed", time.Since(start))
	return nil
}

// ChainID returns the chain identifier.
func (c *Client) ChainID(ctx context.Context) (Felt, error) {
	var id Felt
	if err := c.call(ctx, &id, "starknet_chainId"); err != nil {
		return Felt{}, err
	}
	return id, nil
}

// Nonce returns the account nonce at the given block.
func (c *Client) Nonce(ctx context.Context, block BlockTag, address Felt) (Felt, error) {
	var nonce Felt
	if err := c.call(ctx, &nonce, "starknet_getNonce", block, address); err != nil {
		return Felt{}, err
	}
	return nonce, nil
}

// EstimateFee simulates the transactions and returns one estimate per transaction.
func (c *Client) EstimateFee(ctx context.Context, txs []*InvokeTxnV3, flags []SimulationFlag, block BlockTag) ([]FeeEstimate, error) {
	if flags == nil {
		flags = []SimulationFlag{}
	}
	var estimates []FeeEstimate
	if err := c.call(ctx, &estimates, "starknet_estimateFee", txs, flags, block); err != nil {
		return nil, err
	}
	if len(estimates) != len(txs) {
		return nil, &RPCError{
			Operation: "starknet_estimateFee",
			Kind:      KindFatal,
			Message:   fmt.Sprintf("node returned %d estimates for %d transactions", len(estimates), len(txs)),
		}
	}
	return estimates, nil
}

type addInvokeResult struct {
	TransactionHash Felt `json:"transaction_hash"`
}

// AddInvokeTransaction broadcasts a signed INVOKE transaction and returns its hash.
func (c *Client) AddInvokeTransaction(ctx context.Context, tx *InvokeTxnV3) (Felt, error) {
	var res addInvokeResult
	if err := c.call(ctx, &res, "starknet_addInvokeTransaction", tx); err != nil {
		return Felt{}, err
	}
	if res.TransactionHash.IsZero() {
		return Felt{}, &RPCError{
			Operation: "starknet_addInvokeTransaction",
			Kind:      KindFatal,
			Message:   "node returned an empty transaction hash",
		}
	}
	return res.TransactionHash, nil
}

// TransactionReceipt fetches the receipt for hash. A null result yields an
// Absent observation; an unknown hash yields a KindNotFound error.
func (c *Client) TransactionReceipt(ctx context.Context, hash Felt) (Observation, error) {
	var raw json.RawMessage
	if err := c.call(ctx, &raw, "starknet_getTransactionReceipt", hash); err != nil {
		return Absent(), err
	}
	return decodeReceipt(raw, hash, c.logger), nil
}

// Call runs a read-only contract call.
func (c *Client) Call(ctx context.Context, call FunctionCall, block BlockTag) ([]Felt, error) {
	if call.Calldata == nil {
		call.Calldata = []Felt{}
	}
	var out []Felt
	if err := c.call(ctx, &out, "starknet_call", call, block); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}
