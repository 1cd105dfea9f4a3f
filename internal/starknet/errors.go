package starknet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC error codes defined by the Starknet node API.
const (
	CodeContractNotFound     = 20
	CodeBlockNotFound        = 24
	CodeTxnHashNotFound      = 29
	CodeContractError        = 40
	CodeTxnExecutionError    = 41
	CodeInvalidNonce         = 52
	CodeValidationFailure    = 55
	CodeUnexpectedError      = 63
	codeJSONRPCInternal      = -32603
	codeJSONRPCLimitExceeded = -32005
)

// ErrorKind is the closed classification of adapter failures. Callers branch on
// the kind, never on error text.
type ErrorKind int

const (
	// KindTransient covers network trouble, node overload and per-request timeouts.
	KindTransient ErrorKind = iota
	// KindNotFound means the node does not know the requested object yet.
	KindNotFound
	// KindFatal means retrying the same request cannot succeed.
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not-found"
	case KindFatal:
		return "fatal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RPCError is returned by every Client method that fails.
type RPCError struct {
	Operation string
	Kind      ErrorKind
	Code      int // JSON-RPC or HTTP status code, 0 when not applicable
	Message   string
	Err       error
}

func (e *RPCError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("RPC %s failed (%s, code %d): %s", e.Operation, e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("RPC %s failed (%s): %s", e.Operation, e.Kind, e.Message)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors that did not pass through the adapter
// are classified the same way the adapter would classify them.
func KindOf(err error) ErrorKind {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind
	}
	return classify("", err).Kind
}

// IsNotFound returns true if the error is a not-found failure.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsTransient returns true if retrying the request may succeed.
func IsTransient(err error) bool {
	return err != nil && KindOf(err) == KindTransient
}

// classify maps a transport or node error onto the closed kind set.
func classify(op string, err error) *RPCError {
	e := &RPCError{Operation: op, Kind: KindTransient, Message: err.Error(), Err: err}

	var httpErr rpc.HTTPError
	var jsonErr rpc.Error
	var netErr net.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, context.Canceled):
		e.Kind = KindFatal
	case errors.Is(err, context.DeadlineExceeded):
		e.Kind = KindTransient
	case errors.As(err, &httpErr):
		e.Code = httpErr.StatusCode
		if httpErr.StatusCode >= http.StatusInternalServerError || httpErr.StatusCode == http.StatusTooManyRequests {
			e.Kind = KindTransient
		} else {
			e.Kind = KindFatal
		}
	case errors.As(err, &jsonErr):
		e.Code = jsonErr.ErrorCode()
		switch e.Code {
		case CodeTxnHashNotFound:
			e.Kind = KindNotFound
		case codeJSONRPCInternal, codeJSONRPCLimitExceeded, CodeUnexpectedError:
			e.Kind = KindTransient
		default:
			e.Kind = KindFatal
		}
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
			e.Message = fmt.Sprintf("%s: %v", e.Message, dataErr.ErrorData())
		}
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		e.Kind = KindFatal
	case errors.As(err, &netErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		e.Kind = KindTransient
	}
	return e
}
