package starknet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_PlainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: KindTransient},
		{name: "canceled", err: context.Canceled, want: KindFatal},
		{name: "eof", err: io.ErrUnexpectedEOF, want: KindTransient},
		{name: "unknown", err: errors.New("boom"), want: KindTransient},
		{name: "wrapped rpc error", err: fmt.Errorf("outer: %w", &RPCError{Kind: KindNotFound}), want: KindNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestRPCError_Error(t *testing.T) {
	e := &RPCError{Operation: "starknet_chainId", Kind: KindFatal, Code: 40, Message: "boom"}
	assert.Equal(t, "RPC starknet_chainId failed (fatal, code 40): boom", e.Error())

	e = &RPCError{Operation: "dial", Kind: KindTransient, Message: "refused"}
	assert.Equal(t, "RPC dial failed (transient): refused", e.Error())
	assert.False(t, IsNotFound(nil))
}
