package signer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandExecutor runs an external program with a payload on stdin.
// Tests substitute a fake so no process is started.
type CommandExecutor interface {
	// Run executes name with args, writes stdin to the process and returns
	// its stdout. The process is killed when ctx is done.
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// OSCommandExecutor implements CommandExecutor with os/exec.
type OSCommandExecutor struct{}

// NewOSCommandExecutor creates the production executor.
func NewOSCommandExecutor() *OSCommandExecutor {
	return &OSCommandExecutor{}
}

// Run executes the command. Stderr is folded into the error on failure so the
// signer's own diagnostics reach the operator.
func (e *OSCommandExecutor) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
