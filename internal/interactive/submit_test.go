package interactive

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altuslabsxyz/roulette-vrf/internal/bet"
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

type mockPrompter struct {
	confirm   bool
	selection int
	err       error
	labels    []string
	items     []string
}

func (m *mockPrompter) Confirm(label string) (bool, error) {
	m.labels = append(m.labels, label)
	return m.confirm, m.err
}

func (m *mockPrompter) SelectFromList(label string, items []string) (int, error) {
	m.labels = append(m.labels, label)
	m.items = items
	return m.selection, m.err
}

func testIntent(t *testing.T) txflow.TransactionIntent {
	t.Helper()
	intent, err := txflow.Compose(
		starknet.Call{To: starknet.NewFelt(0x51), Entrypoint: "request_random", Calldata: []starknet.Felt{starknet.NewFelt(1), starknet.NewFelt(0), starknet.NewFelt(2)}},
		starknet.Call{To: starknet.NewFelt(0x52), Entrypoint: "play_game"},
	)
	require.NoError(t, err)
	return intent
}

func TestConfirmSubmission(t *testing.T) {
	est := &txflow.ResourceEstimate{FeeMode: starknet.DAModeL1, SuggestedMaxFee: starknet.NewFelt(7502122), Unit: "FRI"}

	tests := []struct {
		name    string
		mock    *mockPrompter
		want    bool
		wantErr error
	}{
		{"accepted", &mockPrompter{confirm: true}, true, nil},
		{"declined", &mockPrompter{confirm: false}, false, nil},
		{"canceled", &mockPrompter{err: ErrCanceled}, false, ErrCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			hook := ConfirmSubmission(tt.mock, &buf)

			ok, err := hook(context.Background(), testIntent(t), est)
			assert.Equal(t, tt.want, ok)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}

			assert.Contains(t, buf.String(), "call 1: request_random on 0x51 (3 args)")
			assert.Contains(t, buf.String(), "call 2: play_game on 0x52 (0 args)")
			require.Len(t, tt.mock.labels, 1)
			assert.Contains(t, tt.mock.labels[0], "up to 7502122 FRI")
		})
	}
}

func TestSelectBetType(t *testing.T) {
	m := &mockPrompter{selection: 4}
	got, err := SelectBetType(m)
	require.NoError(t, err)
	assert.Equal(t, bet.TypeDozen, got)
	assert.Equal(t, []string{"straight", "red-black", "even-odd", "column", "dozen", "high-low"}, m.items)

	_, err = SelectBetType(&mockPrompter{selection: 9})
	assert.Error(t, err)
}
