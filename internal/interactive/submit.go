package interactive

import (
	"context"
	"fmt"
	"io"

	"github.com/altuslabsxyz/roulette-vrf/internal/bet"
	"github.com/altuslabsxyz/roulette-vrf/internal/output"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

// ConfirmSubmission returns a BeforeSubmit hook that shows the estimate on w
// and asks the operator before anything is sent.
func ConfirmSubmission(p Prompter, w io.Writer) func(context.Context, txflow.TransactionIntent, *txflow.ResourceEstimate) (bool, error) {
	return func(ctx context.Context, intent txflow.TransactionIntent, est *txflow.ResourceEstimate) (bool, error) {
		for i, c := range intent.Calls() {
			fmt.Fprintf(w, "  call %d: %s on %s (%d args)\n", i+1, c.Entrypoint(), c.Target(), len(c.Arguments()))
		}
		if err := output.RenderEstimate(w, est); err != nil {
			return false, err
		}
		return p.Confirm(fmt.Sprintf("Submit transaction (up to %s %s)", output.FormatAmount(est.SuggestedMaxFee), est.Unit))
	}
}

// SelectBetType asks the operator to pick a bet type.
func SelectBetType(p Prompter) (bet.Type, error) {
	types := bet.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	idx, err := p.SelectFromList("Select bet type", names)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(types) {
		return 0, fmt.Errorf("invalid selection %d", idx)
	}
	return types[idx], nil
}
