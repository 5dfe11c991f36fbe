package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/riskibarqy/golf-league/internal/domain/match"
)

// huhPrompter asks on the terminal who won a sudden-death playoff.
type huhPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

func (p huhPrompter) ConfirmPlayoffWinner(ctx context.Context, m match.Match, candidate match.Player) (bool, error) {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s vs %s finished all square.", m.Player1.Name, m.Player2.Name)).
				Description(fmt.Sprintf("Did %s win the playoff?", candidate.Name)).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).
		WithInput(p.in).
		WithOutput(p.out).
		WithAccessible(p.accessible)

	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return confirmed, nil
}
