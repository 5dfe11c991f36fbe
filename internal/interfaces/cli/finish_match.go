package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/offline"
	"github.com/spf13/cobra"
)

// NewFinishMatchCommand completes a local match. A tied tournament match
// asks who won the playoff before it is saved.
func NewFinishMatchCommand(rootOpts *RootOptions) *cobra.Command {
	var accessible bool

	cmd := &cobra.Command{
		Use:   "finish-match <match-id>",
		Short: "Complete a local match, resolving tournament ties by playoff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			matchID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || matchID <= 0 {
				return fmt.Errorf("invalid match id %q", args[0])
			}

			rt, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, rt.Close()) }()

			prompter := rootOpts.prompter
			if prompter == nil {
				prompter = huhPrompter{in: cmd.InOrStdin(), out: cmd.OutOrStdout(), accessible: accessible}
			}

			book := offline.NewScorebook(rt.Store, rt.Logger)
			m, err := book.FinishMatch(cmd.Context(), matchID, prompter)
			if errors.Is(err, bracket.ErrUnresolvedTie) {
				return fmt.Errorf("match %d is tied and no playoff winner was confirmed", matchID)
			}
			if err != nil {
				return err
			}

			return emit(cmd.OutOrStdout(), rootOpts.Format, m, func(w io.Writer) {
				fmt.Fprintf(w, "match %d completed: %s\n", m.ID, m.Status)
				if name := winnerName(m); name != "" {
					fmt.Fprintf(w, "winner: %s\n", name)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&accessible, "accessible", false, "plain line-based prompts")
	return cmd
}

func winnerName(m match.Match) string {
	if m.WinnerID == nil {
		return ""
	}
	for _, p := range []match.Player{m.Player1, m.Player2} {
		if p.ID == *m.WinnerID {
			return p.Name
		}
	}
	return strconv.FormatInt(*m.WinnerID, 10)
}
