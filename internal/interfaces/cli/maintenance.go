package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/riskibarqy/golf-league/internal/offline"
	"github.com/spf13/cobra"
)

type resyncOutput struct {
	Marked offline.ResyncCounts `json:"marked"`
	Sync   *offline.Result      `json:"sync,omitempty"`
}

// NewResyncCommand marks every synced record for another push.
func NewResyncCommand(rootOpts *RootOptions) *cobra.Command {
	var runAfter bool

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Mark all synced records as pending so the next sync pushes them again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, rt.Close()) }()

			counts, err := offline.ForceResync(cmd.Context(), rt.Store)
			if err != nil {
				return fmt.Errorf("force resync: %w", err)
			}
			out := resyncOutput{Marked: counts}
			if runAfter {
				res, err := runSync(cmd.Context(), rt)
				if err != nil {
					return err
				}
				out.Sync = &res
			}

			return emit(cmd.OutOrStdout(), rootOpts.Format, out, func(w io.Writer) {
				fmt.Fprintf(w, "marked for resync: %d rounds, %d matches, %d skins games\n",
					counts.Rounds, counts.Matches, counts.SkinsGames)
				if out.Sync != nil {
					printResult(w, *out.Sync)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&runAfter, "sync", false, "run a sync right after marking")
	return cmd
}

// NewDedupCommand removes duplicate local rounds.
func NewDedupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dedup",
		Short: "Remove duplicate local rounds of the same player, course and start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, rt.Close()) }()

			removed, err := offline.DedupRounds(cmd.Context(), rt.Store)
			if err != nil {
				return fmt.Errorf("dedup rounds: %w", err)
			}
			return emit(cmd.OutOrStdout(), rootOpts.Format, map[string]int{"removed": removed}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %d duplicate round(s)\n", removed)
			})
		},
	}
}

// NewHandicapCommand prints the local handicap index.
func NewHandicapCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "handicap",
		Short: "Show the handicap index computed from local rounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, rt.Close()) }()

			summary, err := offline.Handicap(cmd.Context(), rt.Store, rt.Config.UserID)
			if err != nil {
				return fmt.Errorf("handicap: %w", err)
			}
			return emit(cmd.OutOrStdout(), rootOpts.Format, summary, func(w io.Writer) {
				if summary.Rounds == 0 {
					fmt.Fprintln(w, "no completed rounds with a differential yet")
					return
				}
				fmt.Fprintf(w, "handicap index %.1f (%+.1f) from %d round(s)\n", summary.Index, summary.Delta, summary.Rounds)
			})
		},
	}
}
