package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/riskibarqy/golf-league/internal/offline"
	"github.com/riskibarqy/golf-league/internal/platform/id"
	"github.com/spf13/cobra"
)

func newEngine(rt *Runtime) (*offline.Engine, error) {
	return offline.NewEngine(rt.Remote, rt.Store, offline.EngineConfig{
		UserID: rt.Config.UserID,
		Logger: rt.Logger,
		IDs:    id.NewUUIDGenerator(),
	})
}

// NewSyncCommand runs one push and pull cycle.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push local records and pull server activity once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, rt.Close()) }()

			res, err := runSync(cmd.Context(), rt)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), rootOpts.Format, res, func(w io.Writer) { printResult(w, res) })
		},
	}
}

func runSync(ctx context.Context, rt *Runtime) (offline.Result, error) {
	engine, err := newEngine(rt)
	if err != nil {
		return offline.Result{}, err
	}
	res, err := engine.Sync(ctx)
	if err != nil {
		return offline.Result{}, fmt.Errorf("sync: %w", err)
	}
	return res, nil
}

// NewWatchCommand syncs on start, on every interval tick, and until the
// process is interrupted.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing in the background",
		Long: `Run a sync immediately and then on every --interval tick until
interrupted. Overlapping requests are folded into one pending run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, rt.Close()) }()

			engine, err := newEngine(rt)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			trigger := offline.NewTrigger(engine, rt.Config.Interval, rt.Logger,
				offline.WithResultHook(func(reason string, res offline.Result, err error) {
					if err != nil {
						fmt.Fprintf(out, "[%s] sync failed: %v\n", reason, err)
						return
					}
					_ = emit(out, rootOpts.Format, res, func(w io.Writer) {
						fmt.Fprintf(w, "[%s] ", reason)
						printResult(w, res)
					})
				}),
			)
			trigger.Request("startup")

			if err := trigger.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
