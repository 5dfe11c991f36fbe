// Package observability starts tracing and profiling for the API process
// and tears them down in reverse order.
package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/golf-league/internal/config"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
)

type stopper struct {
	name string
	stop func(context.Context) error
}

// Stack holds whatever Start enabled.
type Stack struct {
	logger   *logging.Logger
	stoppers []stopper
}

// Start enables Uptrace tracing, Pyroscope profiling and the pprof listener
// according to cfg. On error everything already started is stopped.
func Start(cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Stack{logger: logger}

	for _, step := range []func(config.Config) error{s.startTracing, s.startProfiler, s.startPprof} {
		if err := step(cfg); err != nil {
			_ = s.Shutdown(context.Background())
			return nil, err
		}
	}
	return s, nil
}

func (s *Stack) push(name string, stop func(context.Context) error) {
	s.stoppers = append(s.stoppers, stopper{name: name, stop: stop})
}

// Enabled lists the started components in start order.
func (s *Stack) Enabled() []string {
	names := make([]string, 0, len(s.stoppers))
	for _, st := range s.stoppers {
		names = append(names, st.name)
	}
	return names
}

func (s *Stack) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(s.stoppers) - 1; i >= 0; i-- {
		st := s.stoppers[i]
		if err := st.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", st.name, err))
			continue
		}
		s.logger.Info("observability component stopped", "component", st.name)
	}
	s.stoppers = nil
	return errors.Join(errs...)
}
