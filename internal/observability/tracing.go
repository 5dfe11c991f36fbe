package observability

import (
	"strings"

	"github.com/riskibarqy/golf-league/internal/config"
	"github.com/uptrace/uptrace-go/uptrace"
)

func (s *Stack) startTracing(cfg config.Config) error {
	switch {
	case !cfg.UptraceEnabled:
		s.logger.Info("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return nil
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		s.logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return nil
	}

	// Logs stay on zap; uptrace only receives traces and metrics.
	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(false),
	)
	s.push("uptrace", uptrace.Shutdown)

	s.logger.Info("uptrace enabled", "service_version", cfg.ServiceVersion)
	return nil
}
