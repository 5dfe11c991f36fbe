package httpapi

import (
	"net/http"

	"github.com/riskibarqy/golf-league/internal/platform/logging"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	InternalJobToken   string
}

// NewRouter mounts every route. Requests pass tracing, then the access log,
// then CORS, then panic recovery.
func NewRouter(handler *Handler, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.SwaggerEnabled)
	registerSyncRoutes(mux, handler)
	registerUserRoutes(mux, handler)
	registerLeagueRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, opts.InternalJobToken)

	return chain(mux,
		withTracing,
		accessLog(logger),
		newCORSPolicy(opts.CORSAllowedOrigins).middleware,
		recoverPanic(logger),
	)
}
