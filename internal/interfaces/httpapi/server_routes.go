package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

// registerSyncRoutes serves the offline client. These routes answer with the
// bare JSON contract; errors still use the envelope.
func registerSyncRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /sync", handler.Sync)
	mux.HandleFunc("GET /api/user/{userID}/activity", handler.GetActivity)
	mux.HandleFunc("POST /courses", handler.CreateCourse)
	mux.HandleFunc("GET /courses", handler.ListCourses)
}

func registerUserRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /api/users/ensure", handler.EnsureUser)
	mux.HandleFunc("GET /api/users/{userID}", handler.GetUser)
	mux.HandleFunc("POST /api/schema/ensure", handler.EnsureSchema)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /api/leagues", handler.CreateLeague)
	mux.HandleFunc("GET /api/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("POST /api/leagues/{leagueID}/members", handler.JoinLeague)
	mux.HandleFunc("GET /api/leagues/{leagueID}/standings", handler.GetStandings)
	mux.HandleFunc("POST /api/leagues/{leagueID}/start-tournament", handler.StartTournament)
	mux.HandleFunc("POST /api/leagues/{leagueID}/advance-match", handler.AdvanceMatch)
	mux.HandleFunc("GET /api/leagues/{leagueID}/bracket", handler.GetBracket)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/recompute-handicaps", requireJobToken(internalJobToken)(http.HandlerFunc(handler.RunRecomputeHandicapsJob)))
}
