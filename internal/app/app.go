package app

import (
	"context"
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/riskibarqy/golf-league/internal/config"
	"github.com/riskibarqy/golf-league/internal/domain/bracket"
	"github.com/riskibarqy/golf-league/internal/domain/course"
	"github.com/riskibarqy/golf-league/internal/domain/league"
	"github.com/riskibarqy/golf-league/internal/domain/match"
	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/riskibarqy/golf-league/internal/domain/skins"
	"github.com/riskibarqy/golf-league/internal/domain/user"
	"github.com/riskibarqy/golf-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/golf-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/golf-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/golf-league/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/golf-league/internal/platform/cache"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/usecase"
)

type leagueMatchStore interface {
	league.MatchRepository
	bracket.Store
}

type repositories struct {
	guard         usecase.SchemaGuard
	users         user.Repository
	courses       course.Repository
	rounds        round.Repository
	matches       match.Repository
	skins         skins.Repository
	leagues       league.Repository
	leagueRounds  league.RoundRepository
	leagueMatches leagueMatchStore
	close         func() error
}

// NewHTTPServer wires repositories, services and the router. The returned
// func releases the database pool.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	courses := repos.courses
	if cfg.CacheEnabled {
		courses = cache.NewCourseRepository(courses, basecache.NewStore(cfg.CacheTTL))
	}

	bracketEngine := bracket.NewEngine(repos.leagueMatches, nil)

	syncSvc := usecase.NewSyncService(usecase.SyncServiceDeps{
		Guard:        repos.guard,
		Users:        repos.users,
		Courses:      courses,
		Rounds:       repos.rounds,
		Matches:      repos.matches,
		Skins:        repos.skins,
		LeagueRounds: repos.leagueRounds,
		Bracket:      bracketEngine,
		Logger:       logger,
	})
	activitySvc := usecase.NewActivityService(repos.rounds, repos.matches, repos.skins, repos.leagueMatches)
	courseSvc := usecase.NewCourseService(courses)
	userSvc := usecase.NewUserService(repos.guard, repos.users)
	leagueSvc := usecase.NewLeagueService(repos.leagues, repos.leagueRounds, repos.users)
	bracketSvc := usecase.NewBracketService(repos.leagues, bracketEngine, logger)
	handicapJob := usecase.NewHandicapJobService(repos.users, repos.rounds, courses, logger).
		WithDefaultWorkers(cfg.HandicapJobMaxWorkers)

	handler := httpapi.NewHandler(syncSvc, activitySvc, courseSvc, userSvc, leagueSvc, bracketSvc, handicapJob, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, repos.close, nil
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	if cfg.UseMemoryStore() {
		logger.Info("using in-memory repositories", "reason", "DB_URL empty")
		users := memory.NewUserRepository(memory.SeedUsers())
		return repositories{
			guard:         memory.NewSchemaGuard(users, logger),
			users:         users,
			courses:       memory.NewCourseRepository(memory.SeedCourses()),
			rounds:        memory.NewRoundRepository(),
			matches:       memory.NewMatchRepository(),
			skins:         memory.NewSkinsRepository(),
			leagues:       memory.NewLeagueRepository(),
			leagueRounds:  memory.NewLeagueRoundRepository(),
			leagueMatches: memory.NewLeagueMatchRepository(),
			close:         func() error { return nil },
		}, nil
	}

	db, err := openDatabase(ctx, cfg.DBURL, cfg.DBBinaryParameters)
	if err != nil {
		return repositories{}, err
	}
	logger.Info("using postgres repositories", "db_name", dbNameFromURL(cfg.DBURL))

	guard := postgres.NewSchemaGuard(db, logger)
	if err := guard.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return repositories{}, fmt.Errorf("ensure schema: %w", err)
	}

	return repositories{
		guard:         guard,
		users:         postgres.NewUserRepository(db),
		courses:       postgres.NewCourseRepository(db),
		rounds:        postgres.NewRoundRepository(db),
		matches:       postgres.NewMatchRepository(db),
		skins:         postgres.NewSkinsRepository(db),
		leagues:       postgres.NewLeagueRepository(db),
		leagueRounds:  postgres.NewLeagueRoundRepository(db),
		leagueMatches: postgres.NewLeagueMatchRepository(db),
		close:         db.Close,
	}, nil
}
