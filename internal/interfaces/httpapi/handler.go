package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/usecase"
)

type Handler struct {
	syncService     *usecase.SyncService
	activityService *usecase.ActivityService
	courseService   *usecase.CourseService
	userService     *usecase.UserService
	leagueService   *usecase.LeagueService
	bracketService  *usecase.BracketService
	handicapJob     *usecase.HandicapJobService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	syncService *usecase.SyncService,
	activityService *usecase.ActivityService,
	courseService *usecase.CourseService,
	userService *usecase.UserService,
	leagueService *usecase.LeagueService,
	bracketService *usecase.BracketService,
	handicapJob *usecase.HandicapJobService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncService:     syncService,
		activityService: activityService,
		courseService:   courseService,
		userService:     userService,
		leagueService:   leagueService,
		bracketService:  bracketService,
		handicapJob:     handicapJob,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads one JSON body. strict rejects unknown fields; the offline
// client routes stay lenient so older clients can send extra local fields.
// An empty body decodes to the zero value when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, strict, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", usecase.ErrInvalidInput, name, raw)
	}
	return id, nil
}
