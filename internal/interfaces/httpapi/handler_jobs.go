package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/golf-league/internal/usecase"
)

type recomputeHandicapsRequest struct {
	UserIDs    []int64 `json:"user_ids" validate:"omitempty,dive,gt=0"`
	MaxWorkers int     `json:"max_workers" validate:"gte=0,lte=32"`
	DryRun     bool    `json:"dry_run"`
}

func (h *Handler) RunRecomputeHandicapsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "RunRecomputeHandicapsJob")
	defer span.End()

	if h.handicapJob == nil {
		writeError(ctx, w, fmt.Errorf("%w: handicap job is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req recomputeHandicapsRequest
	if err := decodeJSON(r, &req, true, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.handicapJob.RecomputeHandicaps(ctx, usecase.RecomputeHandicapsInput{
		UserIDs:    req.UserIDs,
		MaxWorkers: req.MaxWorkers,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "recompute handicaps job failed", "users", len(req.UserIDs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
