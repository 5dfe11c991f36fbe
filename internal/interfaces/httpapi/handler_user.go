package httpapi

import (
	"net/http"

	"github.com/riskibarqy/golf-league/internal/syncapi"
)

func (h *Handler) EnsureUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "EnsureUser")
	defer span.End()

	var req syncapi.EnsureUserRequest
	if err := decodeJSON(r, &req, true, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	u, err := h.userService.Ensure(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "ensure user failed", "user_id", req.ID, "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncapi.UserFrom(u))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetUser")
	defer span.End()

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	u, err := h.userService.Get(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncapi.UserFrom(u))
}

func (h *Handler) EnsureSchema(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "EnsureSchema")
	defer span.End()

	if err := h.userService.EnsureSchema(ctx); err != nil {
		h.logger.ErrorContext(ctx, "ensure schema failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
