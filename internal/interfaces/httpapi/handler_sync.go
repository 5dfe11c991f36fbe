package httpapi

import (
	"net/http"

	"github.com/riskibarqy/golf-league/internal/syncapi"
)

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "Sync")
	defer span.End()

	var req syncapi.SyncRequest
	if err := decodeJSON(r, &req, false, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	resp, err := h.syncService.Ingest(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync ingest failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "GetActivity")
	defer span.End()

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	activity, err := h.activityService.Activity(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get activity failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, activity)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "CreateCourse")
	defer span.End()

	var req syncapi.Course
	if err := decodeJSON(r, &req, false, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.courseService.Create(ctx, req.ToDomain())
	if err != nil {
		h.logger.WarnContext(ctx, "create course failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, syncapi.CreatedCourse{ID: created.ID})
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListCourses")
	defer span.End()

	courses, err := h.courseService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list courses failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]syncapi.Course, 0, len(courses))
	for _, c := range courses {
		items = append(items, syncapi.CourseFrom(c))
	}
	writeJSON(ctx, w, http.StatusOK, items)
}
