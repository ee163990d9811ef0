package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/bescout/fantasy-events/internal/usecase"
)

func (h *Handler) GetMyLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyLineup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	item, exists, err := h.lineupService.GetByUserAndEvent(ctx, principal.UserID, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "get lineup failed", "event_id", eventID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeSuccess(ctx, w, http.StatusOK, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(ctx, item))
}

func (h *Handler) SubmitLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitLineup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	var req submitLineupRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.lineupService.Submit(ctx, usecase.SubmitLineupInput{
		UserID:  principal.UserID,
		EventID: eventID,
		Slots:   req.Slots,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit lineup failed", "event_id", eventID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(ctx, item))
}

func (h *Handler) WithdrawLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.WithdrawLineup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	if err := h.lineupService.Withdraw(ctx, principal.UserID, eventID); err != nil {
		h.logger.WarnContext(ctx, "withdraw lineup failed", "event_id", eventID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

type submitLineupRequest struct {
	Slots map[string]string `json:"slots" validate:"required,min=1,dive,keys,required,endkeys,required"`
}
