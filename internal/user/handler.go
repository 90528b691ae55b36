package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for user records.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest request body for the create endpoint.
type CreateRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// Response is the public view of a user; the password hash is never serialized.
type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(u *entity.User) Response {
	return Response{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid create user payload", "err", err)
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := utilities.ValidateStruct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}
	u, err := h.svc.Create(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, "create", err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, toResponse(u))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utilities.IsUUID(id) {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be a UUID"})
		return
	}
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get", err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, toResponse(u))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, "list", err)
		return
	}
	out := make([]Response, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	utilities.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utilities.IsUUID(id) {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be a UUID"})
		return
	}
	// accounts can only be deleted by their owner
	p, ok := entity.FromContext(r.Context())
	if !ok || p.ID != id {
		utilities.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		utilities.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
	case errors.Is(err, ErrEmailConflict):
		utilities.WriteJSON(w, http.StatusConflict, map[string]string{"error": ErrEmailConflict.Error()})
	default:
		h.logger.Errorw("user request failed", "op", op, "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var ve *utilities.ValidationError
	if errors.As(err, &ve) {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Message, "fields": ve.Fields})
		return
	}
	utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
}
