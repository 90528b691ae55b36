package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// Handler exposes register, login and the current principal.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRequest request body for register endpoint.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, resp)
}

// Me returns the principal resolved by RequireAuth.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	utilities.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Debugw("invalid auth payload", "err", err)
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return false
	}
	if err := utilities.ValidateStruct(dst); err != nil {
		var ve *utilities.ValidationError
		if errors.As(err, &ve) {
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Message, "fields": ve.Fields})
		} else {
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmailConflict):
		utilities.WriteJSON(w, http.StatusConflict, map[string]string{"error": ErrEmailConflict.Error()})
	case errors.Is(err, ErrInvalidCredentials):
		utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": ErrInvalidCredentials.Error()})
	case errors.Is(err, ErrInvalidToken):
		utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": ErrInvalidToken.Error()})
	default:
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": ErrInternal.Error()})
	}
}
