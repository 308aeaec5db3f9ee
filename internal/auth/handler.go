package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	"github.com/fekuna/omnipos-replenishment-service/internal/response"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"go.uber.org/zap"
)

type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (json.RawMessage, error)
	SignIn(ctx context.Context, email, password string) (json.RawMessage, error)
	GetUser(ctx context.Context, token string) (json.RawMessage, error)
}

// Handler proxies the account endpoints to the identity provider.
type Handler struct {
	idp    IdentityProvider
	logger logger.ZapLogger
}

func NewHandler(idp IdentityProvider, log logger.ZapLogger) *Handler {
	return &Handler{idp: idp, logger: log}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", h.SignUp)
	mux.HandleFunc("POST /auth/signin", h.SignIn)
	mux.HandleFunc("GET /auth/user", h.CurrentUser)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.credentialsCall(w, r, h.idp.SignUp)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.credentialsCall(w, r, h.idp.SignIn)
}

func (h *Handler) credentialsCall(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, email, password string) (json.RawMessage, error)) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, model.ErrInvalidRequestBody)
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, r, model.ErrMissingField.Withf("email and password are required"))
		return
	}

	body, err := call(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("identity provider call failed", zap.String("path", r.URL.Path), zap.Error(err))
		response.Error(w, r, err)
		return
	}
	writeRaw(w, body)
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	token, ok := BearerToken(r)
	if !ok {
		unauthorized(w, r)
		return
	}

	body, err := h.idp.GetUser(r.Context(), token)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	writeRaw(w, body)
}

func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
