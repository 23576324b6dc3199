package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/toyshop-pos/toyshop/internal/platform/httpx"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Handler serves the /auth endpoints.
type Handler struct {
	service  *Service
	mw       *Middleware
	validate *validator.Validate
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(service *Service, mw *Middleware) *Handler {
	return &Handler{
		service:  service,
		mw:       mw,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the auth routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Group(func(priv chi.Router) {
		priv.Use(h.mw.RequireAuth)
		priv.Get("/me", h.me)
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userView  `json:"user"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ValidationError("username and password are required"))
		return
	}

	session, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User: userView{
			ID:       session.Actor.ID,
			Username: session.Actor.Username,
			FullName: session.FullName,
			Role:     string(session.Actor.Role),
		},
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}

	user, err := h.service.Profile(r.Context(), actor.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, userView{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     string(user.Role),
	})
}
