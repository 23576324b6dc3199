package inventory

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/toyshop-pos/toyshop/internal/platform/httpx"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Handler serves the /inventory endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the inventory HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/low-stock", h.lowStock)
	r.Get("/{productID}", h.get)
	r.Post("/adjust", h.adjust)
}

type itemView struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Barcode     string    `json:"barcode,omitempty"`
	Quantity    int       `json:"quantity"`
	MinStock    int       `json:"minStock"`
	LowStock    bool      `json:"lowStock"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toView(it Item) itemView {
	return itemView{
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Barcode:     it.Barcode,
		Quantity:    it.Quantity,
		MinStock:    it.MinStock,
		LowStock:    it.LowStock(),
		UpdatedAt:   it.UpdatedAt,
	}
}

func respondItems(w http.ResponseWriter, items []Item) {
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, toView(it))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	items, err := h.service.List(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	respondItems(w, items)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListLowStock(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	respondItems(w, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(item))
}

type adjustRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Mode      string `json:"mode" validate:"required,oneof=add subtract set"`
	Amount    int    `json:"amount" validate:"gte=0"`
	Reason    string `json:"reason"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid adjustment payload: %v", err))
		return
	}

	item, err := h.service.Adjust(r.Context(), actor, AdjustInput{
		ProductID: req.ProductID,
		Mode:      AdjustMode(req.Mode),
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(item))
}
