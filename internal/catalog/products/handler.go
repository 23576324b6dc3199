package products

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/toyshop-pos/toyshop/internal/platform/httpx"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Handler serves the /products endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the products HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/barcode/{barcode}", h.getByBarcode)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type productView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Barcode       string    `json:"barcode,omitempty"`
	CategoryID    string    `json:"categoryId"`
	CategoryName  string    `json:"categoryName"`
	PurchasePrice float64   `json:"purchasePrice"`
	SellingPrice  float64   `json:"sellingPrice"`
	MinStock      int       `json:"minStock"`
	AgeGroup      string    `json:"ageGroup,omitempty"`
	Status        string    `json:"status"`
	Quantity      int       `json:"quantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toView(p Product) productView {
	return productView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Barcode:       p.Barcode,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		MinStock:      p.MinStock,
		AgeGroup:      p.AgeGroup,
		Status:        p.Status,
		Quantity:      p.Quantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Search:     r.URL.Query().Get("search"),
		CategoryID: r.URL.Query().Get("category"),
		Status:     r.URL.Query().Get("status"),
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	views := make([]productView, 0, len(list))
	for _, p := range list {
		views = append(views, toView(p))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(product))
}

func (h *Handler) getByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(product))
}

type productRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	Barcode       string  `json:"barcode"`
	CategoryID    string  `json:"categoryId" validate:"required"`
	PurchasePrice float64 `json:"purchasePrice" validate:"gte=0"`
	SellingPrice  float64 `json:"sellingPrice" validate:"gte=0"`
	MinStock      int     `json:"minStock" validate:"gte=0"`
	AgeGroup      string  `json:"ageGroup"`
}

func (r productRequest) input() ProductInput {
	return ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Barcode:       r.Barcode,
		CategoryID:    r.CategoryID,
		PurchasePrice: r.PurchasePrice,
		SellingPrice:  r.SellingPrice,
		MinStock:      r.MinStock,
		AgeGroup:      r.AgeGroup,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid product payload: %v", err))
		return
	}

	product, err := h.service.Create(r.Context(), actor, req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(product))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid product payload: %v", err))
		return
	}

	product, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(product))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	discontinued, err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"discontinued": discontinued})
}
