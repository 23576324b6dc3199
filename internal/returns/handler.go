package returns

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/toyshop-pos/toyshop/internal/platform/httpx"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Handler serves the /returns endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the returns HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the return routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/sale/{saleID}/items", h.returnableItems)
	r.Get("/{id}", h.get)
}

type returnItemView struct {
	SaleItemID   string  `json:"saleItemId"`
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	RefundAmount float64 `json:"refundAmount"`
}

type returnView struct {
	ID           string           `json:"id"`
	ReturnNumber string           `json:"returnNumber"`
	SaleID       string           `json:"saleId"`
	BillNumber   string           `json:"billNumber"`
	CashierID    string           `json:"cashierId"`
	Reason       string           `json:"reason,omitempty"`
	RefundMethod string           `json:"refundMethod"`
	RefundTotal  float64          `json:"refundTotal"`
	CreatedAt    time.Time        `json:"createdAt"`
	Items        []returnItemView `json:"items,omitempty"`
}

func toView(ret Return) returnView {
	view := returnView{
		ID:           ret.ID,
		ReturnNumber: ret.ReturnNumber,
		SaleID:       ret.SaleID,
		BillNumber:   ret.BillNumber,
		CashierID:    ret.CashierID,
		Reason:       ret.Reason,
		RefundMethod: ret.RefundMethod,
		RefundTotal:  ret.RefundTotal,
		CreatedAt:    ret.CreatedAt,
	}
	for _, item := range ret.Items {
		view.Items = append(view.Items, returnItemView{
			SaleItemID:   item.SaleItemID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			RefundAmount: item.RefundAmount,
		})
	}
	return view
}

type createItemRequest struct {
	SaleItemID string `json:"saleItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
}

type createRequest struct {
	SaleID       string              `json:"saleId" validate:"required"`
	Reason       string              `json:"reason"`
	RefundMethod string              `json:"refundMethod"`
	Items        []createItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid return payload: %v", err))
		return
	}

	input := CreateReturnInput{SaleID: req.SaleID, Reason: req.Reason, RefundMethod: req.RefundMethod}
	for _, item := range req.Items {
		input.Items = append(input.Items, CreateReturnItem{SaleItemID: item.SaleItemID, Quantity: item.Quantity})
	}

	ret, err := h.service.Create(r.Context(), actor, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(ret))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	ret, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(ret))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	list, err := h.service.List(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	views := make([]returnView, 0, len(list))
	for _, ret := range list {
		views = append(views, toView(ret))
	}
	httpx.JSON(w, http.StatusOK, views)
}

type returnableItemView struct {
	SaleItemID  string  `json:"saleItemId"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Sold        int     `json:"sold"`
	Returned    int     `json:"returned"`
	Available   int     `json:"available"`
	UnitPrice   float64 `json:"unitPrice"`
	State       string  `json:"state"`
}

func (h *Handler) returnableItems(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	items, err := h.service.ReturnableItems(r.Context(), actor, chi.URLParam(r, "saleID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	views := make([]returnableItemView, 0, len(items))
	for _, item := range items {
		views = append(views, returnableItemView{
			SaleItemID:  item.SaleItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Sold:        item.Sold,
			Returned:    item.Returned,
			Available:   item.Available,
			UnitPrice:   item.UnitPrice,
			State:       string(item.State),
		})
	}
	httpx.JSON(w, http.StatusOK, views)
}
