package sales

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/toyshop-pos/toyshop/internal/platform/httpx"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Handler serves the /sales endpoints.
type Handler struct {
	service  *Service
	printer  *ReceiptPrinter
	validate *validator.Validate
}

// NewHandler constructs the sales HTTP handler.
func NewHandler(service *Service, printer *ReceiptPrinter) *Handler {
	return &Handler{
		service:  service,
		printer:  printer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers the sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Get("/{id}/receipt", h.receipt)
}

type saleItemView struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	LineTotal   float64 `json:"lineTotal"`
}

type saleView struct {
	ID            string         `json:"id"`
	BillNumber    string         `json:"billNumber"`
	CashierID     string         `json:"cashierId"`
	CashierName   string         `json:"cashierName,omitempty"`
	CustomerName  string         `json:"customerName,omitempty"`
	CustomerPhone string         `json:"customerPhone,omitempty"`
	Subtotal      float64        `json:"subtotal"`
	TaxPercentage float64        `json:"taxPercentage"`
	Tax           float64        `json:"tax"`
	Discount      float64        `json:"discount"`
	Total         float64        `json:"total"`
	PaymentMethod string         `json:"paymentMethod"`
	Paid          float64        `json:"paid"`
	Change        float64        `json:"change"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	Items         []saleItemView `json:"items,omitempty"`
}

func toView(s Sale) saleView {
	view := saleView{
		ID:            s.ID,
		BillNumber:    s.BillNumber,
		CashierID:     s.CashierID,
		CashierName:   s.CashierName,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Subtotal:      s.Subtotal,
		TaxPercentage: s.TaxPercentage,
		Tax:           s.Tax,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		Paid:          s.Paid,
		Change:        s.Change,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
	}
	for _, item := range s.Items {
		view.Items = append(view.Items, saleItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return view
}

type createItemRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
}

type createRequest struct {
	Items         []createItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount      float64             `json:"discount" validate:"gte=0"`
	PaymentMethod string              `json:"paymentMethod"`
	Paid          float64             `json:"paid" validate:"gte=0"`
	CustomerName  string              `json:"customerName"`
	CustomerPhone string              `json:"customerPhone"`
	Notes         string              `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ValidationError("invalid sale payload: %v", err))
		return
	}

	input := CreateSaleInput{
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
		Paid:          req.Paid,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, CreateSaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	sale, err := h.service.Create(r.Context(), actor, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(sale))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	sale, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(sale))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	filter := ListFilter{CashierID: r.URL.Query().Get("cashier")}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			httpx.RespondError(w, shared.ValidationError("invalid from timestamp"))
			return
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			httpx.RespondError(w, shared.ValidationError("invalid to timestamp"))
			return
		}
		filter.To = t
	}

	list, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	views := make([]saleView, 0, len(list))
	for _, sale := range list {
		views = append(views, toView(sale))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	text, err := h.service.Receipt(r.Context(), actor, h.printer, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
