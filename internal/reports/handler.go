package reports

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toyshop-pos/toyshop/internal/platform/httpx"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Handler serves the /reports endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers the report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/sales", h.sales)
	r.Get("/profit", h.profit)
	r.Get("/products", h.products)
	r.Get("/categories", h.categories)
	r.Get("/cashiers", h.cashiers)
	r.Get("/hourly", h.hourly)
	r.Get("/valuation", h.valuation)
}

// periodFromQuery parses from/to query parameters. Dates without a time
// component cover whole days; a missing period defaults to today.
func (h *Handler) periodFromQuery(r *http.Request) (Period, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return h.service.Today(), nil
	}

	parse := func(raw string, dayEnd bool) (time.Time, error) {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, shared.ValidationError("invalid date %q", raw)
		}
		if dayEnd {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}

	from, err := parse(fromRaw, false)
	if err != nil {
		return Period{}, err
	}
	to, err := parse(toRaw, true)
	if err != nil {
		return Period{}, err
	}
	return Period{From: from, To: to}, nil
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	dashboard, err := h.service.Dashboard(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) sales(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	summary, err := h.service.SalesSummary(r.Context(), period)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) profit(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	period, err := h.periodFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	summary, err := h.service.ProfitSummary(r.Context(), actor, period)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.service.TopProducts(r.Context(), period, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	list, err := h.service.CategoryPerformance(r.Context(), period)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) cashiers(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	period, err := h.periodFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	list, err := h.service.CashierPerformance(r.Context(), actor, period)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) hourly(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	list, err := h.service.HourlySales(r.Context(), period)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) valuation(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())

	valuation, err := h.service.Valuation(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, valuation)
}
