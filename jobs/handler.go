package jobs

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/toyshop-pos/toyshop/internal/platform/httpx"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Handler exposes queue health and manual task submission over HTTP.
type Handler struct {
	inspector *asynq.Inspector
	client    *Client
}

// NewHandler constructs the jobs HTTP handler.
func NewHandler(redisOpts asynq.RedisClientOpt, client *Client) *Handler {
	return &Handler{
		inspector: asynq.NewInspector(redisOpts),
		client:    client,
	}
}

// MountRoutes registers the job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/low-stock-scan", h.enqueueLowStockScan)
	r.Post("/daily-summary", h.enqueueDailySummary)
}

type queueView struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "task queue unreachable")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"queues": []queueView{{
			Queue:     info.Queue,
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
		}},
	})
}

func (h *Handler) enqueueLowStockScan(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	if !actor.IsAdmin() {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}

	info, err := h.client.EnqueueLowStockScan(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"taskId": info.ID})
}

type dailySummaryRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, defaults to yesterday
}

func (h *Handler) enqueueDailySummary(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	if !actor.IsAdmin() {
		httpx.RespondError(w, shared.ErrForbidden)
		return
	}

	// An empty body means "rebuild yesterday".
	var req dailySummaryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.RespondError(w, shared.ValidationError("invalid request body"))
		return
	}

	day := time.Now().UTC().AddDate(0, 0, -1)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.RespondError(w, shared.ValidationError("date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	info, err := h.client.EnqueueDailySummary(r.Context(), day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"taskId": info.ID})
}
