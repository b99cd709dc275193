// Package listings exposes the published generation over HTTP.
package listings

import (
	"strings"
	"time"

	"jobradar/internal/cache"
	"jobradar/internal/core/aggregate"
	"jobradar/internal/model"
	"jobradar/internal/platform/tasks"
	"jobradar/internal/scheduler"
	"jobradar/internal/utils/parser"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

type Handler struct {
	store      *cache.Store
	agg        *aggregate.Service
	sched      *scheduler.Scheduler
	tasks      *tasks.Client
	maxRetries int
}

func NewHandler(store *cache.Store, agg *aggregate.Service, sched *scheduler.Scheduler, taskClient *tasks.Client, maxRetries int) *Handler {
	return &Handler{store: store, agg: agg, sched: sched, tasks: taskClient, maxRetries: maxRetries}
}

// Query is bound from the listings query string.
type Query struct {
	Type       string `form:"type"`
	Source     string `form:"source"`
	MaxAgeDays int    `form:"max_age_days"`
	Limit      int    `form:"limit"`
}

type listResponse struct {
	CycleID     string            `json:"cycle_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Total       int               `json:"total"`
	Count       int               `json:"count"`
	Records     []model.JobRecord `json:"records"`
}

// HandleList serves the current generation with optional filters. Before the
// first cycle completes there is nothing to serve and the endpoint returns
// 503.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	var q Query
	if err := parser.ParseQuery(c, &q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query"})
	}

	cur := h.store.Current()
	if cur == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "no listings generation available yet"})
	}

	wantType := model.JobType(strings.ToUpper(strings.TrimSpace(q.Type)))
	if q.Type != "" && wantType != model.TypeInternship && wantType != model.TypeFullTime && wantType != model.TypeBoth {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type must be INTERNSHIP, FULL_TIME, or BOTH"})
	}

	var cutoff time.Time
	if q.MaxAgeDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -q.MaxAgeDays)
	}

	records := make([]model.JobRecord, 0, len(cur.Records))
	for _, rec := range cur.Records {
		if q.Type != "" && !matchesType(rec.JobType, wantType) {
			continue
		}
		if q.Source != "" && rec.Source != q.Source {
			continue
		}
		if !cutoff.IsZero() && rec.PostedAt.Before(cutoff) {
			continue
		}
		records = append(records, rec)
	}

	total := len(records)
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}

	return c.JSON(listResponse{
		CycleID:     cur.CycleID,
		GeneratedAt: cur.CompletedAt,
		Total:       total,
		Count:       len(records),
		Records:     records,
	})
}

// matchesType treats BOTH-classified records as members of either filter set.
func matchesType(got, want model.JobType) bool {
	if got == want {
		return true
	}
	return got == model.TypeBoth && (want == model.TypeInternship || want == model.TypeFullTime)
}

// HandleRefresh queues a manual refresh. The scheduler's single-flight guard
// drops the trigger if a cycle is already running.
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	if err := h.tasks.Enqueue(asynq.NewTask(tasks.TaskTypeRefresh, nil), "default", h.maxRetries); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "queued",
		"running": h.sched.Running(),
	})
}

// HandleInvalidate clears the published generation without recomputing.
func (h *Handler) HandleInvalidate(c *fiber.Ctx) error {
	if err := h.store.Invalidate(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "invalidated"})
}

type statsResponse struct {
	State   aggregate.State                   `json:"state"`
	Running bool                              `json:"running"`
	LastRun time.Time                         `json:"last_run,omitempty"`
	Sources map[string]aggregate.SourceHealth `json:"sources"`
}

// HandleStats reports the cycle state machine and per-source health.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(statsResponse{
		State:   h.agg.State(),
		Running: h.sched.Running(),
		LastRun: h.sched.LastRun(),
		Sources: h.agg.Monitor().Snapshot(),
	})
}
