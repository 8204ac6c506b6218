// api/handlers/analytics_handlers.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"storefront/api/analytics"
	"storefront/api/apperr"
	"storefront/api/models"
)

var eventsIngested = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "analytics_events_ingested_total",
		Help: "Analytics events accepted by the ingestion endpoint",
	},
	[]string{"type"},
)

type AnalyticsStore interface {
	InsertAnalyticsEvents(ctx context.Context, events []models.AnalyticsEvent) error
	GetAnalyticsEvent(ctx context.Context, id string) (*models.AnalyticsEvent, error)
	DeleteAnalyticsEvent(ctx context.Context, id string) error
	GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, typeFilter string) ([]models.EventCountByTime, error)
	GetTopNPagePaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error)
}

type ReportEngine interface {
	Report(ctx context.Context, rt analytics.ReportType, loc *time.Location) (any, error)
}

type AnalyticsHandlers struct {
	store   AnalyticsStore
	reports ReportEngine
	timeout time.Duration
	log     *zap.Logger
}

func NewAnalyticsHandlers(s AnalyticsStore, reports ReportEngine, timeout time.Duration, log *zap.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		store:   s,
		reports: reports,
		timeout: timeout,
		log:     log,
	}
}

// maxEventBytes caps an ingested event body.
const maxEventBytes = 64 << 10

// CreateEvent validates and stores one event and echoes it back with its id.
func (h *AnalyticsHandlers) CreateEvent(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxEventBytes)

	var event models.AnalyticsEvent
	if err := bindJSON(c, &event); err != nil {
		respondError(c, h.log, err)
		return
	}

	event.ID = uuid.New().String()
	event.IPAddress = c.ClientIP()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.store.InsertAnalyticsEvents(ctx, []models.AnalyticsEvent{event}); err != nil {
		respondError(c, h.log, err)
		return
	}

	eventsIngested.WithLabelValues(event.Type).Inc()
	c.JSON(http.StatusCreated, event)
}

// GetReport serves avg-visitor, uniq-visitor and localTime reports. The
// type is checked before any event is read.
func (h *AnalyticsHandlers) GetReport(c *gin.Context) {
	rt, err := analytics.ParseReportType(c.Query("type"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	loc, err := analytics.LoadZone(c.Query("timezone"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	report, err := h.reports.Report(ctx, rt, loc)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandlers) GetEvent(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	event, err := h.store.GetAnalyticsEvent(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *AnalyticsHandlers) DeleteEvent(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.store.DeleteAnalyticsEvent(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// parseTimeRange reads RFC3339 start/end, defaulting to the last 7 days.
func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.Add(-7 * 24 * time.Hour)

	if s := c.Query("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.InvalidArgument("Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
		start = t
	}
	if e := c.Query("end"); e != "" {
		t, err := time.Parse(time.RFC3339, e)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.InvalidArgument("Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
		end = t
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, apperr.InvalidArgument("'start' must not be after 'end'")
	}
	return start, end, nil
}

func (h *AnalyticsHandlers) GetEventCountsOverTime(c *gin.Context) {
	interval := c.Query("interval")
	if interval == "" {
		respondError(c, h.log, apperr.InvalidArgument("interval query parameter is required (e.g., 'Day', 'Hour')"))
		return
	}
	start, end, err := parseTimeRange(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	results, err := h.store.GetEventCountsOverTime(ctx, interval, start, end, c.Query("type"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) GetTopNPagePaths(c *gin.Context) {
	start, end, err := parseTimeRange(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var limit uint64 = 10
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.ParseUint(l, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, h.log, apperr.InvalidArgument("Invalid 'limit' parameter. Must be a positive integer."))
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	results, err := h.store.GetTopNPagePaths(ctx, start, end, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
