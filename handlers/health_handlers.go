package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandlers struct {
	stores map[string]Pinger
	log    *zap.Logger
}

func NewHealthHandlers(stores map[string]Pinger, log *zap.Logger) *HealthHandlers {
	return &HealthHandlers{stores: stores, log: log}
}

func (h *HealthHandlers) Root(c *gin.Context) {
	c.String(http.StatusOK, "API Running")
}

// Health reports 503 when any store fails to answer a ping.
func (h *HealthHandlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.stores))
	for name := range h.stores {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := gin.H{}
	for _, name := range names {
		if err := h.stores[name].Ping(ctx); err != nil {
			h.log.Warn("Health check failed", zap.String("store", name), zap.Error(err))
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "stores": checks})
}
