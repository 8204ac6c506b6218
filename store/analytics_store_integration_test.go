//go:build integration

package store

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"storefront/api/analytics"
	"storefront/api/apperr"
	"storefront/api/config"
	"storefront/api/database"
	"storefront/api/models"
)

func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// newClickHouseStore starts a throwaway ClickHouse server and returns a
// migrated store on it.
func newClickHouseStore(t *testing.T) *AnalyticsStore {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clickhouse/clickhouse-server:24.8",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"CLICKHOUSE_USER":     "storefront",
				"CLICKHOUSE_PASSWORD": "storefront",
				"CLICKHOUSE_DB":       "analytics",
			},
			WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	log := zap.NewNop()
	ch, err := database.NewClickHouseDB(config.ClickHouseConfig{
		Host:       host,
		NativePort: port.Int(),
		Database:   "analytics",
		Username:   "storefront",
		Password:   "storefront",
	}, log)
	require.NoError(t, err)
	t.Cleanup(ch.Close)
	require.NoError(t, ch.Migrate(ctx))

	return NewAnalyticsStore(ch, log)
}

func TestAnalyticsStoreRoundTrip(t *testing.T) {
	s := newClickHouseStore(t)
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	downlink := 9.5
	in := models.AnalyticsEvent{
		ID:           "e-1",
		VisitorID:    "v1",
		SessionID:    "s1",
		IsNewVisitor: true,
		Type:         models.EventTypePageview,
		Timestamp:    &ts,
		IPAddress:    "203.0.113.7",
		EventDetails: models.EventDetails{
			Path:       "/products",
			Browser:    "Firefox",
			Connection: &models.Connection{EffectiveType: "4g", Downlink: &downlink},
		},
	}
	require.NoError(t, s.InsertAnalyticsEvents(ctx, []models.AnalyticsEvent{in}))

	got, err := s.GetAnalyticsEvent(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.VisitorID)
	assert.True(t, got.IsNewVisitor)
	assert.True(t, ts.Equal(*got.Timestamp))
	assert.Equal(t, "203.0.113.7", got.IPAddress)
	assert.Equal(t, "/products", got.Path)
	require.NotNil(t, got.Connection)
	assert.Equal(t, 9.5, *got.Connection.Downlink)

	_, err = s.GetAnalyticsEvent(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAnalyticsStoreDelete(t *testing.T) {
	s := newClickHouseStore(t)
	ctx := context.Background()

	ts := time.Now().UTC()
	require.NoError(t, s.InsertAnalyticsEvents(ctx, []models.AnalyticsEvent{
		{ID: "e-1", VisitorID: "v1", SessionID: "s1", Type: models.EventTypePageview, Timestamp: &ts},
	}))

	err := s.DeleteAnalyticsEvent(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, s.DeleteAnalyticsEvent(ctx, "e-1"))
	_, err = s.GetAnalyticsEvent(ctx, "e-1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAnalyticsStoreScanVisits(t *testing.T) {
	s := newClickHouseStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	var events []models.AnalyticsEvent
	for i, visitor := range []string{"a", "a", "b"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		events = append(events, models.AnalyticsEvent{
			ID: visitor + ts.Format(time.RFC3339), VisitorID: visitor, SessionID: "s",
			Type: models.EventTypePageview, Timestamp: &ts,
		})
	}
	require.NoError(t, s.InsertAnalyticsEvents(ctx, events))

	var seen []analytics.Visit
	require.NoError(t, s.ScanVisits(ctx, func(v analytics.Visit) error {
		seen = append(seen, v)
		return nil
	}))
	assert.Len(t, seen, 3)

	report, err := analytics.NewEngine(s).Report(ctx, analytics.ReportUniqVisitor, time.UTC)
	require.NoError(t, err)
	assert.NotNil(t, report)
}
