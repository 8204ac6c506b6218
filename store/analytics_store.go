// api/store/analytics_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"storefront/api/analytics"
	"storefront/api/apperr"
	"storefront/api/database"
	"storefront/api/models"
	"storefront/api/utils"
)

type AnalyticsStore struct {
	DB  *database.ClickHouseClient
	log *zap.Logger
}

func NewAnalyticsStore(chClient *database.ClickHouseClient, log *zap.Logger) *AnalyticsStore {
	return &AnalyticsStore{
		DB:  chClient,
		log: log,
	}
}

const eventColumns = `event_id, visitor_id, session_id, is_new_visitor, event_type, timestamp, session_start, ip_address, details`

// InsertAnalyticsEvents writes events in one batch. A batch is sent as a
// single insert block, so it either lands whole or not at all.
func (s *AnalyticsStore) InsertAnalyticsEvents(ctx context.Context, events []models.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_id, visitor_id, session_id, is_new_visitor, event_type, timestamp,
			session_start, ip_address, path, details
		)
	`)
	if err != nil {
		return storeError("Failed to record analytics event", fmt.Errorf("prepare batch insert: %w", err))
	}

	for _, event := range events {
		details, err := json.Marshal(event.EventDetails)
		if err != nil {
			_ = batch.Abort()
			return apperr.Internal("Failed to record analytics event", fmt.Errorf("encode details of %s: %w", event.ID, err))
		}

		err = batch.Append(
			event.ID,
			event.VisitorID,
			event.SessionID,
			event.IsNewVisitor,
			event.Type,
			event.Timestamp.UTC(),
			event.SessionStart,
			event.IPAddress,
			event.Path,
			string(details),
		)
		if err != nil {
			_ = batch.Abort()
			return apperr.Validation(fmt.Sprintf("Invalid analytics event: %v", err))
		}
	}

	if err := batch.Send(); err != nil {
		return storeError("Failed to record analytics event", fmt.Errorf("send batch: %w", err))
	}

	s.log.Debug("Inserted analytics events", zap.Int("count", len(events)))
	return nil
}

func (s *AnalyticsStore) GetAnalyticsEvent(ctx context.Context, id string) (*models.AnalyticsEvent, error) {
	row := s.DB.Conn.QueryRow(ctx, `SELECT `+eventColumns+` FROM analytics_events WHERE event_id = ? LIMIT 1`, id)

	var (
		event   models.AnalyticsEvent
		ts      time.Time
		details string
	)
	err := row.Scan(
		&event.ID,
		&event.VisitorID,
		&event.SessionID,
		&event.IsNewVisitor,
		&event.Type,
		&ts,
		&event.SessionStart,
		&event.IPAddress,
		&details,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Not found")
		}
		return nil, storeError("Failed to fetch analytics event", err)
	}
	event.Timestamp = &ts

	if details != "" {
		if err := json.Unmarshal([]byte(details), &event.EventDetails); err != nil {
			return nil, apperr.Internal("Failed to fetch analytics event", fmt.Errorf("decode details of %s: %w", id, err))
		}
	}
	return &event, nil
}

// DeleteAnalyticsEvent removes one event. A missing id is NotFound and
// issues no delete.
func (s *AnalyticsStore) DeleteAnalyticsEvent(ctx context.Context, id string) error {
	var count uint64
	if err := s.DB.Conn.QueryRow(ctx, `SELECT count() FROM analytics_events WHERE event_id = ?`, id).Scan(&count); err != nil {
		return storeError("Failed to delete analytics event", err)
	}
	if count == 0 {
		return apperr.NotFound("Not found")
	}

	if err := s.DB.Conn.Exec(ctx, `DELETE FROM analytics_events WHERE event_id = ?`, id); err != nil {
		return storeError("Failed to delete analytics event", err)
	}
	return nil
}

// ScanVisits streams visitor id and timestamp of every stored event.
func (s *AnalyticsStore) ScanVisits(ctx context.Context, fn func(analytics.Visit) error) error {
	rows, err := s.DB.Conn.Query(ctx, `SELECT visitor_id, timestamp FROM analytics_events`)
	if err != nil {
		return storeError("Failed to build analytics report", fmt.Errorf("query visits: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var v analytics.Visit
		if err := rows.Scan(&v.VisitorID, &v.Timestamp); err != nil {
			return storeError("Failed to build analytics report", fmt.Errorf("scan visit: %w", err))
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return storeError("Failed to build analytics report", fmt.Errorf("iterate visits: %w", err))
	}
	return nil
}

func (s *AnalyticsStore) GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, typeFilter string) ([]models.EventCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, apperr.InvalidArgument(fmt.Sprintf("invalid interval: %s", interval))
	}

	args := []any{start, end}
	selectCols := fmt.Sprintf("toStartOf%s(timestamp) AS time_bucket, count() AS total_events", interval)
	groupByCols := "time_bucket"
	whereClause := "WHERE timestamp >= ? AND timestamp <= ?"
	orderByCols := "time_bucket ASC"
	filtering := typeFilter != ""

	if filtering {
		selectCols += ", event_type"
		groupByCols += ", event_type"
		whereClause += " AND event_type = ?"
		args = append(args, typeFilter)
		orderByCols += ", event_type ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM analytics_events
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, whereClause, groupByCols, orderByCols)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("Failed to retrieve event statistics", fmt.Errorf("query event counts: %w", err))
	}
	defer rows.Close()

	results := []models.EventCountByTime{}
	for rows.Next() {
		var (
			bucket    time.Time
			count     uint64
			eventType string
			result    models.EventCountByTime
		)
		if filtering {
			err = rows.Scan(&bucket, &count, &eventType)
			result.Type = &eventType
		} else {
			err = rows.Scan(&bucket, &count)
		}
		if err != nil {
			return nil, storeError("Failed to retrieve event statistics", fmt.Errorf("scan event counts: %w", err))
		}
		result.Time = bucket
		result.Count = count
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("Failed to retrieve event statistics", fmt.Errorf("iterate event counts: %w", err))
	}
	return results, nil
}

func (s *AnalyticsStore) GetTopNPagePaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error) {
	if limit == 0 {
		limit = 10
	}

	rows, err := s.DB.Conn.Query(ctx, `
		SELECT path, count() AS view_count
		FROM analytics_events
		WHERE event_type = 'pageview' AND timestamp >= ? AND timestamp <= ?
		GROUP BY path
		ORDER BY view_count DESC
		LIMIT ?
	`, start, end, limit)
	if err != nil {
		return nil, storeError("Failed to retrieve top page paths", fmt.Errorf("query top paths: %w", err))
	}
	defer rows.Close()

	results := []models.TopPathResult{}
	for rows.Next() {
		var r models.TopPathResult
		if err := rows.Scan(&r.Path, &r.Count); err != nil {
			return nil, storeError("Failed to retrieve top page paths", fmt.Errorf("scan top paths: %w", err))
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("Failed to retrieve top page paths", fmt.Errorf("iterate top paths: %w", err))
	}
	return results, nil
}
