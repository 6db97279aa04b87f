package postgres

import (
	"context"
	"fmt"

	"chato-dashboard/internal/activity/core/domain"
	"chato-dashboard/internal/activity/core/ports"

	"github.com/lib/pq"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS activity_daily (
    api_key    TEXT        NOT NULL,
    day        DATE        NOT NULL,
    messages   BIGINT      NOT NULL DEFAULT 0,
    sessions   BIGINT,
    active     BIGINT,
    unread     BIGINT,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (api_key, day)
);
`

// The histogram is recomputed wholesale on every snapshot, so the latest
// count for a day replaces the stored one.
const upsertDaysSQL = `
INSERT INTO activity_daily (api_key, day, messages)
SELECT $1, d, m
FROM unnest($2::date[], $3::bigint[]) AS t(d, m)
ON CONFLICT (api_key, day) DO UPDATE
SET messages   = EXCLUDED.messages,
    updated_at = now();
`

const upsertGaugesSQL = `
INSERT INTO activity_daily (api_key, day, sessions, active, unread)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (api_key, day) DO UPDATE
SET sessions   = EXCLUDED.sessions,
    active     = EXCLUDED.active,
    unread     = EXCLUDED.unread,
    updated_at = now();
`

type ActivityRepository struct {
	db DB
}

func NewActivityRepository(db DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

var (
	_ ports.ActivityWriterPort = (*ActivityRepository)(nil)
	_ ports.ActivityReaderPort = (*ActivityRepository)(nil)
)

// EnsureSchema creates the archive table when missing.
func (r *ActivityRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create activity schema: %w", err)
	}
	return nil
}

func (r *ActivityRepository) UpsertRecord(ctx context.Context, rec domain.Record) error {
	days := make([]string, 0, len(rec.Days))
	counts := make([]int64, 0, len(rec.Days))
	for _, d := range rec.Days {
		days = append(days, d.Day)
		counts = append(counts, d.Messages)
	}

	if len(days) > 0 {
		if _, err := r.db.ExecContext(ctx, upsertDaysSQL, rec.APIKey, pq.Array(days), pq.Array(counts)); err != nil {
			return fmt.Errorf("upsert activity days: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, upsertGaugesSQL,
		rec.APIKey,
		rec.Today,
		rec.Gauges.Sessions,
		rec.Gauges.Active,
		rec.Gauges.Unread,
	)
	if err != nil {
		return fmt.Errorf("upsert activity gauges: %w", err)
	}
	return nil
}

func (r *ActivityRepository) QueryActivity(ctx context.Context, f ports.ActivityFilter) (*domain.Summary, error) {
	where := "day BETWEEN $1::date AND $2::date"
	args := []any{f.From, f.To}

	switch {
	case f.APIKey != "":
		where += " AND api_key = $3"
		args = append(args, f.APIKey)
	case f.APIKeys != nil:
		where += " AND api_key = ANY($3)"
		args = append(args, pq.Array(f.APIKeys))
	}

	res := &domain.Summary{
		APIKey:  f.APIKey,
		From:    f.From,
		To:      f.To,
		GroupBy: f.GroupBy,
	}

	switch f.GroupBy {
	case "":
		return r.queryTotals(ctx, where, args, res)
	case "app":
		return r.queryGrouped(ctx, "api_key", where, args, res)
	case "day":
		return r.queryGrouped(ctx, "to_char(day, 'YYYY-MM-DD')", where, args, res)
	default:
		return nil, fmt.Errorf("unsupported group_by: %s", f.GroupBy)
	}
}

const aggregateColumns = `
    COALESCE(SUM(messages), 0) AS messages,
    COALESCE(MAX(sessions), 0) AS peak_sessions,
    COALESCE(MAX(active), 0)   AS peak_active,
    COALESCE(MAX(unread), 0)   AS peak_unread`

func (r *ActivityRepository) queryTotals(
	ctx context.Context,
	where string,
	args []any,
	res *domain.Summary,
) (*domain.Summary, error) {
	query := `
SELECT` + aggregateColumns + `
FROM activity_daily
WHERE ` + where

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&res.Messages, &res.PeakSessions, &res.PeakActive, &res.PeakUnread); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ActivityRepository) queryGrouped(
	ctx context.Context,
	keyExpr string,
	where string,
	args []any,
	res *domain.Summary,
) (*domain.Summary, error) {
	query := fmt.Sprintf(`
SELECT
    %s AS bucket,%s
FROM activity_daily
WHERE %s
GROUP BY bucket
ORDER BY bucket
`, keyExpr, aggregateColumns, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.Key, &g.Messages, &g.PeakSessions, &g.PeakActive, &g.PeakUnread); err != nil {
			return nil, err
		}
		groups = append(groups, g)

		res.Messages += g.Messages
		res.PeakSessions = max(res.PeakSessions, g.PeakSessions)
		res.PeakActive = max(res.PeakActive, g.PeakActive)
		res.PeakUnread = max(res.PeakUnread, g.PeakUnread)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res.Groups = groups
	return res, nil
}
