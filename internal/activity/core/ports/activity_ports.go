package ports

import (
	"context"

	"chato-dashboard/internal/activity/core/domain"
)

// ActivityWriterPort upserts one snapshot's contribution.
type ActivityWriterPort interface {
	UpsertRecord(ctx context.Context, rec domain.Record) error
}

type ActivityFilter struct {
	APIKey  string   // optional
	APIKeys []string // when APIKey is empty, restricts the query to these apps
	From    string // day, inclusive
	To      string // day, inclusive
	GroupBy string // "", "app", "day"
}

type ActivityReaderPort interface {
	QueryActivity(ctx context.Context, f ActivityFilter) (*domain.Summary, error)
}
