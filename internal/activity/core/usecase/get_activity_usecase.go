package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"chato-dashboard/internal/activity/core/domain"
	"chato-dashboard/internal/activity/core/ports"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidGroupBy   = errors.New("invalid group_by value")
	ErrUnknownApp       = errors.New("application not found")
)

type GetActivityInput struct {
	APIKey  string
	Owned   []string // apps the caller may read; nothing else is queried
	From    int64 // unix second
	To      int64 // unix second
	GroupBy string
}

type GetActivityUseCase struct {
	reader ports.ActivityReaderPort
	loc    *time.Location
}

// NewGetActivityUseCase reads the archive; loc decides which local day a
// timestamp falls on and should match the archiving process.
func NewGetActivityUseCase(reader ports.ActivityReaderPort, loc *time.Location) *GetActivityUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &GetActivityUseCase{reader: reader, loc: loc}
}

func (uc *GetActivityUseCase) Execute(ctx context.Context, in GetActivityInput) (*domain.Summary, error) {
	if in.From <= 0 || in.To <= 0 || in.From > in.To {
		return nil, ErrInvalidTimeRange
	}

	switch in.GroupBy {
	case "", "app", "day":
	default:
		return nil, ErrInvalidGroupBy
	}

	if in.APIKey != "" && !slices.Contains(in.Owned, in.APIKey) {
		return nil, ErrUnknownApp
	}

	filter := ports.ActivityFilter{
		APIKey:  in.APIKey,
		From:    time.Unix(in.From, 0).In(uc.loc).Format(domain.DayLayout),
		To:      time.Unix(in.To, 0).In(uc.loc).Format(domain.DayLayout),
		GroupBy: in.GroupBy,
	}
	if in.APIKey == "" {
		if len(in.Owned) == 0 {
			return &domain.Summary{From: filter.From, To: filter.To, GroupBy: filter.GroupBy}, nil
		}
		filter.APIKeys = in.Owned
	}
	return uc.reader.QueryActivity(ctx, filter)
}
