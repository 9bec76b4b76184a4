package service

import (
	"context"
	"time"

	"beehive_monitor/internal/models"
)

// DayStore is the read side of the aggregate store.
type DayStore interface {
	History(ctx context.Context, date string) (models.DayHistory, error)
	Extremes(ctx context.Context) (models.Extremes, error)
}

type HistoryService struct {
	store DayStore
	now   func() time.Time
}

func NewHistoryService(st DayStore) *HistoryService {
	return &HistoryService{store: st, now: time.Now}
}

// ByDate returns per-minute means for date (YYYY-MM-DD); empty means today.
func (h *HistoryService) ByDate(ctx context.Context, date string) (models.DayHistory, error) {
	if date == "" {
		date = h.now().Format("2006-01-02")
	}
	return h.store.History(ctx, date)
}

// Extremes returns statistics over every recorded day.
func (h *HistoryService) Extremes(ctx context.Context) (models.Extremes, error) {
	return h.store.Extremes(ctx)
}
