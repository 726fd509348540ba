package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormSink writes events to the audit_logs table.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) Write(ctx context.Context, e *Event) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (s *GormSink) History(ctx context.Context, f Filter) ([]Event, error) {
	query := s.db.WithContext(ctx).Model(&Event{})
	if f.ClientID != "" {
		query = query.Where("client_id = ?", f.ClientID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.Since != nil {
		query = query.Where("created_at >= ?", *f.Since)
	}

	var events []Event
	if err := query.Order("created_at DESC").Limit(f.Limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	return events, nil
}

// DeleteOlderThan removes events older than daysToKeep days.
func (s *GormSink) DeleteOlderThan(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep < 1 {
		return 0, fmt.Errorf("daysToKeep must be at least 1")
	}
	cutoff := s.db.NowFunc().AddDate(0, 0, -daysToKeep)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Event{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
