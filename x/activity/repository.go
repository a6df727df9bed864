package activity

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/inkwell-social/inkwell/core"
)

var tracer = otel.Tracer("activity")

const seenTTL = 7 * 24 * time.Hour

// Repository keeps delivery/receipt bookkeeping and the seen-activity
// guard used to absorb re-deliveries.
type Repository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewRepository creates a new activity repository
func NewRepository(db *gorm.DB, rdb *redis.Client) *Repository {
	return &Repository{db: db, rdb: rdb}
}

// CreateRecord stores a bookkeeping row for an activity.
func (r *Repository) CreateRecord(ctx context.Context, record core.ActivityRecord) (core.ActivityRecord, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreateRecord")
	defer span.End()

	err := r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		span.RecordError(err)
		return core.ActivityRecord{}, err
	}
	return record, nil
}

// GetRecord returns a bookkeeping row by activity identifier.
func (r *Repository) GetRecord(ctx context.Context, id string) (core.ActivityRecord, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetRecord")
	defer span.End()

	var record core.ActivityRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.ActivityRecord{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.ActivityRecord{}, err
	}
	return record, nil
}

// UpdateStatus advances a bookkeeping row, optionally attaching the
// resulting chapter identifier.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string, chapterID *string) error {
	ctx, span := tracer.Start(ctx, "RepositoryUpdateStatus")
	defer span.End()

	updates := map[string]any{"status": status}
	if chapterID != nil {
		updates["chapter_id"] = *chapterID
	}

	result := r.db.WithContext(ctx).Model(&core.ActivityRecord{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		span.RecordError(result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.NewErrorNotFound()
	}
	return nil
}

// Seen marks an incoming activity identifier as processed and reports
// whether it had been processed before.
func (r *Repository) Seen(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "RepositorySeen")
	defer span.End()

	set, err := r.rdb.SetNX(ctx, "activity:seen:"+id, 1, seenTTL).Result()
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return !set, nil
}

// Release drops a seen-marker so the same activity identifier can be
// processed again.
func (r *Repository) Release(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "RepositoryRelease")
	defer span.End()

	err := r.rdb.Del(ctx, "activity:seen:"+id).Err()
	if err != nil {
		span.RecordError(err)
	}
	return err
}
