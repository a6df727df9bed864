package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell-social/inkwell/core"
)

var tracer = otel.Tracer("chapter")

// Repository stores chapters and owns sequence allocation.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new chapter repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns a chapter by canonical identifier.
func (r *Repository) Get(ctx context.Context, id string) (core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGet")
	defer span.End()

	var chapter core.Chapter
	err := r.db.WithContext(ctx).First(&chapter, "LOWER(id) = LOWER(?)", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Chapter{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Chapter{}, err
	}
	return chapter, nil
}

// GetBySequence returns a chapter of a novel by sequence number.
func (r *Repository) GetBySequence(ctx context.Context, novelID string, sequence int) (core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetBySequence")
	defer span.End()

	var chapter core.Chapter
	err := r.db.WithContext(ctx).
		First(&chapter, "LOWER(audience) = LOWER(?) AND sequence = ?", novelID, sequence).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Chapter{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Chapter{}, err
	}
	return chapter, nil
}

// CreateWithSequence assigns the next sequence number of the novel and
// inserts the chapter, as one transaction. The novel's actor row is
// locked for the duration so that concurrent allocations for the same
// novel serialize; a failed insert rolls the allocation back with it.
func (r *Repository) CreateWithSequence(ctx context.Context, novelID string, draft core.ChapterDraft) (core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreateWithSequence")
	defer span.End()

	var chapter core.Chapter

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var novel core.Actor
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&novel, "LOWER(id) = LOWER(?)", novelID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.NewErrorNotFound()
			}
			return err
		}

		var next int
		err = tx.Model(&core.Chapter{}).
			Where("LOWER(audience) = LOWER(?)", novel.ID).
			Select("COALESCE(MAX(sequence) + 1, 0)").
			Scan(&next).Error
		if err != nil {
			return err
		}

		chapter = core.Chapter{
			ID:        fmt.Sprintf("%s/%d", strings.TrimRight(novel.ID, "/"), next),
			Audience:  novel.ID,
			Title:     draft.Title,
			Summary:   draft.Summary,
			Content:   draft.Content,
			Sensitive: draft.Sensitive,
			Sequence:  next,
		}

		return tx.Create(&chapter).Error
	})
	if err != nil {
		span.RecordError(err)
		return core.Chapter{}, err
	}

	return chapter, nil
}

// GetByAudience returns the chapters of a novel, most recent first.
func (r *Repository) GetByAudience(ctx context.Context, novelID string) ([]core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetByAudience")
	defer span.End()

	var chapters []core.Chapter
	err := r.db.WithContext(ctx).
		Where("LOWER(audience) = LOWER(?)", novelID).
		Order("sequence DESC").
		Find(&chapters).Error
	return chapters, err
}

// GetIDsByAudience returns the chapter identifiers of a novel, most
// recent first.
func (r *Repository) GetIDsByAudience(ctx context.Context, novelID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetIDsByAudience")
	defer span.End()

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&core.Chapter{}).
		Where("LOWER(audience) = LOWER(?)", novelID).
		Order("sequence DESC").
		Pluck("id", &ids).Error
	return ids, err
}

// UpsertMirror stores a read-only mirror of a remote chapter.
func (r *Repository) UpsertMirror(ctx context.Context, chapter core.Chapter) (core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "RepositoryUpsertMirror")
	defer span.End()

	chapter.LastRefreshAt = time.Now()

	err := r.db.WithContext(ctx).Save(&chapter).Error
	if err != nil {
		span.RecordError(err)
		return core.Chapter{}, err
	}
	return chapter, nil
}

// Count returns the chapter count
func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCount")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Chapter{}).Count(&count).Error
	return count, err
}
