package authorship

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell-social/inkwell/core"
)

var tracer = otel.Tracer("authorship")

// Repository stores authorship rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authorship repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the authorship row for a (novel, author) pair.
func (r *Repository) Get(ctx context.Context, novelID, authorID string) (core.Authorship, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGet")
	defer span.End()

	var row core.Authorship
	err := r.db.WithContext(ctx).
		First(&row, "LOWER(novel_id) = LOWER(?) AND LOWER(author_id) = LOWER(?)", novelID, authorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Authorship{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Authorship{}, err
	}
	return row, nil
}

// Create inserts an authorship row. Re-granting an existing pair is a
// no-op.
func (r *Repository) Create(ctx context.Context, row core.Authorship) (core.Authorship, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreate")
	defer span.End()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		span.RecordError(err)
		return core.Authorship{}, err
	}
	return row, nil
}

// GetByNovel returns all authorship rows of a novel.
func (r *Repository) GetByNovel(ctx context.Context, novelID string) ([]core.Authorship, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetByNovel")
	defer span.End()

	var rows []core.Authorship
	err := r.db.WithContext(ctx).
		Where("LOWER(novel_id) = LOWER(?)", novelID).
		Order("c_date ASC").
		Find(&rows).Error
	return rows, err
}

// GetByAuthor returns the novel identifiers an author contributes to,
// most recently granted first.
func (r *Repository) GetByAuthor(ctx context.Context, authorID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetByAuthor")
	defer span.End()

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&core.Authorship{}).
		Where("LOWER(author_id) = LOWER(?)", authorID).
		Order("c_date DESC").
		Pluck("novel_id", &ids).Error
	return ids, err
}
