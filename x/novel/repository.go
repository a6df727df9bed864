package novel

import (
	"context"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/inkwell-social/inkwell/core"
)

var tracer = otel.Tracer("novel")

// Repository is novel repository
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new novel repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db}
}

// CreateWithProfile inserts the novel's Group actor, its profile, and
// the creator's authorship row atomically. A failed insert of any of
// the three leaves no trace.
func (r *Repository) CreateWithProfile(ctx context.Context, actor core.Actor, profile core.NovelProfile, authorship *core.Authorship) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreateWithProfile")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&actor).Error; err != nil {
			return err
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		if authorship != nil {
			if err := tx.Create(authorship).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}

	return actor, nil
}

// GetProfile returns the profile row of a novel.
func (r *Repository) GetProfile(ctx context.Context, novelID string) (core.NovelProfile, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetProfile")
	defer span.End()

	var profile core.NovelProfile
	err := r.db.WithContext(ctx).Where("LOWER(actor_id) = LOWER(?)", novelID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.NovelProfile{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.NovelProfile{}, err
	}

	return profile, nil
}

