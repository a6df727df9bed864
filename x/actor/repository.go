package actor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/inkwell-social/inkwell/core"
)

var tracer = otel.Tracer("actor")

const cacheTTL = 300 // seconds

// Repository stores actors. Reads go through memcached keyed by
// canonical identifier; writes invalidate.
type Repository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewRepository creates a new actor repository
func NewRepository(db *gorm.DB, mc *memcache.Client) *Repository {
	return &Repository{db: db, mc: mc}
}

func cacheKey(id string) string {
	return "actor:" + strings.ToLower(id)
}

// Get returns an actor by canonical identifier. Lookup is
// case-insensitive.
func (r *Repository) Get(ctx context.Context, id string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGet")
	defer span.End()

	if r.mc != nil {
		if item, err := r.mc.Get(cacheKey(id)); err == nil {
			var cached core.Actor
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var actor core.Actor
	err := r.db.WithContext(ctx).First(&actor, "LOWER(id) = LOWER(?)", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Actor{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Actor{}, err
	}

	r.cache(actor)

	return actor, nil
}

// GetByName returns an actor by preferred name within a domain.
// Lookup is case-insensitive.
func (r *Repository) GetByName(ctx context.Context, domain, name string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "RepositoryGetByName")
	defer span.End()

	var actor core.Actor
	err := r.db.WithContext(ctx).
		First(&actor, "domain = ? AND preferred_name = LOWER(?)", domain, name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.Actor{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Actor{}, err
	}
	return actor, nil
}

// Create creates an actor
func (r *Repository) Create(ctx context.Context, actor core.Actor) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCreate")
	defer span.End()

	err := r.db.WithContext(ctx).Create(&actor).Error
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}

	r.invalidate(actor.ID)

	return actor, nil
}

// Upsert stores an actor mirror, stamping its refresh time.
func (r *Repository) Upsert(ctx context.Context, actor core.Actor) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "RepositoryUpsert")
	defer span.End()

	actor.LastRefreshAt = time.Now()

	err := r.db.WithContext(ctx).Save(&actor).Error
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}

	r.invalidate(actor.ID)

	return actor, nil
}

// Count returns the actor count
func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "RepositoryCount")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).Model(&core.Actor{}).Count(&count).Error
	return count, err
}

func (r *Repository) cache(actor core.Actor) {
	if r.mc == nil {
		return
	}
	// local actors carry their private key, which must not sit in a
	// shared cache; only mirrors are cached
	if actor.PrivateKey != nil {
		return
	}
	body, err := json.Marshal(actor)
	if err != nil {
		return
	}
	r.mc.Set(&memcache.Item{Key: cacheKey(actor.ID), Value: body, Expiration: cacheTTL})
}

func (r *Repository) invalidate(id string) {
	if r.mc == nil {
		return
	}
	r.mc.Delete(cacheKey(id))
}
