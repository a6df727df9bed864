// Package chapter assigns chapter sequence numbers on the authoritative
// server and assembles ordered chapter listings, local or mirrored.
package chapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/inkwell-social/inkwell/core"
)

type service struct {
	repo        *Repository
	rdb         *redis.Client
	fetcher     core.Fetcher
	config      core.Config
	collections *cache.Cache
}

// NewService creates a new chapter service
func NewService(repo *Repository, rdb *redis.Client, fetcher core.Fetcher, config core.Config) core.ChapterService {
	return &service{repo, rdb, fetcher, config, cache.New(config.StalenessWindow(), time.Hour)}
}

// Get returns a chapter by canonical identifier.
func (s *service) Get(ctx context.Context, id string) (core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "ServiceGet")
	defer span.End()

	return s.repo.Get(ctx, id)
}

// GetBySequence returns a chapter of a novel by sequence number.
func (s *service) GetBySequence(ctx context.Context, novelID string, sequence int) (core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "ServiceGetBySequence")
	defer span.End()

	return s.repo.GetBySequence(ctx, novelID, sequence)
}

// AllocateAndCreate materializes a draft as the novel's next chapter.
// Only valid on the novel's home server.
func (s *service) AllocateAndCreate(ctx context.Context, novel core.Actor, draft core.ChapterDraft) (core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "ServiceAllocateAndCreate")
	defer span.End()

	if !strings.EqualFold(novel.Domain, s.config.FQDN) {
		return core.Chapter{}, core.NewErrorBadRequest("novel is not hosted on this server: " + novel.ID)
	}

	created, err := s.repo.CreateWithSequence(ctx, novel.ID, draft)
	if err != nil {
		span.RecordError(err)
		return core.Chapter{}, err
	}

	slog.InfoContext(
		ctx, fmt.Sprintf("chapter %d of %s created", created.Sequence, novel.ID),
		slog.String("module", "chapter"),
	)

	if s.rdb != nil {
		jsonstr, _ := json.Marshal(core.Event{
			Novel:   novel.ID,
			Type:    "chapter",
			Action:  "create",
			Chapter: created,
		})
		err = s.rdb.Publish(ctx, novel.ID, jsonstr).Err()
		if err != nil {
			span.RecordError(err)
		}
	}

	return created, nil
}

// ListChapters returns the novel's chapters most recent first. Remote
// items are dereferenced one by one; a failing item becomes an error
// entry at its position without discarding the rest.
func (s *service) ListChapters(ctx context.Context, novel core.Actor) ([]core.ChapterEntry, error) {
	ctx, span := tracer.Start(ctx, "ServiceListChapters")
	defer span.End()

	if strings.EqualFold(novel.Domain, s.config.FQDN) {
		chapters, err := s.repo.GetByAudience(ctx, novel.ID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		entries := make([]core.ChapterEntry, len(chapters))
		for i := range chapters {
			entries[i] = core.ChapterEntry{ID: chapters[i].ID, Chapter: &chapters[i]}
		}
		return entries, nil
	}

	collection, err := s.outbox(ctx, novel)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	entries := make([]core.ChapterEntry, 0, len(collection.OrderedItems))
	for _, id := range collection.OrderedItems {
		entries = append(entries, s.materialize(ctx, id))
	}
	return entries, nil
}

// outbox returns a remote novel's outbox collection, reusing a cached
// copy inside the staleness window.
func (s *service) outbox(ctx context.Context, novel core.Actor) (core.CollectionDoc, error) {
	if cached, ok := s.collections.Get(novel.Outbox); ok {
		return cached.(core.CollectionDoc), nil
	}

	collection, err := s.fetcher.FetchCollection(ctx, novel.Outbox)
	if err != nil {
		return core.CollectionDoc{}, err
	}

	s.collections.SetDefault(novel.Outbox, collection)
	return collection, nil
}

// materialize resolves one listing item, reusing a fresh local mirror
// when available and falling back to a stale one when the refetch
// fails.
func (s *service) materialize(ctx context.Context, id string) core.ChapterEntry {
	mirror, lookupErr := s.repo.Get(ctx, id)
	if lookupErr == nil && time.Since(mirror.LastRefreshAt) < s.config.StalenessWindow() {
		return core.ChapterEntry{ID: id, Chapter: &mirror}
	}

	fetched, err := s.fetcher.FetchChapter(ctx, id)
	if err != nil {
		if lookupErr == nil {
			slog.WarnContext(
				ctx, fmt.Sprintf("refetch of %s failed, reusing stale mirror", id),
				slog.String("module", "chapter"),
			)
			return core.ChapterEntry{ID: id, Chapter: &mirror}
		}
		return core.ChapterEntry{ID: id, Error: err.Error()}
	}

	stored, err := s.repo.UpsertMirror(ctx, fetched)
	if err != nil {
		return core.ChapterEntry{ID: id, Chapter: &fetched}
	}
	return core.ChapterEntry{ID: id, Chapter: &stored}
}

// ListIDs returns the chapter identifiers of a local novel, most recent
// first.
func (s *service) ListIDs(ctx context.Context, novelID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "ServiceListIDs")
	defer span.End()

	return s.repo.GetIDsByAudience(ctx, novelID)
}

// Count returns the chapter count
func (s *service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "ServiceCount")
	defer span.End()

	return s.repo.Count(ctx)
}
