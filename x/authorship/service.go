// Package authorship answers whether an actor may write to a novel.
package authorship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkwell-social/inkwell/core"
)

type service struct {
	repo *Repository
}

// NewService creates a new authorship service
func NewService(repo *Repository) core.AuthorshipService {
	return &service{repo}
}

// CanWrite reports whether an authorship row exists for the pair. Any
// role is sufficient; there are no permission tiers.
func (s *service) CanWrite(ctx context.Context, novelID, actorID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "ServiceCanWrite")
	defer span.End()

	_, err := s.repo.Get(ctx, novelID, actorID)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}
	return true, nil
}

// Grant records an authorship. Idempotent.
func (s *service) Grant(ctx context.Context, novelID, actorID string, role core.Role) (core.Authorship, error) {
	ctx, span := tracer.Start(ctx, "ServiceGrant")
	defer span.End()

	created, err := s.repo.Create(ctx, core.Authorship{
		NovelID:  novelID,
		AuthorID: actorID,
		Role:     string(role),
	})
	if err != nil {
		span.RecordError(err)
		return core.Authorship{}, err
	}

	slog.InfoContext(
		ctx, fmt.Sprintf("granted %s on %s to %s", role, novelID, actorID),
		slog.String("module", "authorship"),
		slog.String("type", "audit"),
	)

	return created, nil
}

// ListAuthors returns the authors of a novel.
func (s *service) ListAuthors(ctx context.Context, novelID string) ([]core.Authorship, error) {
	ctx, span := tracer.Start(ctx, "ServiceListAuthors")
	defer span.End()

	return s.repo.GetByNovel(ctx, novelID)
}

// ListNovelsOf returns the novels an author contributes to.
func (s *service) ListNovelsOf(ctx context.Context, actorID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "ServiceListNovelsOf")
	defer span.End()

	return s.repo.GetByAuthor(ctx, actorID)
}
