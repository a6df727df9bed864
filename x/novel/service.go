// Package novel registers and serves novels, the Group actors chapters
// belong to.
package novel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/xid"
	"golang.org/x/text/language"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/x/util"
)

type service struct {
	repo   *Repository
	actor  core.ActorService
	config core.Config
}

// NewService creates a new novel service
func NewService(repo *Repository, actor core.ActorService, config core.Config) core.NovelService {
	return &service{repo, actor, config}
}

// Create registers a new locally hosted novel owned by ownerID. Unless
// the creator picked the None role, they are granted authorship in the
// same stroke.
func (s *service) Create(ctx context.Context, ownerID string, draft core.NewNovel) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "ServiceCreate")
	defer span.End()

	owner, err := s.actor.Get(ctx, ownerID)
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}
	if owner.Kind != core.KindPerson {
		return core.Actor{}, core.NewErrorBadRequest("only persons can register novels")
	}

	title := util.NormalizeTitle(draft.Title)
	if title == "" {
		return core.Actor{}, core.NewErrorBadRequest("title must not be empty")
	}

	genre, err := core.ParseGenre(draft.Genre)
	if err != nil {
		return core.Actor{}, err
	}

	role, err := core.ParseRole(draft.Role)
	if err != nil {
		return core.Actor{}, err
	}

	lang, err := language.Parse(draft.Language)
	if err != nil {
		return core.Actor{}, core.NewErrorBadRequest("invalid language tag: " + draft.Language)
	}

	publicPem, privatePem, err := core.GenerateKeyPair()
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}

	// The preferred name is machine-assigned. Titles collide; names
	// must not.
	name := xid.New().String()
	id := s.config.BaseURL() + "/novel/" + name

	actor := core.Actor{
		ID:            id,
		Kind:          core.KindGroup,
		Domain:        strings.ToLower(s.config.FQDN),
		PreferredName: name,
		Name:          title,
		Summary:       draft.Summary,
		PublicKey:     publicPem,
		PrivateKey:    &privatePem,
		Inbox:         id + "/inbox",
		Outbox:        id + "/outbox",
	}

	profile := core.NovelProfile{
		ActorID:   id,
		Genre:     string(genre),
		Tags:      pq.StringArray(util.NormalizeTags(draft.Tags)),
		Language:  lang.String(),
		Sensitive: draft.Sensitive,
	}

	var authorship *core.Authorship
	if role != core.RoleNone {
		authorship = &core.Authorship{
			NovelID:  id,
			AuthorID: owner.ID,
			Role:     string(role),
		}
	}

	created, err := s.repo.CreateWithProfile(ctx, actor, profile, authorship)
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}

	slog.InfoContext(
		ctx, fmt.Sprintf("created novel %s for %s", created.ID, owner.ID),
		slog.String("module", "novel"),
		slog.String("type", "audit"),
	)

	return created, nil
}

// Get resolves a novel reference and checks that it names a Group.
func (s *service) Get(ctx context.Context, reference string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "ServiceGet")
	defer span.End()

	actor, err := s.actor.Resolve(ctx, reference)
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}
	if actor.Kind != core.KindGroup {
		return core.Actor{}, core.NewErrorBadRequest(reference + " is not a novel")
	}

	return actor, nil
}

// Profile returns the profile attributes of a novel.
func (s *service) Profile(ctx context.Context, novelID string) (core.NovelProfile, error) {
	ctx, span := tracer.Start(ctx, "ServiceProfile")
	defer span.End()

	return s.repo.GetProfile(ctx, novelID)
}
