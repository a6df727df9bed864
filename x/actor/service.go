// Package actor resolves loosely-typed actor references into
// materialized actors, local or mirrored from remote servers.
package actor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/x/util"
)

type service struct {
	repo       *Repository
	fetcher    core.Fetcher
	discoverer core.Discoverer
	config     core.Config
}

// NewService creates a new actor service
func NewService(repo *Repository, fetcher core.Fetcher, discoverer core.Discoverer, config core.Config) core.ActorService {
	return &service{repo, fetcher, discoverer, config}
}

// Resolve turns an actor reference into a materialized actor. The
// reference may be a bare local name, a name@domain handle, or a
// canonical identifier.
func (s *service) Resolve(ctx context.Context, reference string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "ServiceResolve")
	defer span.End()

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return core.Actor{}, core.NewErrorBadRequest("empty actor reference")
	}

	if strings.Contains(reference, "://") {
		parsed, err := url.Parse(reference)
		if err != nil {
			return core.Actor{}, core.NewErrorBadRequest("malformed identifier: " + reference)
		}
		if strings.EqualFold(parsed.Host, s.config.FQDN) {
			return s.repo.Get(ctx, reference)
		}
		return s.fetchOrReuse(ctx, reference)
	}

	if strings.Contains(reference, "@") {
		split := strings.Split(reference, "@")
		if len(split) != 2 || split[0] == "" || split[1] == "" {
			return core.Actor{}, core.NewErrorBadRequest("malformed handle: " + reference)
		}
		name, domain := split[0], split[1]

		// name@localdomain and name resolve identically
		if strings.EqualFold(domain, s.config.FQDN) {
			return s.repo.GetByName(ctx, strings.ToLower(s.config.FQDN), name)
		}

		id, err := s.discoverer.Discover(ctx, name+"@"+domain)
		if err != nil {
			span.RecordError(err)
			return core.Actor{}, err
		}
		return s.fetchOrReuse(ctx, id)
	}

	return s.repo.GetByName(ctx, strings.ToLower(s.config.FQDN), reference)
}

// fetchOrReuse returns a cached mirror when it is fresh enough,
// refetching otherwise. When the refetch fails and a mirror exists, the
// stale mirror wins over the failure.
func (s *service) fetchOrReuse(ctx context.Context, id string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "ServiceFetchOrReuse")
	defer span.End()

	existing, lookupErr := s.repo.Get(ctx, id)
	if lookupErr == nil && !s.IsStale(existing) {
		return existing, nil
	}

	fetched, err := s.fetcher.FetchActor(ctx, id)
	if err != nil {
		span.RecordError(err)
		if lookupErr == nil {
			slog.WarnContext(
				ctx, fmt.Sprintf("refetch of %s failed, reusing stale mirror", id),
				slog.String("module", "actor"),
			)
			return existing, nil
		}
		return core.Actor{}, err
	}

	return s.repo.Upsert(ctx, fetched)
}

// Get returns an actor by canonical identifier.
func (s *service) Get(ctx context.Context, id string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "ServiceGet")
	defer span.End()

	return s.repo.Get(ctx, id)
}

// GetByName returns a local actor by preferred name.
func (s *service) GetByName(ctx context.Context, name string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "ServiceGetByName")
	defer span.End()

	return s.repo.GetByName(ctx, strings.ToLower(s.config.FQDN), name)
}

// CreatePerson provisions a local Person actor with a fresh keypair.
func (s *service) CreatePerson(ctx context.Context, username, name, summary string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "ServiceCreatePerson")
	defer span.End()

	if !util.IsValidUsername(username) {
		return core.Actor{}, core.NewErrorBadRequest("invalid username: " + username)
	}
	username = strings.ToLower(username)

	if _, err := s.repo.GetByName(ctx, strings.ToLower(s.config.FQDN), username); err == nil {
		return core.Actor{}, core.NewErrorAlreadyExists()
	}

	publicPem, privatePem, err := core.GenerateKeyPair()
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}

	id := s.config.BaseURL() + "/actor/" + username
	created, err := s.repo.Create(ctx, core.Actor{
		ID:            id,
		Kind:          core.KindPerson,
		Domain:        strings.ToLower(s.config.FQDN),
		PreferredName: username,
		Name:          name,
		Summary:       summary,
		PublicKey:     publicPem,
		PrivateKey:    &privatePem,
		Inbox:         id + "/inbox",
		Outbox:        id + "/outbox",
	})
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}

	slog.InfoContext(
		ctx, fmt.Sprint("created person ", created.ID),
		slog.String("module", "actor"),
		slog.String("type", "audit"),
	)

	return created, nil
}

// IsLocalID reports whether a canonical identifier belongs to this
// server.
func (s *service) IsLocalID(id string) bool {
	parsed, err := url.Parse(id)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, s.config.FQDN)
}

// IsStale reports whether a mirror is old enough to warrant refetching.
// Local actors are authoritative here and never stale.
func (s *service) IsStale(actor core.Actor) bool {
	if strings.EqualFold(actor.Domain, s.config.FQDN) {
		return false
	}
	return time.Since(actor.LastRefreshAt) > s.config.StalenessWindow()
}

// Count returns the actor count
func (s *service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "ServiceCount")
	defer span.End()

	return s.repo.Count(ctx)
}
