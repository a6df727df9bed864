package novel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/internal/testutil"
	"github.com/inkwell-social/inkwell/x/actor"
	"github.com/inkwell-social/inkwell/x/authorship"
)

type noFetcher struct{}

func (noFetcher) FetchActor(ctx context.Context, id string) (core.Actor, error) {
	return core.Actor{}, core.NewErrorNotFound()
}

func (noFetcher) FetchChapter(ctx context.Context, id string) (core.Chapter, error) {
	return core.Chapter{}, core.NewErrorNotFound()
}

func (noFetcher) FetchCollection(ctx context.Context, id string) (core.CollectionDoc, error) {
	return core.CollectionDoc{}, core.NewErrorNotFound()
}

type noDiscoverer struct{}

func (noDiscoverer) Discover(ctx context.Context, handle string) (string, error) {
	return "", core.NewErrorNotFound()
}

func TestService(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	config := core.Config{FQDN: "ink.example", Scheme: "https"}
	config.Normalize()

	actorService := actor.NewService(actor.NewRepository(db, nil), noFetcher{}, noDiscoverer{}, config)
	authorshipService := authorship.NewService(authorship.NewRepository(db))

	test_repo := NewRepository(db)
	test_service := NewService(test_repo, actorService, config)

	owner, err := actorService.CreatePerson(ctx, "ishmael", "Ishmael", "")
	assert.NoError(t, err)

	created, err := test_service.Create(ctx, owner.ID, core.NewNovel{
		Title:    "Moby-Dick\n",
		Summary:  "a whale of a tale",
		Genre:    "Adventure",
		Role:     "Writer",
		Language: "en",
		Tags:     "whales, Sea, whales, x",
	})
	if assert.NoError(t, err) {
		assert.Equal(t, core.KindGroup, created.Kind)
		assert.Equal(t, "Moby-Dick", created.Name)
		assert.NotNil(t, created.PrivateKey)
	}

	profile, err := test_service.Profile(ctx, created.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, "Adventure", profile.Genre)
		assert.Equal(t, "en", profile.Language)
		// tags are deduplicated, filtered, and sorted
		assert.Equal(t, []string{"Sea", "whales"}, []string(profile.Tags))
	}

	ok, err := authorshipService.CanWrite(ctx, created.ID, owner.ID)
	assert.NoError(t, err)
	assert.True(t, ok)

	// the None role registers the novel without a write grant
	detached, err := test_service.Create(ctx, owner.ID, core.NewNovel{
		Title:    "Typee",
		Genre:    "Adventure",
		Role:     "None",
		Language: "en",
	})
	assert.NoError(t, err)

	ok, err = authorshipService.CanWrite(ctx, detached.ID, owner.ID)
	assert.NoError(t, err)
	assert.False(t, ok)

	var badRequest core.ErrorBadRequest
	_, err = test_service.Create(ctx, owner.ID, core.NewNovel{
		Title: "Untitled", Genre: "Isekai", Role: "Writer", Language: "en",
	})
	assert.True(t, errors.As(err, &badRequest))

	_, err = test_service.Create(ctx, owner.ID, core.NewNovel{
		Title: "Untitled", Genre: "Adventure", Role: "Writer", Language: "not a language",
	})
	assert.True(t, errors.As(err, &badRequest))

	resolved, err := test_service.Get(ctx, created.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, created.ID, resolved.ID)
	}

	_, err = test_service.Get(ctx, owner.ID)
	assert.True(t, errors.As(err, &badRequest))
}
