package actor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/internal/testutil"
)

type fakeFetcher struct {
	actors map[string]core.Actor
	fail   bool
	calls  int
}

func (f *fakeFetcher) FetchActor(ctx context.Context, id string) (core.Actor, error) {
	f.calls++
	if f.fail {
		return core.Actor{}, errors.New("remote unreachable")
	}
	actor, ok := f.actors[id]
	if !ok {
		return core.Actor{}, core.NewErrorNotFound()
	}
	return actor, nil
}

func (f *fakeFetcher) FetchChapter(ctx context.Context, id string) (core.Chapter, error) {
	return core.Chapter{}, core.NewErrorNotFound()
}

func (f *fakeFetcher) FetchCollection(ctx context.Context, id string) (core.CollectionDoc, error) {
	return core.CollectionDoc{}, core.NewErrorNotFound()
}

type fakeDiscoverer struct {
	handles map[string]string
}

func (f *fakeDiscoverer) Discover(ctx context.Context, handle string) (string, error) {
	id, ok := f.handles[handle]
	if !ok {
		return "", core.NewErrorNotFound()
	}
	return id, nil
}

func TestServiceLocalResolution(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	config := core.Config{FQDN: "ink.example", Scheme: "https"}
	config.Normalize()

	test_repo := NewRepository(db, nil)
	test_service := NewService(test_repo, &fakeFetcher{}, &fakeDiscoverer{}, config)

	created, err := test_service.CreatePerson(ctx, "Ahab", "Captain Ahab", "monomaniac")
	if assert.NoError(t, err) {
		assert.Equal(t, "https://ink.example/actor/ahab", created.ID)
		assert.Equal(t, "ahab", created.PreferredName)
		assert.NotNil(t, created.PrivateKey)
	}

	_, err = test_service.CreatePerson(ctx, "AHAB", "", "")
	assert.True(t, errors.Is(err, core.ErrorAlreadyExists{}))

	_, err = test_service.CreatePerson(ctx, "not a name", "", "")
	var badRequest core.ErrorBadRequest
	assert.True(t, errors.As(err, &badRequest))

	// bare name, handle with local domain, and canonical id all
	// resolve to the same row, regardless of case
	references := []string{
		"ahab",
		"Ahab",
		"ahab@ink.example",
		"ahab@INK.EXAMPLE",
		"https://ink.example/actor/ahab",
		"https://ink.example/actor/AHAB",
	}
	for _, reference := range references {
		resolved, err := test_service.Resolve(ctx, reference)
		if assert.NoError(t, err, "reference %s", reference) {
			assert.Equal(t, created.ID, resolved.ID)
		}
	}

	_, err = test_service.Resolve(ctx, "starbuck")
	assert.True(t, errors.Is(err, core.ErrorNotFound{}))
}

func TestServiceRemoteResolution(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	config := core.Config{FQDN: "ink.example", Scheme: "https"}
	config.Normalize()

	remoteID := "https://ppress.example/actor/queequeg"
	fetcher := &fakeFetcher{
		actors: map[string]core.Actor{
			remoteID: {
				ID:            remoteID,
				Kind:          core.KindPerson,
				Domain:        "press.example",
				PreferredName: "queequeg",
				Inbox:         remoteID + "/inbox",
				Outbox:        remoteID + "/outbox",
			},
		},
	}
	discoverer := &fakeDiscoverer{
		handles: map[string]string{"queequeg@press.example": remoteID},
	}

	test_repo := NewRepository(db, nil)
	test_service := NewService(test_repo, fetcher, discoverer, config)

	resolved, err := test_service.Resolve(ctx, "queequeg@press.example")
	if assert.NoError(t, err) {
		assert.Equal(t, remoteID, resolved.ID)
		assert.Equal(t, 1, fetcher.calls)
	}

	// a fresh mirror is reused without a refetch
	resolved, err = test_service.Resolve(ctx, remoteID)
	if assert.NoError(t, err) {
		assert.Equal(t, remoteID, resolved.ID)
		assert.Equal(t, 1, fetcher.calls)
	}

	// a failing refetch falls back to the mirror we already hold
	db.Model(&core.Actor{}).Where("id = ?", remoteID).
		Update("last_refresh_at", "2001-01-01T00:00:00Z")
	fetcher.fail = true

	resolved, err = test_service.Resolve(ctx, remoteID)
	if assert.NoError(t, err) {
		assert.Equal(t, remoteID, resolved.ID)
	}

	// but an unknown actor with an unreachable home is an error
	_, err = test_service.Resolve(ctx, "https://press.example/actor/fedallah")
	assert.Error(t, err)
}
