package activity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/internal/testutil"
	"github.com/inkwell-social/inkwell/x/actor"
	"github.com/inkwell-social/inkwell/x/authorship"
	"github.com/inkwell-social/inkwell/x/chapter"
)

type fakeFetcher struct {
	actors map[string]core.Actor
	fail   bool
}

func (f *fakeFetcher) FetchActor(ctx context.Context, id string) (core.Actor, error) {
	if f.fail {
		return core.Actor{}, errors.New("remote unreachable")
	}
	a, ok := f.actors[id]
	if !ok {
		return core.Actor{}, core.NewErrorNotFound()
	}
	return a, nil
}

func (f *fakeFetcher) FetchChapter(ctx context.Context, id string) (core.Chapter, error) {
	return core.Chapter{}, core.NewErrorNotFound()
}

func (f *fakeFetcher) FetchCollection(ctx context.Context, id string) (core.CollectionDoc, error) {
	return core.CollectionDoc{}, core.NewErrorNotFound()
}

type fakeDiscoverer struct{}

func (f *fakeDiscoverer) Discover(ctx context.Context, handle string) (string, error) {
	return "", core.NewErrorNotFound()
}

type fakeDelivery struct {
	items []core.QueuedActivity
}

func (f *fakeDelivery) Enqueue(ctx context.Context, item core.QueuedActivity) error {
	f.items = append(f.items, item)
	return nil
}

func (f *fakeDelivery) Boot() {}

func (f *fakeDelivery) PendingCount(ctx context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

const (
	localAuthorID  = "https://ink.example/actor/ishmael"
	localNovelID   = "https://ink.example/novel/whale"
	remoteAuthorID = "https://press.example/actor/queequeg"
	remoteNovelID  = "https://press.example/novel/harpoons"
)

type harness struct {
	db       *gorm.DB
	service  core.ActivityService
	repo     *Repository
	chapters *chapter.Repository
	author   core.AuthorshipService
	delivery *fakeDelivery
	cleanup  func()
}

func setup(t *testing.T, fetcher core.Fetcher) harness {
	t.Helper()

	db, cleanupDB := testutil.CreateDB()
	rdb, cleanupRDB := testutil.CreateRDB()

	config := core.Config{FQDN: "ink.example", Scheme: "https"}
	config.Normalize()

	actorService := actor.NewService(actor.NewRepository(db, nil), fetcher, &fakeDiscoverer{}, config)
	authorService := authorship.NewService(authorship.NewRepository(db))
	chapterRepo := chapter.NewRepository(db)
	chapterService := chapter.NewService(chapterRepo, nil, fetcher, config)
	delivery := &fakeDelivery{}

	repo := NewRepository(db, rdb)
	service := NewService(repo, actorService, authorService, chapterService, delivery, config)

	key := "dummy"
	db.Create(&core.Actor{
		ID: localAuthorID, Kind: core.KindPerson, Domain: "ink.example",
		PreferredName: "ishmael", PrivateKey: &key,
		Inbox: localAuthorID + "/inbox", Outbox: localAuthorID + "/outbox",
	})
	db.Create(&core.Actor{
		ID: localNovelID, Kind: core.KindGroup, Domain: "ink.example",
		PreferredName: "whale", PrivateKey: &key,
		Inbox: localNovelID + "/inbox", Outbox: localNovelID + "/outbox",
	})

	return harness{
		db:       db,
		service:  service,
		repo:     repo,
		chapters: chapterRepo,
		author:   authorService,
		delivery: delivery,
		cleanup: func() {
			cleanupRDB()
			cleanupDB()
		},
	}
}

func TestCreateChapterLocal(t *testing.T) {

	var ctx = context.Background()

	h := setup(t, &fakeFetcher{})
	defer h.cleanup()

	// no grant yet: refused, nothing written
	_, err := h.service.CreateChapter(ctx, localAuthorID, localNovelID, core.ChapterDraft{Title: "Loomings"})
	assert.True(t, errors.Is(err, core.ErrorPermissionDenied{}))

	_, err = h.chapters.GetBySequence(ctx, localNovelID, 0)
	assert.True(t, errors.Is(err, core.ErrorNotFound{}))

	h.author.Grant(ctx, localNovelID, localAuthorID, core.RoleWriter)

	result, err := h.service.CreateChapter(ctx, localAuthorID, localNovelID, core.ChapterDraft{
		Title:   "Loomings\n",
		Summary: "Call me Ishmael.",
	})
	if assert.NoError(t, err) {
		assert.Equal(t, core.CreationStatusCreated, result.Status)
		assert.Equal(t, localNovelID+"/0", result.ChapterID)
	}

	created, err := h.chapters.Get(ctx, result.ChapterID)
	if assert.NoError(t, err) {
		assert.Equal(t, "Loomings", created.Title)
		assert.Equal(t, 0, created.Sequence)
	}

	// local writes involve no federation
	assert.Empty(t, h.delivery.items)

	_, err = h.service.CreateChapter(ctx, localAuthorID, localNovelID, core.ChapterDraft{Title: "  "})
	var badRequest core.ErrorBadRequest
	assert.True(t, errors.As(err, &badRequest))
}

func TestCreateChapterRemote(t *testing.T) {

	var ctx = context.Background()

	fetcher := &fakeFetcher{
		actors: map[string]core.Actor{
			remoteNovelID: {
				ID: remoteNovelID, Kind: core.KindGroup, Domain: "press.example",
				PreferredName: "harpoons",
				Inbox:         remoteNovelID + "/inbox", Outbox: remoteNovelID + "/outbox",
			},
		},
	}

	h := setup(t, fetcher)
	defer h.cleanup()

	result, err := h.service.CreateChapter(ctx, localAuthorID, remoteNovelID, core.ChapterDraft{
		Title: "The Spouter-Inn",
	})
	if assert.NoError(t, err) {
		assert.Equal(t, core.CreationStatusRequested, result.Status)
		assert.Empty(t, result.ChapterID)
		assert.NotEmpty(t, result.ActivityID)
	}

	if assert.Len(t, h.delivery.items, 1) {
		item := h.delivery.items[0]
		assert.Equal(t, remoteNovelID+"/inbox", item.TargetInbox)
		assert.Equal(t, localAuthorID, item.SignerID)

		var add core.Activity
		assert.NoError(t, json.Unmarshal([]byte(item.Payload), &add))
		assert.Equal(t, core.ActivityTypeAdd, add.Type)
		assert.Equal(t, localAuthorID, add.Actor)
		assert.Equal(t, remoteNovelID, add.Target)
	}

	record, err := h.repo.GetRecord(ctx, result.ActivityID)
	if assert.NoError(t, err) {
		assert.Equal(t, core.ActivityStatusRequested, record.Status)
	}

	// the answering Accept closes the loop
	object, _ := json.Marshal(result.ActivityID)
	chapterID := remoteNovelID + "/4"
	err = h.service.Receive(ctx, core.Activity{
		Type:   core.ActivityTypeAccept,
		ID:     "https://press.example/activities/accept-1",
		Actor:  remoteNovelID,
		Object: object,
		Target: chapterID,
	})
	assert.NoError(t, err)

	record, err = h.repo.GetRecord(ctx, result.ActivityID)
	if assert.NoError(t, err) {
		assert.Equal(t, core.ActivityStatusAccepted, record.Status)
		if assert.NotNil(t, record.ChapterID) {
			assert.Equal(t, chapterID, *record.ChapterID)
		}
	}
}

func TestReceiveAdd(t *testing.T) {

	var ctx = context.Background()

	fetcher := &fakeFetcher{
		actors: map[string]core.Actor{
			remoteAuthorID: {
				ID: remoteAuthorID, Kind: core.KindPerson, Domain: "press.example",
				PreferredName: "queequeg",
				Inbox:         remoteAuthorID + "/inbox", Outbox: remoteAuthorID + "/outbox",
			},
		},
	}

	h := setup(t, fetcher)
	defer h.cleanup()

	object, _ := json.Marshal(core.ArticleDoc{
		Type:    "Article",
		Name:    "Chowder",
		Summary: "clam or cod",
	})
	add := core.Activity{
		Type:   core.ActivityTypeAdd,
		ID:     "https://press.example/activities/add-1",
		Actor:  remoteAuthorID,
		Object: object,
		Target: localNovelID,
	}

	// the sender's claim of authorship is not taken at face value
	err := h.service.Receive(ctx, add)
	assert.True(t, errors.Is(err, core.ErrorPermissionDenied{}))
	assert.Empty(t, h.delivery.items)

	h.author.Grant(ctx, localNovelID, remoteAuthorID, core.RoleWriter)

	// the rejection did not consume the identifier; the same delivery
	// goes through once the grant exists
	err = h.service.Receive(ctx, add)
	assert.NoError(t, err)

	created, err := h.chapters.GetBySequence(ctx, localNovelID, 0)
	if assert.NoError(t, err) {
		assert.Equal(t, "Chowder", created.Title)
	}

	if assert.Len(t, h.delivery.items, 1) {
		item := h.delivery.items[0]
		assert.Equal(t, remoteAuthorID+"/inbox", item.TargetInbox)
		assert.Equal(t, localNovelID, item.SignerID)

		var accept core.Activity
		assert.NoError(t, json.Unmarshal([]byte(item.Payload), &accept))
		assert.Equal(t, core.ActivityTypeAccept, accept.Type)
		assert.Equal(t, localNovelID, accept.Actor)
		assert.Equal(t, created.ID, accept.Target)

		var addID string
		assert.NoError(t, json.Unmarshal(accept.Object, &addID))
		assert.Equal(t, add.ID, addID)
	}

	// a redelivered activity is absorbed without a second chapter
	err = h.service.Receive(ctx, add)
	assert.NoError(t, err)

	chapters, err := h.chapters.GetByAudience(ctx, localNovelID)
	assert.NoError(t, err)
	assert.Len(t, chapters, 1)
	assert.Len(t, h.delivery.items, 1)
}

func TestReceiveAddRetryAfterFailure(t *testing.T) {

	var ctx = context.Background()

	fetcher := &fakeFetcher{
		actors: map[string]core.Actor{
			remoteAuthorID: {
				ID: remoteAuthorID, Kind: core.KindPerson, Domain: "press.example",
				PreferredName: "queequeg",
				Inbox:         remoteAuthorID + "/inbox", Outbox: remoteAuthorID + "/outbox",
			},
		},
	}

	h := setup(t, fetcher)
	defer h.cleanup()

	h.author.Grant(ctx, localNovelID, remoteAuthorID, core.RoleWriter)

	object, _ := json.Marshal(core.ArticleDoc{Type: "Article", Name: "The Mast-Head"})
	add := core.Activity{
		Type:   core.ActivityTypeAdd,
		ID:     "https://press.example/activities/add-9",
		Actor:  remoteAuthorID,
		Object: object,
		Target: localNovelID,
	}

	// the author's home server is unreachable on the first delivery
	fetcher.fail = true
	err := h.service.Receive(ctx, add)
	assert.Error(t, err)

	_, err = h.chapters.GetBySequence(ctx, localNovelID, 0)
	assert.True(t, errors.Is(err, core.ErrorNotFound{}))

	// redelivery of the same activity succeeds once it recovers
	fetcher.fail = false
	err = h.service.Receive(ctx, add)
	assert.NoError(t, err)

	created, err := h.chapters.GetBySequence(ctx, localNovelID, 0)
	if assert.NoError(t, err) {
		assert.Equal(t, "The Mast-Head", created.Title)
	}
}

func TestReceiveAddUnknownNovel(t *testing.T) {

	var ctx = context.Background()

	h := setup(t, &fakeFetcher{})
	defer h.cleanup()

	object, _ := json.Marshal(core.ArticleDoc{Type: "Article", Name: "Orphan"})

	err := h.service.Receive(ctx, core.Activity{
		Type:   core.ActivityTypeAdd,
		ID:     "https://press.example/activities/add-3",
		Actor:  remoteAuthorID,
		Object: object,
		Target: "https://ink.example/novel/unwritten",
	})
	assert.True(t, errors.Is(err, core.ErrorNotFound{}))
	assert.Empty(t, h.delivery.items)
}

func TestReceiveUnsupportedType(t *testing.T) {

	var ctx = context.Background()

	h := setup(t, &fakeFetcher{})
	defer h.cleanup()

	err := h.service.Receive(ctx, core.Activity{
		Type:  "Like",
		ID:    "https://press.example/activities/like-1",
		Actor: remoteAuthorID,
	})
	assert.ErrorIs(t, err, errUnsupportedType)
}
