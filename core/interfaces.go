package core

import (
	"context"
)

type ActorService interface {
	Resolve(ctx context.Context, reference string) (Actor, error)
	Get(ctx context.Context, id string) (Actor, error)
	GetByName(ctx context.Context, name string) (Actor, error)
	CreatePerson(ctx context.Context, username, name, summary string) (Actor, error)
	IsLocalID(id string) bool
	IsStale(actor Actor) bool
	Count(ctx context.Context) (int64, error)
}

type AuthorshipService interface {
	CanWrite(ctx context.Context, novelID, actorID string) (bool, error)
	Grant(ctx context.Context, novelID, actorID string, role Role) (Authorship, error)
	ListAuthors(ctx context.Context, novelID string) ([]Authorship, error)
	ListNovelsOf(ctx context.Context, actorID string) ([]string, error)
}

type ChapterService interface {
	Get(ctx context.Context, id string) (Chapter, error)
	GetBySequence(ctx context.Context, novelID string, sequence int) (Chapter, error)
	AllocateAndCreate(ctx context.Context, novel Actor, draft ChapterDraft) (Chapter, error)
	ListChapters(ctx context.Context, novel Actor) ([]ChapterEntry, error)
	ListIDs(ctx context.Context, novelID string) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type ActivityService interface {
	CreateChapter(ctx context.Context, requester string, novelRef string, draft ChapterDraft) (CreationResult, error)
	Receive(ctx context.Context, activity Activity) error
}

type NovelService interface {
	Create(ctx context.Context, ownerID string, draft NewNovel) (Actor, error)
	Get(ctx context.Context, reference string) (Actor, error)
	Profile(ctx context.Context, novelID string) (NovelProfile, error)
}

// NewNovel is the author-supplied part of a novel registration.
type NewNovel struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Genre     string `json:"genre"`
	Role      string `json:"role"`
	Language  string `json:"language"`
	Sensitive bool   `json:"sensitive"`
	Tags      string `json:"tags"`
}

// DeliveryService transmits signed activities to remote inboxes.
// Enqueue is fire-and-forget: the caller never waits for the remote.
type DeliveryService interface {
	Enqueue(ctx context.Context, item QueuedActivity) error
	Boot()
	PendingCount(ctx context.Context) (int64, error)
}

// Discoverer resolves a name@domain handle to a canonical identifier.
type Discoverer interface {
	Discover(ctx context.Context, handle string) (string, error)
}

// Fetcher dereferences canonical identifiers on remote servers. The
// returned documents are verified to originate from the authority they
// were fetched from.
type Fetcher interface {
	FetchActor(ctx context.Context, id string) (Actor, error)
	FetchChapter(ctx context.Context, id string) (Chapter, error)
	FetchCollection(ctx context.Context, id string) (CollectionDoc, error)
}
