// Package activity implements the two-message Add/Accept exchange used
// when a chapter is created against a novel hosted on another server,
// and the synchronous path when the novel is local.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/x/util"
)

type service struct {
	repo       *Repository
	actor      core.ActorService
	authorship core.AuthorshipService
	chapter    core.ChapterService
	delivery   core.DeliveryService
	config     core.Config
	variants   map[string]variant
}

// NewService creates a new activity service
func NewService(
	repo *Repository,
	actor core.ActorService,
	authorship core.AuthorshipService,
	chapter core.ChapterService,
	delivery core.DeliveryService,
	config core.Config,
) core.ActivityService {
	s := &service{
		repo:       repo,
		actor:      actor,
		authorship: authorship,
		chapter:    chapter,
		delivery:   delivery,
		config:     config,
	}
	s.variants = map[string]variant{
		core.ActivityTypeAdd:    addVariant{s},
		core.ActivityTypeAccept: acceptVariant{s},
	}
	return s
}

func (s *service) mintActivityID() string {
	return s.config.BaseURL() + "/activities/" + xid.New().String()
}

// CreateChapter handles a chapter-creation request from a local,
// authenticated requester. A local novel is written synchronously; a
// remote one receives an Add activity and answers in its own time.
func (s *service) CreateChapter(ctx context.Context, requester string, novelRef string, draft core.ChapterDraft) (core.CreationResult, error) {
	ctx, span := tracer.Start(ctx, "ServiceCreateChapter")
	defer span.End()

	draft.Title = util.NormalizeTitle(draft.Title)
	if draft.Title == "" {
		return core.CreationResult{}, core.NewErrorBadRequest("chapter title is required")
	}

	requesterActor, err := s.actor.Get(ctx, requester)
	if err != nil {
		span.RecordError(err)
		return core.CreationResult{}, err
	}
	if !s.actor.IsLocalID(requesterActor.ID) {
		return core.CreationResult{}, core.NewErrorPermissionDenied()
	}

	novel, err := s.actor.Resolve(ctx, novelRef)
	if err != nil {
		span.RecordError(err)
		return core.CreationResult{}, err
	}
	if novel.Kind != core.KindGroup {
		return core.CreationResult{}, core.NewErrorBadRequest("target is not a novel: " + novel.ID)
	}

	if s.actor.IsLocalID(novel.ID) {
		ok, err := s.authorship.CanWrite(ctx, novel.ID, requesterActor.ID)
		if err != nil {
			span.RecordError(err)
			return core.CreationResult{}, err
		}
		if !ok {
			return core.CreationResult{}, core.NewErrorPermissionDenied()
		}

		created, err := s.chapter.AllocateAndCreate(ctx, novel, draft)
		if err != nil {
			span.RecordError(err)
			return core.CreationResult{}, err
		}

		return core.CreationResult{
			Status:    core.CreationStatusCreated,
			ChapterID: created.ID,
		}, nil
	}

	return s.sendAdd(ctx, requesterActor, novel, draft)
}

// sendAdd constructs an Add activity and hands it to delivery addressed
// to the novel's inbox. Fire-and-forget: the authoritative server
// re-validates everything on receipt.
func (s *service) sendAdd(ctx context.Context, requester core.Actor, novel core.Actor, draft core.ChapterDraft) (core.CreationResult, error) {
	ctx, span := tracer.Start(ctx, "ServiceSendAdd")
	defer span.End()

	object, err := json.Marshal(core.ArticleDoc{
		Type:      "Article",
		Name:      draft.Title,
		Summary:   draft.Summary,
		Sensitive: draft.Sensitive,
		Content:   draft.Content,
	})
	if err != nil {
		span.RecordError(err)
		return core.CreationResult{}, core.NewErrorInternal("failed to serialize article")
	}

	add := core.Activity{
		Context: core.ActivityStreamsContext,
		Type:    core.ActivityTypeAdd,
		ID:      s.mintActivityID(),
		Actor:   requester.ID,
		Object:  object,
		Target:  novel.ID,
	}

	payload, err := json.Marshal(add)
	if err != nil {
		span.RecordError(err)
		return core.CreationResult{}, core.NewErrorInternal("failed to serialize activity")
	}

	_, err = s.repo.CreateRecord(ctx, core.ActivityRecord{
		ID:       add.ID,
		Type:     add.Type,
		Status:   core.ActivityStatusRequested,
		ActorID:  requester.ID,
		TargetID: novel.ID,
	})
	if err != nil {
		span.RecordError(err)
		return core.CreationResult{}, err
	}

	err = s.delivery.Enqueue(ctx, core.QueuedActivity{
		TargetInbox: novel.Inbox,
		SignerID:    requester.ID,
		Payload:     string(payload),
	})
	if err != nil {
		span.RecordError(err)
		return core.CreationResult{}, err
	}

	slog.InfoContext(
		ctx, fmt.Sprintf("add %s dispatched to %s", add.ID, novel.Inbox),
		slog.String("module", "activity"),
	)

	return core.CreationResult{
		Status:     core.CreationStatusRequested,
		ActivityID: add.ID,
	}, nil
}

// Receive validates and applies an incoming activity by its declared
// type.
func (s *service) Receive(ctx context.Context, envelope core.Activity) error {
	ctx, span := tracer.Start(ctx, "ServiceReceive")
	defer span.End()

	v, ok := s.variants[envelope.Type]
	if !ok {
		return errUnsupportedType
	}

	err := v.verify(ctx, envelope)
	if err != nil {
		span.RecordError(err)
		return err
	}

	return v.receive(ctx, envelope)
}

var errUnsupportedType = core.NewErrorBadRequest("unsupported activity type")

type addVariant struct {
	s *service
}

func (v addVariant) verify(ctx context.Context, envelope core.Activity) error {
	if envelope.ID == "" || envelope.Actor == "" || envelope.Target == "" {
		return core.NewErrorBadRequest("incomplete activity")
	}
	article, err := decodeArticle(envelope)
	if err != nil {
		return err
	}
	if util.NormalizeTitle(article.Name) == "" {
		return core.NewErrorBadRequest("chapter title is required")
	}
	return nil
}

// receive applies an Add: the authorization decision is made here, on
// the novel's home server, never taken from the sender.
func (v addVariant) receive(ctx context.Context, envelope core.Activity) error {
	s := v.s
	ctx, span := tracer.Start(ctx, "ServiceReceiveAdd")
	defer span.End()

	seen, err := s.repo.Seen(ctx, envelope.ID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if seen {
		slog.InfoContext(
			ctx, fmt.Sprintf("add %s already processed, ignoring", envelope.ID),
			slog.String("module", "activity"),
		)
		return nil
	}

	novel, requester, created, err := v.apply(ctx, envelope)
	if err != nil {
		// the marker must only outlive a processed activity; a failed
		// one stays retryable under the same identifier
		if releaseErr := s.repo.Release(ctx, envelope.ID); releaseErr != nil {
			span.RecordError(releaseErr)
		}
		return err
	}

	if !s.config.ShouldSendAccept() {
		return nil
	}

	return s.sendAccept(ctx, novel, requester, envelope.ID, created.ID)
}

// apply resolves and authorizes the Add, then materializes the chapter.
func (v addVariant) apply(ctx context.Context, envelope core.Activity) (core.Actor, core.Actor, core.Chapter, error) {
	s := v.s
	ctx, span := tracer.Start(ctx, "ServiceApplyAdd")
	defer span.End()

	novel, err := s.actor.Get(ctx, envelope.Target)
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, core.Actor{}, core.Chapter{}, core.NewErrorNotFound()
	}
	if novel.Kind != core.KindGroup || !s.actor.IsLocalID(novel.ID) {
		return core.Actor{}, core.Actor{}, core.Chapter{}, core.NewErrorNotFound()
	}

	requester, err := s.actor.Resolve(ctx, envelope.Actor)
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, core.Actor{}, core.Chapter{}, err
	}

	ok, err := s.authorship.CanWrite(ctx, novel.ID, requester.ID)
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, core.Actor{}, core.Chapter{}, err
	}
	if !ok {
		slog.WarnContext(
			ctx, fmt.Sprintf("%s has no write permission on %s", requester.ID, novel.ID),
			slog.String("module", "activity"),
		)
		return core.Actor{}, core.Actor{}, core.Chapter{}, core.NewErrorPermissionDenied()
	}

	article, err := decodeArticle(envelope)
	if err != nil {
		return core.Actor{}, core.Actor{}, core.Chapter{}, err
	}

	created, err := s.chapter.AllocateAndCreate(ctx, novel, core.ChapterDraft{
		Title:     util.NormalizeTitle(article.Name),
		Summary:   article.Summary,
		Content:   article.Content,
		Sensitive: article.Sensitive,
	})
	if err != nil {
		span.RecordError(err)
		return core.Actor{}, core.Actor{}, core.Chapter{}, err
	}

	_, err = s.repo.CreateRecord(ctx, core.ActivityRecord{
		ID:        envelope.ID,
		Type:      envelope.Type,
		Status:    core.ActivityStatusReceived,
		ActorID:   requester.ID,
		TargetID:  novel.ID,
		ChapterID: &created.ID,
	})
	if err != nil {
		span.RecordError(err)
	}

	return novel, requester, created, nil
}

// sendAccept confirms a processed Add back to the requester's inbox.
// Delivery failure after this point leaves the chapter in place; the
// requester may simply never hear back.
func (s *service) sendAccept(ctx context.Context, novel core.Actor, requester core.Actor, addID, chapterID string) error {
	ctx, span := tracer.Start(ctx, "ServiceSendAccept")
	defer span.End()

	object, _ := json.Marshal(addID)

	accept := core.Activity{
		Context: core.ActivityStreamsContext,
		Type:    core.ActivityTypeAccept,
		ID:      s.mintActivityID(),
		Actor:   novel.ID,
		Object:  object,
		Target:  chapterID,
	}

	payload, err := json.Marshal(accept)
	if err != nil {
		span.RecordError(err)
		return core.NewErrorInternal("failed to serialize activity")
	}

	err = s.delivery.Enqueue(ctx, core.QueuedActivity{
		TargetInbox: requester.Inbox,
		SignerID:    novel.ID,
		Payload:     string(payload),
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	slog.InfoContext(
		ctx, fmt.Sprintf("accept for %s dispatched to %s", addID, requester.Inbox),
		slog.String("module", "activity"),
	)

	return nil
}

type acceptVariant struct {
	s *service
}

func (v acceptVariant) verify(ctx context.Context, envelope core.Activity) error {
	if envelope.ID == "" || envelope.Actor == "" || envelope.Target == "" {
		return core.NewErrorBadRequest("incomplete activity")
	}
	_, err := decodeObjectID(envelope)
	return err
}

// receive applies an Accept: pure bookkeeping, the chapter itself lives
// on the accepting server.
func (v acceptVariant) receive(ctx context.Context, envelope core.Activity) error {
	s := v.s
	ctx, span := tracer.Start(ctx, "ServiceReceiveAccept")
	defer span.End()

	addID, err := decodeObjectID(envelope)
	if err != nil {
		return err
	}

	err = s.repo.UpdateStatus(ctx, addID, core.ActivityStatusAccepted, &envelope.Target)
	if err != nil {
		slog.WarnContext(
			ctx, fmt.Sprintf("accept %s references unknown add %s", envelope.ID, addID),
			slog.String("module", "activity"),
		)
		return nil
	}

	slog.InfoContext(
		ctx, fmt.Sprintf("add %s accepted as %s", addID, envelope.Target),
		slog.String("module", "activity"),
	)

	return nil
}
