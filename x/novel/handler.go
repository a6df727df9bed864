package novel

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/x/actor"
	"github.com/inkwell-social/inkwell/x/auth"
)

// Handler serves novel documents and registration.
type Handler struct {
	service    core.NovelService
	authorship core.AuthorshipService
	chapter    core.ChapterService
	config     core.Config
}

// NewHandler creates a new novel handler
func NewHandler(service core.NovelService, authorship core.AuthorshipService, chapter core.ChapterService, config core.Config) Handler {
	return Handler{service, authorship, chapter, config}
}

// Get serves a novel document. The reference may be a local preferred
// name, a handle, or a canonical identifier.
func (h Handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerGet")
	defer span.End()

	novel, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}

	document := actor.Document(novel)

	profile, err := h.service.Profile(ctx, novel.ID)
	if err == nil {
		document.Genre = profile.Genre
		document.Tags = profile.Tags
		document.Language = profile.Language
		document.Sensitive = profile.Sensitive
	}

	authorships, err := h.authorship.ListAuthors(ctx, novel.ID)
	if err == nil {
		for _, entry := range authorships {
			document.Authors = append(document.Authors, core.AuthorDoc{
				ID:   entry.AuthorID,
				Role: entry.Role,
			})
		}
	}

	return c.JSON(http.StatusOK, document)
}

type createNovelRequest struct {
	core.NewNovel
}

// Create registers a new novel owned by the signed-in person.
func (h Handler) Create(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerCreate")
	defer span.End()

	requester, ok := c.Get(auth.RequesterIDCtxKey).(string)
	if !ok || requester == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not signed in"})
	}

	var request createNovelRequest
	err := c.Bind(&request)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	created, err := h.service.Create(ctx, requester, request.NewNovel)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "content": actor.Document(created)})
}

// Outbox serves the ordered chapter identifiers of a local novel,
// newest first.
func (h Handler) Outbox(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerOutbox")
	defer span.End()

	novelID := h.config.BaseURL() + "/novel/" + c.Param("id")
	ids, err := h.chapter.ListIDs(ctx, novelID)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, core.CollectionDoc{
		Context:      core.ActivityStreamsContext,
		Type:         "OrderedCollection",
		TotalItems:   len(ids),
		OrderedItems: ids,
	})
}

// Chapters serves the materialized chapter listing of a novel, local or
// remote. Items that could not be fetched are reported in place rather
// than failing the whole listing.
func (h Handler) Chapters(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerChapters")
	defer span.End()

	novel, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}

	entries, err := h.chapter.ListChapters(ctx, novel)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": entries})
}

func (h Handler) mapError(c echo.Context, err error) error {
	if errors.Is(err, core.ErrorNotFound{}) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "novel not found"})
	}
	var badRequest core.ErrorBadRequest
	if errors.As(err, &badRequest) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": badRequest.Error()})
	}
	return err
}
