package actor

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-social/inkwell/core"
)

// Handler serves actor documents.
type Handler struct {
	service    core.ActorService
	authorship core.AuthorshipService
	config     core.Config
}

// NewHandler creates a new actor handler
func NewHandler(service core.ActorService, authorship core.AuthorshipService, config core.Config) Handler {
	return Handler{service, authorship, config}
}

// Get serves a local actor document by preferred name or canonical
// identifier. Only public fields leave the server.
func (h Handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerGet")
	defer span.End()

	reference := c.Param("id")

	actor, err := h.service.Resolve(ctx, reference)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, Document(actor))
}

// Outbox lists the novels a local person contributes to.
func (h Handler) Outbox(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerOutbox")
	defer span.End()

	person, err := h.service.GetByName(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return err
	}

	ids, err := h.authorship.ListNovelsOf(ctx, person.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, core.CollectionDoc{
		Context:      core.ActivityStreamsContext,
		Type:         "OrderedCollection",
		TotalItems:   len(ids),
		OrderedItems: ids,
	})
}

type createPersonRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Summary  string `json:"summary"`
}

// Create provisions a local person. Admin only; registration proper is
// handled upstream of this server.
func (h Handler) Create(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerCreate")
	defer span.End()

	var request createPersonRequest
	err := c.Bind(&request)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	created, err := h.service.CreatePerson(ctx, request.Username, request.Name, request.Summary)
	if err != nil {
		if errors.Is(err, core.ErrorAlreadyExists{}) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "actor already exists"})
		}
		var badRequest core.ErrorBadRequest
		if errors.As(err, &badRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": badRequest.Error()})
		}
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "content": Document(created)})
}

// Document renders the public representation of an actor.
func Document(actor core.Actor) core.ActorDoc {
	return core.ActorDoc{
		Context:           core.ActivityStreamsContext,
		Type:              actor.Kind,
		ID:                actor.ID,
		PreferredUsername: actor.PreferredName,
		Name:              actor.Name,
		Summary:           actor.Summary,
		Inbox:             actor.Inbox,
		Outbox:            actor.Outbox,
		PublicKey: core.PublicKeyDoc{
			ID:           actor.ID + "#main-key",
			Owner:        actor.ID,
			PublicKeyPem: actor.PublicKey,
		},
		Published: actor.PublishedAt.Format(time.RFC3339),
	}
}
