package activity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/x/auth"
)

// Handler receives activities and serves the authenticated creation
// endpoint.
type Handler struct {
	service core.ActivityService
}

// NewHandler creates a new activity handler
func NewHandler(service core.ActivityService) Handler {
	return Handler{service}
}

type createChapterRequest struct {
	Novel   string            `json:"novel"`
	Chapter core.ChapterDraft `json:"chapter"`
}

// CreateChapter handles a chapter-creation request from a signed-in
// local author. The target novel may live anywhere.
func (h Handler) CreateChapter(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerCreateChapter")
	defer span.End()

	requester, ok := c.Get(auth.RequesterIDCtxKey).(string)
	if !ok || requester == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not signed in"})
	}

	var request createChapterRequest
	err := c.Bind(&request)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.service.CreateChapter(ctx, requester, request.Novel, request.Chapter)
	if err != nil {
		return h.mapError(c, err)
	}

	if result.Status == core.CreationStatusCreated {
		return c.JSON(http.StatusCreated, echo.Map{"status": "ok", "content": result})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "ok", "content": result})
}

// Inbox handles activities delivered by other servers.
func (h Handler) Inbox(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerInbox")
	defer span.End()

	var envelope core.Activity
	err := c.Bind(&envelope)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	err = h.service.Receive(ctx, envelope)
	if err != nil {
		if errors.Is(err, errUnsupportedType) {
			return c.String(http.StatusOK, "OK but not implemented")
		}
		return h.mapError(c, err)
	}

	return c.String(http.StatusOK, "{\"message\": \"accept\"}")
}

func (h Handler) mapError(c echo.Context, err error) error {
	if errors.Is(err, core.ErrorNotFound{}) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if errors.Is(err, core.ErrorPermissionDenied{}) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no write permission"})
	}
	var badRequest core.ErrorBadRequest
	if errors.As(err, &badRequest) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": badRequest.Error()})
	}
	return err
}
