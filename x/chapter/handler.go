package chapter

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-social/inkwell/core"
)

// Handler serves chapter documents.
type Handler struct {
	service core.ChapterService
	config  core.Config
}

// NewHandler creates a new chapter handler
func NewHandler(service core.ChapterService, config core.Config) Handler {
	return Handler{service, config}
}

// Get serves a chapter document by novel name and sequence number.
func (h Handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "HandlerGet")
	defer span.End()

	name := c.Param("id")
	sequence, err := strconv.Atoi(c.Param("sequence"))
	if err != nil || sequence < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sequence number"})
	}

	novelID := h.config.BaseURL() + "/novel/" + name
	chapter, err := h.service.GetBySequence(ctx, novelID, sequence)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "chapter not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, Document(chapter))
}

// Document renders the public representation of a chapter.
func Document(chapter core.Chapter) core.ChapterDoc {
	var updated *string
	if chapter.UpdatedAt != nil {
		u := chapter.UpdatedAt.Format(time.RFC3339)
		updated = &u
	}
	return core.ChapterDoc{
		Context:   core.ActivityStreamsContext,
		Type:      "Article",
		ID:        chapter.ID,
		Name:      chapter.Title,
		Audience:  chapter.Audience,
		Summary:   chapter.Summary,
		Sensitive: chapter.Sensitive,
		Content:   chapter.Content,
		Published: chapter.PublishedAt.Format(time.RFC3339),
		Updated:   updated,
	}
}
