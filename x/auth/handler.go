package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-social/inkwell/core"
)

// Handler serves the admin token-issue endpoint.
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler
func NewHandler(service *Service) Handler {
	return Handler{service}
}

type issueTokenRequest struct {
	Actor string `json:"actor"`
}

// Issue mints a bearer token for a provisioned local person. Admin
// only; interactive sign-in lives upstream of this server.
func (h Handler) Issue(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "auth.HandlerIssue")
	defer span.End()

	var request issueTokenRequest
	err := c.Bind(&request)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	subject, err := h.service.actor.Resolve(ctx, request.Actor)
	if err != nil {
		if errors.Is(err, core.ErrorNotFound{}) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return err
	}
	if !h.service.actor.IsLocalID(subject.ID) || subject.Kind != core.KindPerson {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token subjects must be local persons"})
	}

	token, err := h.service.IssueToken(subject.ID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": token})
}
