// Package webfinger implements discovery-by-handle: serving lookups for
// local actors and resolving remote handles to canonical identifiers.
package webfinger

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/inkwell-social/inkwell/core"
)

var tracer = otel.Tracer("webfinger")

// Handler serves WebFinger and nodeinfo requests.
type Handler struct {
	service core.ActorService
	config  core.Config
	profile core.Profile
}

// NewHandler creates a new webfinger handler
func NewHandler(service core.ActorService, config core.Config, profile core.Profile) Handler {
	return Handler{service, config, profile}
}

// WebFinger handles WebFinger requests for local actors.
func (h Handler) WebFinger(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "WebFinger")
	defer span.End()

	resource := c.QueryParam("resource")
	split := strings.Split(resource, ":")
	if len(split) != 2 {
		return c.String(http.StatusBadRequest, "Invalid resource")
	}
	rt, id := split[0], split[1]
	if rt != "acct" {
		return c.String(http.StatusBadRequest, "Invalid resource")
	}
	split = strings.Split(id, "@")
	if len(split) != 2 {
		return c.String(http.StatusBadRequest, "Invalid resource")
	}
	username, domain := split[0], split[1]
	if !strings.EqualFold(domain, h.config.FQDN) {
		return c.String(http.StatusBadRequest, "Invalid resource")
	}

	actor, err := h.service.GetByName(ctx, username)
	if err != nil {
		return c.String(http.StatusNotFound, "actor not found")
	}

	return c.JSON(http.StatusOK, WebFinger{
		Subject: resource,
		Links: []WebFingerLink{
			{
				Rel:  "self",
				Type: "application/activity+json",
				Href: actor.ID,
			},
		},
	})
}

// NodeInfoWellKnown handles nodeinfo discovery requests.
func (h Handler) NodeInfoWellKnown(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "NodeInfoWellKnown")
	defer span.End()

	return c.JSON(http.StatusOK, WellKnown{
		Links: []WellKnownLink{
			{
				Rel:  "http://nodeinfo.diaspora.software/ns/schema/2.0",
				Href: h.config.BaseURL() + "/nodeinfo/2.0",
			},
		},
	})
}

// NodeInfo handles nodeinfo requests
func (h Handler) NodeInfo(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "NodeInfo")
	defer span.End()

	return c.JSON(http.StatusOK, NodeInfo{
		Version: "2.0",
		Software: NodeInfoSoftware{
			Name:    "inkwell",
			Version: h.profile.Version,
		},
		Protocols: []string{
			"activitypub",
		},
		OpenRegistrations: h.profile.OpenRegistrations,
		Metadata: NodeInfoMetadata{
			NodeName:        h.profile.Nickname,
			NodeDescription: h.profile.Description,
			Maintainer: NodeInfoMetadataMaintainer{
				Name:  h.profile.MaintainerName,
				Email: h.profile.MaintainerEmail,
			},
			ThemeColor: h.profile.ThemeColor,
		},
	})
}
