package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/inkwell-social/inkwell/core"
)

// Deliveries land on the inbox route of whichever actor they were
// addressed to; the handler works off the envelope's target, never the
// path segment.
func TestInboxOnActorPath(t *testing.T) {

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

	handler := NewHandler(h.service)

	object, _ := json.Marshal(core.ArticleDoc{Type: "Article", Name: "The Sermon"})
	body, _ := json.Marshal(core.Activity{
		Context: core.ActivityStreamsContext,
		Type:    core.ActivityTypeAdd,
		ID:      "https://press.example/activities/add-7",
		Actor:   remoteAuthorID,
		Object:  object,
		Target:  localNovelID,
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/actor/ishmael/inbox", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/actor/:id/inbox")
	c.SetParamNames("id")
	c.SetParamValues("ishmael")

	assert.NoError(t, handler.Inbox(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	created, err := h.chapters.GetBySequence(ctx, localNovelID, 0)
	if assert.NoError(t, err) {
		assert.Equal(t, "The Sermon", created.Title)
	}
}
