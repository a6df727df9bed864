package actor

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/internal/testutil"
	"github.com/inkwell-social/inkwell/x/authorship"
)

func TestHandlerOutbox(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	config := core.Config{FQDN: "ink.example", Scheme: "https"}
	config.Normalize()

	test_service := NewService(NewRepository(db, nil), &fakeFetcher{}, &fakeDiscoverer{}, config)
	authorService := authorship.NewService(authorship.NewRepository(db))
	handler := NewHandler(test_service, authorService, config)

	created, err := test_service.CreatePerson(ctx, "ishmael", "Ishmael", "")
	assert.NoError(t, err)

	novelID := "https://ink.example/novel/whale"
	_, err = authorService.Grant(ctx, novelID, created.ID, core.RoleWriter)
	assert.NoError(t, err)

	c, _, rec, _ := testutil.CreateHttpRequest()
	c.SetParamNames("id")
	c.SetParamValues("ishmael")

	assert.NoError(t, handler.Outbox(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var collection core.CollectionDoc
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &collection))
	assert.Equal(t, "OrderedCollection", collection.Type)
	assert.Equal(t, []string{novelID}, collection.OrderedItems)

	c, _, rec, _ = testutil.CreateHttpRequest()
	c.SetParamNames("id")
	c.SetParamValues("stranger")

	assert.NoError(t, handler.Outbox(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
