package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/inkwell-social/inkwell/core"
)

func TestIssueEndpoint(t *testing.T) {

	actorID := "https://ink.example/actor/ishmael"
	config := core.Config{
		FQDN:       "ink.example",
		Scheme:     "https",
		AuthSecret: "unittest-secret",
	}
	config.Normalize()

	service := NewService(fixedActorService{actor: core.Actor{
		ID:     actorID,
		Kind:   core.KindPerson,
		Domain: "ink.example",
	}}, config)
	handler := NewHandler(service)

	e := echo.New()

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/token", bytes.NewReader([]byte(body)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		assert.NoError(t, handler.Issue(e.NewContext(req, rec)))
		return rec
	}

	rec := do(`{"actor": "` + actorID + `"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Content string `json:"content"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Content)

	rec = do(`{"actor": "https://ink.example/actor/stranger"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
