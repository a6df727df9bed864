package auth

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/internal/testutil"
)

type fixedActorService struct {
	actor core.Actor
}

func (s fixedActorService) Resolve(ctx context.Context, reference string) (core.Actor, error) {
	return s.Get(ctx, reference)
}

func (s fixedActorService) Get(ctx context.Context, id string) (core.Actor, error) {
	if id != s.actor.ID {
		return core.Actor{}, core.NewErrorNotFound()
	}
	return s.actor, nil
}

func (s fixedActorService) GetByName(ctx context.Context, name string) (core.Actor, error) {
	return s.actor, nil
}

func (s fixedActorService) CreatePerson(ctx context.Context, username, name, summary string) (core.Actor, error) {
	return core.Actor{}, core.NewErrorInternal("not implemented")
}

func (s fixedActorService) IsLocalID(id string) bool {
	return strings.HasPrefix(id, "https://ink.example/")
}

func (s fixedActorService) IsStale(actor core.Actor) bool { return false }

func (s fixedActorService) Count(ctx context.Context) (int64, error) { return 1, nil }

func TestIssueAndIdentify(t *testing.T) {

	testutil.SetupMockTraceProvider()

	actorID := "https://ink.example/actor/ishmael"
	config := core.Config{
		FQDN:       "ink.example",
		Scheme:     "https",
		AuthSecret: "unittest-secret",
		Admins:     []string{actorID},
	}
	config.Normalize()

	service := NewService(fixedActorService{actor: core.Actor{
		ID:     actorID,
		Kind:   core.KindPerson,
		Domain: "ink.example",
	}}, config)

	token, err := service.IssueToken(actorID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	c, req, _, _ := testutil.CreateHttpRequest()
	req.Header.Set("authorization", "Bearer "+token)

	called := false
	err = service.IdentifyIdentity(func(c echo.Context) error {
		called = true
		assert.Equal(t, actorID, c.Get(RequesterIDCtxKey))
		assert.Equal(t, Admin, c.Get(RequesterTypeCtxKey))
		return nil
	})(c)
	assert.NoError(t, err)
	assert.True(t, called)

	// a garbage token passes through unidentified
	c, req, _, _ = testutil.CreateHttpRequest()
	req.Header.Set("authorization", "Bearer not-a-token")

	err = service.IdentifyIdentity(func(c echo.Context) error {
		assert.Nil(t, c.Get(RequesterIDCtxKey))
		return nil
	})(c)
	assert.NoError(t, err)
}

func TestRestrict(t *testing.T) {

	allowed := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	c, _, rec, _ := testutil.CreateHttpRequest()
	c.Set(RequesterTypeCtxKey, LocalUser)
	assert.NoError(t, Restrict(ISADMIN)(allowed)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, _, rec, _ = testutil.CreateHttpRequest()
	c.Set(RequesterTypeCtxKey, Admin)
	assert.NoError(t, Restrict(ISADMIN)(allowed)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _, rec, _ = testutil.CreateHttpRequest()
	c.Set(RequesterTypeCtxKey, LocalUser)
	assert.NoError(t, Restrict(ISLOCAL)(allowed)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _, rec, _ = testutil.CreateHttpRequest()
	assert.NoError(t, Restrict(ISLOCAL)(allowed)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
