// Package auth identifies signed-in local requesters from bearer
// tokens and gates routes by principal.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/inkwell-social/inkwell/core"
)

var tracer = otel.Tracer("auth")

type Principal int

const (
	ISADMIN = iota
	ISLOCAL
)

type Service struct {
	actor  core.ActorService
	config core.Config
}

// NewService creates a new auth service
func NewService(actor core.ActorService, config core.Config) *Service {
	return &Service{actor, config}
}

// IssueToken mints a bearer token for a local actor. Used by the admin
// provisioning flow; interactive sign-in lives upstream.
func (s *Service) IssueToken(actorID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": s.config.FQDN,
		"sub": actorID,
	})
	return token.SignedString([]byte(s.config.AuthSecret))
}

// IdentifyIdentity resolves the bearer token into a known local actor
// and stashes the result on the request context. Unauthenticated
// requests pass through as Unknown.
func (s *Service) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "auth.IdentifyIdentity")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 || split[0] != "Bearer" {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skip
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(split[1], claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(s.config.AuthSecret), nil
			})
			if err != nil {
				span.RecordError(err)
				goto skip
			}

			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				span.RecordError(fmt.Errorf("token carries no subject"))
				goto skip
			}

			requester, err := s.actor.Get(ctx, subject)
			if err != nil {
				span.RecordError(err)
				goto skip
			}
			if !s.actor.IsLocalID(requester.ID) || requester.Kind != core.KindPerson {
				span.RecordError(fmt.Errorf("token subject is not a local person"))
				goto skip
			}

			requesterType := LocalUser
			if s.config.IsAdmin(requester.ID) {
				requesterType = Admin
			}

			c.Set(RequesterTypeCtxKey, requesterType)
			c.Set(RequesterIDCtxKey, requester.ID)
			span.SetAttributes(attribute.String("RequesterId", requester.ID))
		}
	skip:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// Restrict rejects requests whose requester does not hold the given
// principal.
func Restrict(principal Principal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "auth.Restrict")
			defer span.End()

			requesterType, _ := c.Get(RequesterTypeCtxKey).(int)

			switch principal {
			case ISADMIN:
				if requesterType != Admin {
					return c.JSON(http.StatusForbidden, echo.Map{
						"error":  "you are not authorized to perform this action",
						"detail": "you are not admin",
					})
				}

			case ISLOCAL:
				if requesterType != LocalUser && requesterType != Admin {
					return c.JSON(http.StatusForbidden, echo.Map{
						"error":  "you are not authorized to perform this action",
						"detail": "you are not local",
					})
				}
			}

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
