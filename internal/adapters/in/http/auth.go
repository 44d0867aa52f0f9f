package http

import (
	"errors"
	"net/http"
	"strings"

	"parcelshare/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	RoleMember    = "member"
	RoleModerator = "moderator"

	actorKey = "actor"
)

// Claims are issued by the identity service. The subject is the user id.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Actor is the authenticated user of a request.
type Actor struct {
	ID   kernel.UUID
	Role string
}

func (a Actor) IsModerator() bool { return a.Role == RoleModerator }

// bearerAuth verifies HS256 tokens and stores the Actor on the context.
// Requests whose path is in public skip the check.
func bearerAuth(secret []byte, issuer string, public ...string) echo.MiddlewareFunc {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(parserOptions...)

	isPublic := func(path string) bool {
		for _, p := range public {
			if path == p || (strings.HasSuffix(p, "*") && strings.HasPrefix(path, strings.TrimSuffix(p, "*"))) {
				return true
			}
		}
		return false
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isPublic(c.Request().URL.Path) {
				return next(c)
			}

			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, newErrorBody(http.StatusUnauthorized, "bearer token required"))
			}

			claims := &Claims{}
			_, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
				return secret, nil
			})
			if err != nil {
				message := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					message = "token expired"
				}
				return c.JSON(http.StatusUnauthorized, newErrorBody(http.StatusUnauthorized, message))
			}

			id, err := kernel.UUIDFromString(claims.Subject)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, newErrorBody(http.StatusUnauthorized, "token subject is not a user id"))
			}

			role := claims.Role
			if role == "" {
				role = RoleMember
			}
			c.Set(actorKey, Actor{ID: id, Role: role})
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) (Actor, error) {
	actor, ok := c.Get(actorKey).(Actor)
	if !ok {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return actor, nil
}

// IssueToken signs a token for userID. Production tokens come from the
// identity service.
func IssueToken(secret []byte, issuer string, userID kernel.UUID, role string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = userID.String()
	if issuer != "" {
		claims.Issuer = issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: role, RegisteredClaims: claims})
	return token.SignedString(secret)
}
