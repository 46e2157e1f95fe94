package middleware

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/store"
	"github.com/harentsoaR/medicore-api/internal/utils"
)

const currentUserKey = "currentUser"

// Gate turns role session cookies into a resolved user on the request.
type Gate struct {
	tokens *utils.TokenIssuer
	users  store.UserStore
}

func NewGate(tokens *utils.TokenIssuer, users store.UserStore) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate requires a valid session in role's cookie held by a user of
// that role.
func (g *Gate) Authenticate(role models.Role) gin.HandlerFunc {
	return g.AuthenticateAny(role)
}

// AuthenticateAny tries each role's cookie in the order given and admits the
// first session that resolves to a user with a listed role. When none does,
// the first cookie's failure is reported: a missing cookie or unknown user is
// 401, a bad token is 401, and a user whose role is not listed is 403.
func (g *Gate) AuthenticateAny(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var first error
		for _, role := range roles {
			token, err := c.Cookie(role.CookieName())
			if err != nil || token == "" {
				continue
			}
			user, err := g.resolve(c.Request.Context(), token)
			if err == nil && !slices.Contains(roles, user.Role) {
				err = forbidden(user.Role)
			}
			if err == nil {
				c.Set(currentUserKey, user)
				c.Next()
				return
			}
			if first == nil {
				first = err
			}
		}
		if first == nil {
			first = apperr.Unauthenticated("User not authenticated!")
		}
		abort(c, first)
	}
}

func (g *Gate) resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, apperr.InvalidToken(err)
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.InvalidToken(err)
	}

	user, err := g.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthenticated("User not authenticated!")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authorize narrows an authenticated request to roles.
func Authorize(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, apperr.Unauthenticated("User not authenticated!"))
			return
		}
		if !slices.Contains(roles, user.Role) {
			abort(c, forbidden(user.Role))
			return
		}
		c.Next()
	}
}

// CurrentUser is the user attached by the gate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func forbidden(role models.Role) error {
	return apperr.Forbidden(fmt.Sprintf("%s not authorized for this resource!", role))
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
