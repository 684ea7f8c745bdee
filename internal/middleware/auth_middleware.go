package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

const principalKey = "principal"

// SessionAuthenticator validates a (user id, token) pair
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, userID int64, token string) (*models.Principal, error)
}

// AuthMiddleware resolves the session cookies into a models.Principal
type AuthMiddleware struct {
	sessions    SessionAuthenticator
	userCookie  string
	magicCookie string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions SessionAuthenticator, userCookie, magicCookie string) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:    sessions,
		userCookie:  userCookie,
		magicCookie: magicCookie,
	}
}

// LoadSession stores the caller's Principal when the cookies carry a valid session. Requests
// without one continue anonymously; the handler decides whether that is allowed.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := m.resolve(c)
		if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
			HandleAPIError(c, err)
			return
		}
		if p != nil {
			c.Set(principalKey, *p)
		}
		c.Next()
	}
}

// SessionRequired aborts requests that do not carry a valid session
func (m *AuthMiddleware) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := m.resolve(c)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		c.Set(principalKey, *p)
		c.Next()
	}
}

func (m *AuthMiddleware) resolve(c *gin.Context) (*models.Principal, error) {
	invalid := apperrors.NewAuthenticationError(apperrors.ErrSessionInvalid)

	rawUser, err := c.Cookie(m.userCookie)
	if err != nil {
		return nil, invalid
	}
	token, err := c.Cookie(m.magicCookie)
	if err != nil {
		return nil, invalid
	}
	userID, err := strconv.ParseInt(rawUser, 10, 64)
	if err != nil || userID <= 0 {
		return nil, invalid
	}

	return m.sessions.Authenticate(c.Request.Context(), userID, token)
}

// PrincipalFrom returns the Principal stored by LoadSession or SessionRequired
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
