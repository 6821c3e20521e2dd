// ABOUTME: Bearer-token authentication and error responses for the API
// ABOUTME: Each request gets its own session scoped to the token's principal
package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/agency/auth"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/leadgen"
	"github.com/harperreed/agency/views"
	"go.uber.org/zap"
)

const (
	SignInPath = "/signin"
	sessionKey = "session"
	inboxKey   = "inbox"
)

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			s.unauthorized(c, "missing bearer token")
			return
		}
		claims, err := auth.Parse(parts[1], s.opts.JWTSecret)
		if err != nil {
			s.unauthorized(c, "invalid or expired token")
			return
		}
		gw := gateway.StaticPrincipal{Gateway: s.gw, P: claims.Principal()}
		c.Set(sessionKey, gateway.NewSession(gw))
		c.Set(inboxKey, &views.Inbox{})
		c.Next()
	}
}

// unauthorized sends browsers to the sign-in page and API clients a 401.
func (s *Server) unauthorized(c *gin.Context, msg string) {
	if c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, SignInPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "signin": SignInPath})
}

func session(c *gin.Context) *gateway.Session {
	return c.MustGet(sessionKey).(*gateway.Session)
}

func inbox(c *gin.Context) *views.Inbox {
	return c.MustGet(inboxKey).(*views.Inbox)
}

// fail maps domain errors to status codes.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrUnauthenticated):
		s.unauthorized(c, "not signed in")
		return
	case errors.Is(err, gateway.ErrNotFound),
		errors.Is(err, views.ErrDealNotFound),
		errors.Is(err, views.ErrStageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "notifications": inbox(c).Drain()})
	case errors.Is(err, views.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "notifications": inbox(c).Drain()})
	case errors.Is(err, gateway.ErrInvalidCollection),
		errors.Is(err, views.ErrMemberIncomplete),
		errors.Is(err, views.ErrInvalidRole),
		errors.Is(err, leadgen.ErrEmptyNiche),
		errors.Is(err, leadgen.ErrNoLeads):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "notifications": inbox(c).Drain()})
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "notifications": inbox(c).Drain()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// done writes a successful write response with the notifications it raised.
func done(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["notifications"] = inbox(c).Drain()
	c.JSON(status, body)
}
