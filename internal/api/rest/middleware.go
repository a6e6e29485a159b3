package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	prommetrics "github.com/aimd54/rocase/internal/metrics"
)

const (
	actorKey     = "actor"
	claimsKey    = "claims"
	requestIDKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

// Authenticate resolves the session token of the request into an actor.
// Tokens come from the Authorization header or the session cookie.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := h.tokenFrom(c)
		if token == "" {
			unauthorized(c, "authentication required")
			return
		}

		ctx := c.Request.Context()
		claims, err := h.sessions.Validate(ctx, token)
		switch {
		case errors.Is(err, auth.ErrTokenRevoked):
			unauthorized(c, "session has been revoked")
			return
		case errors.Is(err, auth.ErrInvalidToken):
			unauthorized(c, "invalid session")
			return
		case err != nil:
			h.errorResponse(c, apperr.Unavailable(err, "session store unavailable"))
			return
		}

		var issuedAt time.Time
		if claims.IssuedAt != nil {
			issuedAt = claims.IssuedAt.Time
		}
		user, err := h.svc.Users.Authenticate(ctx, auth.Identity{
			OpenID:      claims.Subject,
			Name:        claims.Name,
			Email:       claims.Email,
			LoginMethod: claims.LoginMethod,
		}, issuedAt)
		if err != nil {
			h.errorResponse(c, err)
			return
		}

		actor := auth.ActorFromUser(user, c.ClientIP())
		c.Set(actorKey, actor)
		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(auth.WithActor(ctx, actor))
		c.Next()
	}
}

func (h *Handler) tokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(h.cookieName); err == nil {
		return cookie
	}
	return ""
}

// require rejects callers whose role may not invoke op. The services repeat the check.
func (h *Handler) require(op auth.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Require(actor(c), op); err != nil {
			h.errorResponse(c, err)
			return
		}
		c.Next()
	}
}

// actor returns the caller stored by Authenticate.
func actor(c *gin.Context) auth.Actor {
	if a, ok := auth.ActorFrom(c.Request.Context()); ok {
		return a
	}
	return auth.Actor{}
}

// RequestID tags each request with the caller's X-Request-ID or a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Metrics records request latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		prommetrics.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

// RequestLogger logs each request once it completes.
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := h.log.Debug()
		if status >= http.StatusInternalServerError {
			event = h.log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("HTTP request")
	}
}
