// Package rest exposes the case tracker over HTTP.
// Every route except the health check runs behind session authentication, and
// role checks happen in the services so the handlers only translate requests and errors.
package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/service/cases"
	"github.com/aimd54/rocase/internal/service/evidence"
	"github.com/aimd54/rocase/internal/service/players"
	"github.com/aimd54/rocase/internal/service/requests"
	"github.com/aimd54/rocase/internal/service/statistics"
	"github.com/aimd54/rocase/pkg/logger"
)

// SessionManager validates and revokes session tokens.
type SessionManager interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
	Revoke(ctx context.Context, claims *auth.Claims) error
}

// UserService interface for user operations.
type UserService interface {
	Authenticate(ctx context.Context, id auth.Identity, issuedAt time.Time) (*models.User, error)
	GetAll(ctx context.Context, actor auth.Actor) ([]models.User, error)
	UpdateRole(ctx context.Context, actor auth.Actor, userID uint, role models.Role) (*models.User, error)
}

// PlayerService interface for player operations.
type PlayerService interface {
	Upsert(ctx context.Context, actor auth.Actor, in players.UpsertInput) (*models.Player, error)
	GetByID(ctx context.Context, actor auth.Actor, id uint) (*models.Player, error)
	GetByRobloxID(ctx context.Context, actor auth.Actor, robloxUserID int64) (*models.Player, error)
	TopOffenders(ctx context.Context, actor auth.Actor, limit int) ([]models.Player, error)
	Stats(ctx context.Context, actor auth.Actor, id uint) (*players.Stats, error)
}

// CaseService interface for case operations.
type CaseService interface {
	Create(ctx context.Context, actor auth.Actor, in cases.CreateInput) (*models.Case, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, id uint, status models.CaseStatus) (*models.Case, error)
	Finalize(ctx context.Context, actor auth.Actor, id uint, in cases.FinalizeInput) (*models.Case, error)
	GetByID(ctx context.Context, actor auth.Actor, id uint) (*models.Case, error)
	GetByCaseNumber(ctx context.Context, actor auth.Actor, number string) (*models.Case, error)
	List(ctx context.Context, actor auth.Actor, status models.CaseStatus) ([]models.Case, error)
	ListByPlayer(ctx context.Context, actor auth.Actor, playerID uint) ([]models.Case, error)
	Search(ctx context.Context, actor auth.Actor, query string) ([]models.Case, error)
}

// EvidenceService interface for evidence operations.
type EvidenceService interface {
	Add(ctx context.Context, actor auth.Actor, caseID uint, in evidence.AddInput) (*models.Evidence, error)
	Upload(ctx context.Context, actor auth.Actor, caseID uint, f evidence.File, kind models.EvidenceType, description *string) (*models.Evidence, error)
	Delete(ctx context.Context, actor auth.Actor, id uint) error
	ListByCase(ctx context.Context, actor auth.Actor, caseID uint) ([]models.Evidence, error)
}

// NoteService interface for note operations.
type NoteService interface {
	Add(ctx context.Context, actor auth.Actor, caseID uint, content string) (*models.Note, error)
	Update(ctx context.Context, actor auth.Actor, id uint, content string) (*models.Note, error)
	Delete(ctx context.Context, actor auth.Actor, id uint) error
	ListByCase(ctx context.Context, actor auth.Actor, caseID uint) ([]models.Note, error)
}

// RequestService interface for case request operations.
type RequestService interface {
	Submit(ctx context.Context, actor auth.Actor, in requests.SubmitInput) (*models.CaseRequest, error)
	Approve(ctx context.Context, actor auth.Actor, id uint, notes *string) (*requests.ApproveResult, error)
	Reject(ctx context.Context, actor auth.Actor, id uint, notes string) (*models.CaseRequest, error)
	List(ctx context.Context, actor auth.Actor, status models.CaseRequestStatus) ([]models.CaseRequest, error)
	ListMine(ctx context.Context, actor auth.Actor) ([]models.CaseRequest, error)
	GetByID(ctx context.Context, actor auth.Actor, id uint) (*models.CaseRequest, error)
}

// AuditService interface for audit trail reads.
type AuditService interface {
	List(ctx context.Context, actor auth.Actor, limit, offset int) ([]models.AuditLog, error)
	ByEntity(ctx context.Context, actor auth.Actor, entityType string, entityID uint) ([]models.AuditLog, error)
}

// StatisticsService interface for dashboard counts.
type StatisticsService interface {
	CaseStats(ctx context.Context, actor auth.Actor) (*statistics.CaseStats, error)
	RequestStats(ctx context.Context, actor auth.Actor) (*statistics.RequestStats, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Services groups the collaborators the handler dispatches to.
type Services struct {
	Users      UserService
	Players    PlayerService
	Cases      CaseService
	Evidence   EvidenceService
	Notes      NoteService
	Requests   RequestService
	Audit      AuditService
	Statistics StatisticsService
}

// Handler handles case tracker API requests.
type Handler struct {
	svc        Services
	sessions   SessionManager
	cookieName string
	health     map[string]HealthCheck
	maxUpload  int64
	log        *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc Services, sessions SessionManager, cookieName string, log *logger.Logger) *Handler {
	return &Handler{
		svc:        svc,
		sessions:   sessions,
		cookieName: cookieName,
		health:     make(map[string]HealthCheck),
		maxUpload:  32 << 20,
		log:        log,
	}
}

// AddHealthCheck registers a dependency probed by /healthz.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.health[name] = check
}

// Healthz reports the state of every registered dependency.
// GET /healthz.
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			checks[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

// Helper functions

// parseID extracts and validates a numeric URL parameter.
func (h *Handler) parseID(c *gin.Context, name string) (uint, error) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("invalid %s: %s", name, idStr)
	}
	return uint(id), nil
}

// parseIntQuery reads an optional integer query parameter.
func (h *Handler) parseIntQuery(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("invalid %s parameter: %s", name, raw)
	}
	return v, nil
}

// bind decodes the JSON body into dst.
func (h *Handler) bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("request body is required")
		}
		return apperr.Invalid("invalid request body: %v", err)
	}
	return nil
}

// errorResponse sends a standardized error response derived from err.
func (h *Handler) errorResponse(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	event := h.log.Debug()
	switch kind {
	case apperr.KindForbidden:
		event = h.log.Warn()
	case apperr.KindInternal, apperr.KindUnavailable:
		event = h.log.Error()
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Str("code", string(kind)).
		Msg("Request failed")

	c.AbortWithStatusJSON(status, gin.H{
		"error":     apperr.MessageOf(err),
		"code":      kind,
		"timestamp": time.Now().UTC(),
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     message,
		"code":      "unauthenticated",
		"timestamp": time.Now().UTC(),
	})
}
