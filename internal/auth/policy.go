package auth

import (
	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/metrics"
	"github.com/aimd54/rocase/internal/models"
)

// Operation names a gated entry point.
type Operation string

// Gated operations.
const (
	OpUsersList      Operation = "users.getAll"
	OpUsersSetRole   Operation = "users.updateRole"
	OpPlayersUpsert  Operation = "players.upsert"
	OpPlayersRead    Operation = "players.read"
	OpCasesCreate    Operation = "cases.create"
	OpCasesStatus    Operation = "cases.updateStatus"
	OpCasesFinalize  Operation = "cases.finalizeCase"
	OpCasesRead      Operation = "cases.read"
	OpEvidenceAdd    Operation = "evidence.add"
	OpEvidenceDelete Operation = "evidence.delete"
	OpEvidenceRead   Operation = "evidence.read"
	OpNotesAdd       Operation = "notes.add"
	OpNotesUpdate    Operation = "notes.update"
	OpNotesDelete    Operation = "notes.delete"
	OpNotesRead      Operation = "notes.read"
	OpAuditRead      Operation = "auditLogs.read"
	OpRequestsCreate Operation = "caseRequests.create"
	OpRequestsList   Operation = "caseRequests.getAll"
	OpRequestsReview Operation = "caseRequests.review"
	OpRequestsRead   Operation = "caseRequests.read"
	OpStatsCases     Operation = "statistics.getCaseStats"
	OpStatsRequests  Operation = "statistics.getRequestStats"
)

var (
	anyRole    = []models.Role{models.RoleAdmin, models.RoleJudge, models.RoleInvestigator, models.RoleOfficer, models.RoleMember}
	adminOnly  = []models.Role{models.RoleAdmin}
	adminJudge = []models.Role{models.RoleAdmin, models.RoleJudge}
	reviewers  = []models.Role{models.RoleAdmin, models.RoleOfficer}
	staff      = []models.Role{models.RoleAdmin, models.RoleJudge, models.RoleInvestigator, models.RoleOfficer}
)

// policy maps each operation to the roles allowed to invoke it.
var policy = map[Operation][]models.Role{
	OpUsersList:      adminOnly,
	OpUsersSetRole:   adminOnly,
	OpPlayersUpsert:  {models.RoleAdmin, models.RoleOfficer, models.RoleInvestigator},
	OpPlayersRead:    anyRole,
	OpCasesCreate:    reviewers,
	OpCasesStatus:    {models.RoleAdmin, models.RoleJudge, models.RoleInvestigator},
	OpCasesFinalize:  adminJudge,
	OpCasesRead:      anyRole,
	OpEvidenceAdd:    {models.RoleAdmin, models.RoleInvestigator, models.RoleOfficer},
	OpEvidenceDelete: {models.RoleAdmin, models.RoleInvestigator},
	OpEvidenceRead:   anyRole,
	OpNotesAdd:       staff,
	OpNotesUpdate:    staff,
	OpNotesDelete:    adminOnly,
	OpNotesRead:      anyRole,
	OpAuditRead:      adminJudge,
	OpRequestsCreate: {models.RoleMember, models.RoleOfficer, models.RoleAdmin},
	OpRequestsList:   reviewers,
	OpRequestsReview: reviewers,
	OpRequestsRead:   anyRole,
	OpStatsCases:     anyRole,
	OpStatsRequests:  reviewers,
}

// Allowed reports whether role may invoke op. Unknown operations are admin-only.
func Allowed(role models.Role, op Operation) bool {
	roles, ok := policy[op]
	if !ok {
		roles = adminOnly
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// AllowedRoles returns the allow-list of op.
func AllowedRoles(op Operation) []models.Role {
	roles, ok := policy[op]
	if !ok {
		return adminOnly
	}
	out := make([]models.Role, len(roles))
	copy(out, roles)
	return out
}

// Require returns a Forbidden error when a may not invoke op.
// Callers must check it before touching any state.
func Require(a Actor, op Operation) error {
	if Allowed(a.Role, op) {
		return nil
	}
	metrics.RecordAuthorizationDenied(string(op), string(a.Role))
	return apperr.Forbidden("role %q may not perform %s", a.Role, op)
}
