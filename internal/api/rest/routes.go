package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/aimd54/rocase/internal/auth"
)

// RegisterRoutes mounts the API on router.
// Every gated route checks the caller's role before its handler reads the request.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Healthz)

	api := router.Group("/api/v1", h.Authenticate())

	api.GET("/auth/me", h.Me)
	api.POST("/auth/logout", h.Logout)

	api.GET("/users", h.require(auth.OpUsersList), h.ListUsers)
	api.PUT("/users/:id/role", h.require(auth.OpUsersSetRole), h.UpdateUserRole)

	api.POST("/players", h.require(auth.OpPlayersUpsert), h.UpsertPlayer)
	api.GET("/players/:id", h.require(auth.OpPlayersRead), h.GetPlayer)
	api.GET("/players/:id/stats", h.require(auth.OpPlayersRead), h.GetPlayerStats)
	api.GET("/players/:id/cases", h.require(auth.OpCasesRead), h.ListPlayerCases)
	api.GET("/roblox-players/:robloxId", h.require(auth.OpPlayersRead), h.GetPlayerByRobloxID)
	api.GET("/top-offenders", h.require(auth.OpPlayersRead), h.TopOffenders)

	api.GET("/cases", h.require(auth.OpCasesRead), h.ListCases)
	api.POST("/cases", h.require(auth.OpCasesCreate), h.CreateCase)
	api.GET("/cases/:id", h.require(auth.OpCasesRead), h.GetCase)
	api.PUT("/cases/:id/status", h.require(auth.OpCasesStatus), h.UpdateCaseStatus)
	api.POST("/cases/:id/finalize", h.require(auth.OpCasesFinalize), h.FinalizeCase)
	api.GET("/cases/:id/evidence", h.require(auth.OpEvidenceRead), h.ListEvidence)
	api.POST("/cases/:id/evidence", h.require(auth.OpEvidenceAdd), h.AddEvidence)
	api.POST("/cases/:id/evidence/upload", h.require(auth.OpEvidenceAdd), h.UploadEvidence)
	api.GET("/cases/:id/notes", h.require(auth.OpNotesRead), h.ListNotes)
	api.POST("/cases/:id/notes", h.require(auth.OpNotesAdd), h.AddNote)
	api.GET("/case-numbers/:caseNumber", h.require(auth.OpCasesRead), h.GetCaseByNumber)
	api.GET("/search/cases", h.require(auth.OpCasesRead), h.SearchCases)

	api.DELETE("/evidence/:id", h.require(auth.OpEvidenceDelete), h.DeleteEvidence)
	api.PUT("/notes/:id", h.require(auth.OpNotesUpdate), h.UpdateNote)
	api.DELETE("/notes/:id", h.require(auth.OpNotesDelete), h.DeleteNote)

	api.GET("/audit-logs", h.require(auth.OpAuditRead), h.ListAuditLogs)
	api.GET("/audit-logs/:entityType/:entityId", h.require(auth.OpAuditRead), h.ListEntityAuditLogs)

	api.GET("/case-requests", h.require(auth.OpRequestsList), h.ListCaseRequests)
	api.POST("/case-requests", h.require(auth.OpRequestsCreate), h.SubmitCaseRequest)
	api.GET("/case-requests/:id", h.require(auth.OpRequestsRead), h.GetCaseRequest)
	api.POST("/case-requests/:id/approve", h.require(auth.OpRequestsReview), h.ApproveCaseRequest)
	api.POST("/case-requests/:id/reject", h.require(auth.OpRequestsReview), h.RejectCaseRequest)
	api.GET("/me/case-requests", h.require(auth.OpRequestsRead), h.ListMyCaseRequests)

	api.GET("/statistics/cases", h.require(auth.OpStatsCases), h.CaseStats)
	api.GET("/statistics/requests", h.require(auth.OpStatsRequests), h.RequestStats)
}
