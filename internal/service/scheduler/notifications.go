package scheduler

import (
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/notify"
)

// buildPendingRequests transforms case requests into digest entries.
func buildPendingRequests(requests []models.CaseRequest) []notify.PendingRequest {
	pending := make([]notify.PendingRequest, 0, len(requests))

	for _, r := range requests {
		if !r.IsPending() || r.CreatedAt.IsZero() {
			continue
		}

		requester := r.RequesterName
		if requester == "" {
			requester = "unknown"
		}

		pending = append(pending, notify.PendingRequest{
			ID:              r.ID,
			SuspectUsername: r.SuspectRobloxUsername,
			CrimeType:       r.CrimeType,
			RequesterName:   requester,
			CreatedAt:       r.CreatedAt,
		})
	}

	return pending
}
