// Package statistics provides case and case request dashboards.
package statistics

import (
	"context"

	"github.com/aimd54/rocase/internal/auth"
	prommetrics "github.com/aimd54/rocase/internal/metrics"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/pkg/logger"
)

// CaseCounter counts cases per status.
type CaseCounter interface {
	CountByStatus(ctx context.Context) (map[models.CaseStatus]int64, error)
}

// RequestCounter counts case requests per status.
type RequestCounter interface {
	CountByStatus(ctx context.Context) (map[models.CaseRequestStatus]int64, error)
}

// CaseStats summarizes the case docket.
type CaseStats struct {
	Total           int64 `json:"total"`
	Open            int64 `json:"open"`
	Investigating   int64 `json:"investigating"`
	PendingJudgment int64 `json:"pending_judgment"`
	Closed          int64 `json:"closed"`
}

// RequestStats summarizes the intake queue.
type RequestStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Service computes statistics.
type Service struct {
	cases    CaseCounter
	requests RequestCounter
	log      *logger.Logger
}

// NewService creates a new statistics service backed by the store.
func NewService(store *repository.Store, log *logger.Logger) *Service {
	return &Service{cases: store.Cases, requests: store.Requests, log: log}
}

// NewServiceWithInterfaces creates a new statistics service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(cases CaseCounter, requests RequestCounter, log *logger.Logger) *Service {
	return &Service{cases: cases, requests: requests, log: log}
}

// CaseStats returns case counts by status.
func (s *Service) CaseStats(ctx context.Context, actor auth.Actor) (*CaseStats, error) {
	if err := auth.Require(actor, auth.OpStatsCases); err != nil {
		return nil, err
	}
	return s.caseStats(ctx)
}

// RequestStats returns case request counts by status.
func (s *Service) RequestStats(ctx context.Context, actor auth.Actor) (*RequestStats, error) {
	if err := auth.Require(actor, auth.OpStatsRequests); err != nil {
		return nil, err
	}
	return s.requestStats(ctx)
}

// RefreshGauges publishes current counts to the Prometheus gauges.
func (s *Service) RefreshGauges(ctx context.Context) error {
	cs, err := s.caseStats(ctx)
	if err != nil {
		return err
	}
	prommetrics.SetCasesByStatus(string(models.CaseStatusOpen), cs.Open)
	prommetrics.SetCasesByStatus(string(models.CaseStatusInvestigating), cs.Investigating)
	prommetrics.SetCasesByStatus(string(models.CaseStatusPendingJudgment), cs.PendingJudgment)
	prommetrics.SetCasesByStatus(string(models.CaseStatusClosed), cs.Closed)

	rs, err := s.requestStats(ctx)
	if err != nil {
		return err
	}
	prommetrics.SetPendingCaseRequests(rs.Pending)

	s.log.Debug().Int64("cases", cs.Total).Int64("pending_requests", rs.Pending).Msg("Refreshed statistics gauges")
	return nil
}

func (s *Service) caseStats(ctx context.Context) (*CaseStats, error) {
	counts, err := s.cases.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &CaseStats{
		Open:            counts[models.CaseStatusOpen],
		Investigating:   counts[models.CaseStatusInvestigating],
		PendingJudgment: counts[models.CaseStatusPendingJudgment],
		Closed:          counts[models.CaseStatusClosed],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *Service) requestStats(ctx context.Context) (*RequestStats, error) {
	counts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &RequestStats{
		Pending:  counts[models.CaseRequestPending],
		Approved: counts[models.CaseRequestApproved],
		Rejected: counts[models.CaseRequestRejected],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
