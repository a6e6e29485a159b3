package statistics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	prommetrics "github.com/aimd54/rocase/internal/metrics"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/pkg/logger"
)

type fakeCases struct {
	counts map[models.CaseStatus]int64
	err    error
}

func (f *fakeCases) CountByStatus(context.Context) (map[models.CaseStatus]int64, error) {
	return f.counts, f.err
}

type fakeRequests struct {
	counts map[models.CaseRequestStatus]int64
	err    error
}

func (f *fakeRequests) CountByStatus(context.Context) (map[models.CaseRequestStatus]int64, error) {
	return f.counts, f.err
}

func newTestService() *Service {
	cases := &fakeCases{counts: map[models.CaseStatus]int64{
		models.CaseStatusOpen:            3,
		models.CaseStatusInvestigating:   2,
		models.CaseStatusPendingJudgment: 1,
		models.CaseStatusClosed:          4,
	}}
	requests := &fakeRequests{counts: map[models.CaseRequestStatus]int64{
		models.CaseRequestPending:  5,
		models.CaseRequestRejected: 1,
	}}
	return NewServiceWithInterfaces(cases, requests, logger.Nop())
}

func TestCaseStats(t *testing.T) {
	svc := newTestService()

	stats, err := svc.CaseStats(context.Background(), auth.Actor{ID: 1, Role: models.RoleMember})
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.Total)
	assert.Equal(t, int64(3), stats.Open)
	assert.Equal(t, int64(2), stats.Investigating)
	assert.Equal(t, int64(1), stats.PendingJudgment)
	assert.Equal(t, int64(4), stats.Closed)
}

func TestCaseStats_Empty(t *testing.T) {
	svc := NewServiceWithInterfaces(&fakeCases{counts: map[models.CaseStatus]int64{}}, &fakeRequests{}, logger.Nop())

	stats, err := svc.CaseStats(context.Background(), auth.Actor{ID: 1, Role: models.RoleJudge})
	require.NoError(t, err)
	assert.Equal(t, CaseStats{}, *stats)
}

func TestRequestStats(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name    string
		role    models.Role
		allowed bool
	}{
		{"admin", models.RoleAdmin, true},
		{"officer", models.RoleOfficer, true},
		{"judge", models.RoleJudge, false},
		{"investigator", models.RoleInvestigator, false},
		{"member", models.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := svc.RequestStats(context.Background(), auth.Actor{ID: 7, Role: tt.role})
			if !tt.allowed {
				assert.Nil(t, stats)
				assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(6), stats.Total)
			assert.Equal(t, int64(5), stats.Pending)
			assert.Equal(t, int64(0), stats.Approved)
			assert.Equal(t, int64(1), stats.Rejected)
		})
	}
}

func TestRefreshGauges(t *testing.T) {
	svc := newTestService()

	require.NoError(t, svc.RefreshGauges(context.Background()))

	assert.Equal(t, 3.0, testutil.ToFloat64(prommetrics.CasesByStatus.WithLabelValues("open")))
	assert.Equal(t, 4.0, testutil.ToFloat64(prommetrics.CasesByStatus.WithLabelValues("closed")))
	assert.Equal(t, 5.0, testutil.ToFloat64(prommetrics.PendingCaseRequests))
}

func TestRefreshGauges_Error(t *testing.T) {
	svc := NewServiceWithInterfaces(&fakeCases{err: errors.New("db down")}, &fakeRequests{}, logger.Nop())

	err := svc.RefreshGauges(context.Background())
	assert.Error(t, err)
}
