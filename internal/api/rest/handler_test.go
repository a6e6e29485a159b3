//nolint:noctx // Test file uses http.NewRequest for simplicity
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/cache"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/internal/service/audit"
	"github.com/aimd54/rocase/internal/service/cases"
	"github.com/aimd54/rocase/internal/service/evidence"
	"github.com/aimd54/rocase/internal/service/notes"
	"github.com/aimd54/rocase/internal/service/players"
	"github.com/aimd54/rocase/internal/service/requests"
	"github.com/aimd54/rocase/internal/service/statistics"
	"github.com/aimd54/rocase/internal/service/users"
	"github.com/aimd54/rocase/pkg/logger"
	"github.com/aimd54/rocase/test/mocks"
	"github.com/aimd54/rocase/test/testdb"
)

const testCookie = "rocase_session"

type testServer struct {
	router   *gin.Engine
	handler  *Handler
	store    *repository.Store
	sessions *auth.Sessions
	blobs    *mocks.MockBlobStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testdb.NewStore(t)
	log := logger.Nop()
	blobs := mocks.NewMockBlobStore()

	sessions, err := auth.NewSessions("test-secret", time.Hour, cache.NewRevocations(mocks.NewMockCache()))
	require.NoError(t, err)

	caseSvc := cases.NewService(store, log)
	h := NewHandler(Services{
		Users:      users.NewService(store, "open-owner", log),
		Players:    players.NewService(store, log),
		Cases:      caseSvc,
		Evidence:   evidence.NewService(store, blobs, log),
		Notes:      notes.NewService(store, log),
		Requests:   requests.NewService(store, caseSvc, log),
		Audit:      audit.NewService(store, log),
		Statistics: statistics.NewService(store, log),
	}, sessions, testCookie, log)

	router := gin.New()
	router.Use(RequestID(), Metrics(), h.RequestLogger())
	h.RegisterRoutes(router)

	return &testServer{router: router, handler: h, store: store, sessions: sessions, blobs: blobs}
}

// login creates a user with role and returns a session token for it.
func (s *testServer) login(t *testing.T, name string, role models.Role) string {
	t.Helper()
	user := testdb.CreateUser(t, s.store, name, role)
	token, _, err := s.sessions.Issue(auth.Identity{OpenID: user.OpenID, Name: user.Name, LoginMethod: user.LoginMethod})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAuthenticate_Rejections(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "garbage token", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/auth/me", tt.token, nil)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", w.Code)
			}
			assert.Equal(t, "unauthenticated", decode(t, w)["code"])
		})
	}
}

func TestAuthenticate_CookieAndMe(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "judge", models.RoleJudge)

	req, err := http.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "judge", user["name"])
	assert.Equal(t, string(models.RoleJudge), user["role"])
}

func TestAuthenticate_RegistersUnknownIdentity(t *testing.T) {
	s := newTestServer(t)
	token, _, err := s.sessions.Issue(auth.Identity{OpenID: "open-newcomer", Name: "newcomer", LoginMethod: "discord"})
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, string(models.RoleMember), user["role"])
}

type failingSessions struct{}

func (failingSessions) Validate(context.Context, string) (*auth.Claims, error) {
	return nil, errors.New("redis: connection refused")
}

func (failingSessions) Revoke(context.Context, *auth.Claims) error { return nil }

func TestAuthenticate_SessionStoreDown(t *testing.T) {
	s := newTestServer(t)
	s.handler.sessions = failingSessions{}

	w := s.do(t, http.MethodGet, "/api/v1/auth/me", "any-token", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	assert.Equal(t, "unavailable", decode(t, w)["code"])
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "officer", models.RoleOfficer)

	w := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	w = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 after logout, got %d", w.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	member := s.login(t, "member", models.RoleMember)
	admin := s.login(t, "admin", models.RoleAdmin)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "forbidden role",
			method:     http.MethodGet,
			path:       "/api/v1/users",
			token:      member,
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:       "unknown case",
			method:     http.MethodGet,
			path:       "/api/v1/cases/999",
			token:      admin,
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "malformed id",
			method:     http.MethodGet,
			path:       "/api/v1/cases/abc",
			token:      admin,
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "missing body",
			method:     http.MethodPost,
			path:       "/api/v1/cases",
			token:      admin,
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "invalid role",
			method:     http.MethodPut,
			path:       "/api/v1/users/1/role",
			token:      admin,
			body:       map[string]string{"role": "superuser"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "invalid status filter",
			method:     http.MethodGet,
			path:       "/api/v1/cases?status=archived",
			token:      admin,
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.token, tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			body := decode(t, w)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["timestamp"])
		})
	}
}

func TestRoleCheckedBeforeInput(t *testing.T) {
	s := newTestServer(t)
	member := s.login(t, "member", models.RoleMember)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{name: "reject without body", method: http.MethodPost, path: "/api/v1/case-requests/1/reject"},
		{name: "finalize without body", method: http.MethodPost, path: "/api/v1/cases/1/finalize"},
		{name: "create without body", method: http.MethodPost, path: "/api/v1/cases"},
		{name: "status with malformed id", method: http.MethodPut, path: "/api/v1/cases/abc/status", body: map[string]string{"status": "closed"}},
		{name: "role change with invalid role", method: http.MethodPut, path: "/api/v1/users/abc/role", body: map[string]string{"role": "superuser"}},
		{name: "note delete with malformed id", method: http.MethodDelete, path: "/api/v1/notes/abc"},
		{name: "evidence upload without form", method: http.MethodPost, path: "/api/v1/cases/1/evidence/upload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, member, tt.body)

			if w.Code != http.StatusForbidden {
				t.Errorf("Expected status 403, got %d: %s", w.Code, w.Body.String())
			}
			assert.Equal(t, "forbidden", decode(t, w)["code"])
		})
	}
}

func TestCaseLifecycle(t *testing.T) {
	s := newTestServer(t)
	officer := s.login(t, "officer", models.RoleOfficer)
	judge := s.login(t, "judge", models.RoleJudge)

	w := s.do(t, http.MethodPost, "/api/v1/players", officer, map[string]any{
		"roblox_user_id":  4242,
		"roblox_username": "Suspect",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	playerID := decode(t, w)["player"].(map[string]any)["id"].(float64)

	w = s.do(t, http.MethodPost, "/api/v1/cases", officer, map[string]any{
		"accused_player_id": playerID,
		"complainant_name":  "Witness",
		"crime_type":        "RDM",
		"description":       "Killed players in spawn",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["case"].(map[string]any)
	number := created["case_number"].(string)
	assert.True(t, strings.HasPrefix(number, fmt.Sprintf("RC-%d-", time.Now().UTC().Year())), number)
	caseID := int(created["id"].(float64))

	w = s.do(t, http.MethodGet, "/api/v1/case-numbers/"+number, officer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/cases/%d/finalize", caseID), officer, map[string]any{"verdict": "guilty"})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected officer finalize to be forbidden, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/cases/%d/finalize", caseID), judge, map[string]any{
		"verdict":    "guilty",
		"punishment": "3 day ban",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "closed", decode(t, w)["case"].(map[string]any)["status"])

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/cases/%d/finalize", caseID), judge, map[string]any{"verdict": "guilty"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected second finalize to conflict, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/search/cases?q=rdm", officer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/audit-logs/case/%d", caseID), judge, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode(t, w)["total"])
}

func TestUploadEvidence(t *testing.T) {
	s := newTestServer(t)
	investigator := s.login(t, "investigator", models.RoleInvestigator)
	creator := testdb.CreateUser(t, s.store, "creator", models.RoleOfficer)
	player := testdb.CreatePlayer(t, s.store, 7, "Suspect")
	c := testdb.CreateCase(t, s.store, "RC-2026-00001", player, creator)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "clip.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("type", "image"))
	require.NoError(t, mw.WriteField("description", "Screenshot of the kill feed"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/cases/%d/evidence/upload", c.ID), &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+investigator)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e := decode(t, w)["evidence"].(map[string]any)
	assert.Equal(t, "image", e["type"])
	assert.True(t, strings.HasPrefix(e["url"].(string), "https://blobs.test/"))
	assert.Equal(t, "Screenshot of the kill feed", e["description"])
	assert.Equal(t, 1, s.blobs.Len())

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/cases/%d/evidence", c.ID), investigator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/evidence/%d", int(e["id"].(float64))), investigator, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, s.blobs.Len())
}

func TestUploadEvidence_MissingFile(t *testing.T) {
	s := newTestServer(t)
	investigator := s.login(t, "investigator", models.RoleInvestigator)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("type", "image"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/v1/cases/1/evidence/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+investigator)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCaseRequestReview(t *testing.T) {
	s := newTestServer(t)
	member := s.login(t, "member", models.RoleMember)
	officer := s.login(t, "officer", models.RoleOfficer)

	submit := func() int {
		w := s.do(t, http.MethodPost, "/api/v1/case-requests", member, map[string]any{
			"suspect_roblox_id":       555,
			"suspect_roblox_username": "Exploiter",
			"crime_type":              "Exploiting",
			"description":             "Flying around the map",
			"evidence_urls":           []string{"https://example.com/clip"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return int(decode(t, w)["request"].(map[string]any)["id"].(float64))
	}

	first := submit()
	second := submit()

	w := s.do(t, http.MethodGet, "/api/v1/case-requests?status=pending", member, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected member listing to be forbidden, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/me/case-requests", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["total"])

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/case-requests/%d/approve", first), officer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decode(t, w)
	assert.Equal(t, "approved", approved["request"].(map[string]any)["status"])
	assert.NotEmpty(t, approved["case"].(map[string]any)["case_number"])
	assert.Len(t, approved["evidence"], 1)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/case-requests/%d/approve", first), officer, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected re-approval to conflict, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/case-requests/%d/reject", second), officer, map[string]any{"review_notes": "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected blank rejection notes to fail validation, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/case-requests/%d/reject", second), officer, map[string]any{"review_notes": "Insufficient evidence"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "rejected", decode(t, w)["request"].(map[string]any)["status"])

	w = s.do(t, http.MethodGet, "/api/v1/statistics/requests", officer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]any)
	assert.EqualValues(t, 2, stats["total"])
	assert.EqualValues(t, 1, stats["approved"])
	assert.EqualValues(t, 1, stats["rejected"])
}

func TestNotes(t *testing.T) {
	s := newTestServer(t)
	investigator := s.login(t, "investigator", models.RoleInvestigator)
	creator := testdb.CreateUser(t, s.store, "creator", models.RoleOfficer)
	player := testdb.CreatePlayer(t, s.store, 9, "Suspect")
	c := testdb.CreateCase(t, s.store, "RC-2026-00001", player, creator)

	w := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/cases/%d/notes", c.ID), investigator, map[string]any{"content": "Checked server logs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	noteID := int(decode(t, w)["note"].(map[string]any)["id"].(float64))

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/notes/%d", noteID), investigator, map[string]any{"content": "Logs confirm the report"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Logs confirm the report", decode(t, w)["note"].(map[string]any)["content"])

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/notes/%d", noteID), investigator, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected investigator delete to be forbidden, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/cases/%d/notes", c.ID), investigator, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	s.handler.AddHealthCheck("redis", func(context.Context) error { return errors.New("down") })
	w = s.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	body := decode(t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unhealthy", body["checks"].(map[string]any)["redis"])
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)

	req, err := http.NewRequest(http.MethodGet, "/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "trace-123")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
}
