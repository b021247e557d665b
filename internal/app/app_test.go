package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"portal_backend/internal/app"
	"portal_backend/internal/services/dto"
	"portal_backend/internal/testutil"
	"portal_backend/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	cfg := testutil.TestConfig()
	cfg.Storage.BasePath = t.TempDir()
	db := testutil.NewTestDB(t)

	a, err := app.New(context.Background(), cfg, db)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func do(t *testing.T, a *app.App, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func register(t *testing.T, a *app.App, req dto.RegisterRequest) dto.AuthResponse {
	t.Helper()
	w := do(t, a, http.MethodPost, "/api/auth/register", "", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AuthResponse
	decode(t, w, &resp)
	return resp
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["database"])
	assert.EqualValues(t, 0, body["connections"])
}

func TestAuthFlow(t *testing.T) {
	a := newTestApp(t)

	reg := register(t, a, dto.RegisterRequest{
		Email:    "siti@example.com",
		Password: "password123",
		Name:     "Siti",
	})
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	assert.Equal(t, "candidate", string(reg.User.Role))

	w := do(t, a, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email:    "siti@example.com",
		Password: "password123",
		Name:     "Siti again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, a, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "siti@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, a, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "siti@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login dto.AuthResponse
	decode(t, w, &login)

	w = do(t, a, http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me map[string]interface{}
	decode(t, w, &me)
	assert.Equal(t, "siti@example.com", me["email"])
}

func TestUnauthorizedErrorShape(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decode(t, w, &body)
	assert.NotEmpty(t, body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}

func TestJobLifecycle(t *testing.T) {
	a := newTestApp(t)

	recruiter := register(t, a, dto.RegisterRequest{
		Email:            "hr@acme.test",
		Password:         "password123",
		Name:             "Acme HR",
		Role:             "recruiter",
		OrganizationName: "Acme",
	})
	candidate := register(t, a, dto.RegisterRequest{
		Email:    "budi@example.com",
		Password: "password123",
		Name:     "Budi",
	})

	job := map[string]interface{}{
		"title":           "Backend Engineer",
		"description":     "Build and run the hiring platform.",
		"employment_type": "full_time",
		"status":          "open",
	}

	// candidates cannot post jobs
	w := do(t, a, http.MethodPost, "/api/org/jobs", candidate.AccessToken, job)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, a, http.MethodPost, "/api/org/jobs", recruiter.AccessToken, job)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	decode(t, w, &created)
	slug, _ := created["slug"].(string)
	require.NotEmpty(t, slug)

	w = do(t, a, http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page dto.PaginatedResponse
	decode(t, w, &page)
	assert.EqualValues(t, 1, page.Total)

	w = do(t, a, http.MethodGet, "/api/jobs/"+slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got map[string]interface{}
	decode(t, w, &got)
	assert.Equal(t, "Backend Engineer", got["title"])

	w = do(t, a, http.MethodPost, "/api/jobs/"+created["id"].(string)+"/apply", candidate.AccessToken, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// the same candidate cannot apply twice
	w = do(t, a, http.MethodPost, "/api/jobs/"+created["id"].(string)+"/apply", candidate.AccessToken, map[string]interface{}{})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegionSearch(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, http.MethodGet, "/api/regions/search?q=aceh&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Query   string `json:"query"`
		Count   int    `json:"count"`
		Results []struct {
			Code string `json:"code"`
		} `json:"results"`
	}
	decode(t, w, &body)
	assert.Equal(t, "aceh", body.Query)
	require.NotZero(t, body.Count)
	assert.LessOrEqual(t, body.Count, 5)
	assert.Equal(t, "11", body.Results[0].Code)
}

func TestSocketRequiresToken(t *testing.T) {
	a := newTestApp(t)

	w := do(t, a, http.MethodGet, "/api/socket", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSocketBroadcastsConnectionCount(t *testing.T) {
	a := newTestApp(t)
	admin := register(t, a, dto.RegisterRequest{
		Email:            "takmir@masjid.test",
		Password:         "password123",
		Name:             "Takmir",
		Role:             "mosque_admin",
		OrganizationName: "Masjid Al-Ikhlas",
	})

	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Relay.Run(ctx)
	}()
	srv := httptest.NewServer(a.Router)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/socket?token=" + admin.AccessToken
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env ws.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, ws.EventConnections, env.Event)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	require.NoError(t, conn.Close())
	cancel()
	<-done
	srv.Close()
}
