package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiContentStudio/internal/auth"
	"aiContentStudio/internal/db"
	"aiContentStudio/internal/generator"
	"aiContentStudio/internal/service"
	"aiContentStudio/internal/testutil"
	"aiContentStudio/models"
	"aiContentStudio/repository"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	t      *testing.T
	h      http.Handler
	store  *db.Store
	issuer *auth.Issuer
}

func newTestServer(t *testing.T, gen generator.Generator) *testServer {
	t.Helper()
	s := testutil.OpenTestStore(t)
	issuer := auth.NewIssuer(testutil.TestSecret, time.Hour)
	svcs := service.New(s, issuer, service.Options{
		Generator:        gen,
		GeneratorTimeout: time.Second,
		StartingCredits:  service.DefaultStartingCredits,
	})
	authn := auth.NewAuthenticator(issuer, repository.NewUserRepository(s))
	h := NewRouter(svcs, authn, Options{ClientURL: "http://localhost:3000"})
	return &testServer{t: t, h: h, store: s, issuer: issuer}
}

func (ts *testServer) token(userID int64) string {
	ts.t.Helper()
	tok, err := ts.issuer.Issue(userID)
	require.NoError(ts.t, err)
	return tok
}

// do sends body as JSON and decodes the response into out when non-nil.
func (ts *testServer) do(method, path, token string, body any, out any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
	}
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	msg, _ := body["error"].(string)
	return msg
}

func TestHealthzAndMiddleware(t *testing.T) {
	ts := newTestServer(t, generator.Echo{})

	rec := ts.do(http.MethodGet, "/healthz", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodOptions, "/api/content/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, generator.Echo{})

	var reg struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	rec := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@example.com", "password": "secret1", "name": "A",
	}, &reg)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.RoleAdmin, reg.User.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "a@example.com", "password": "secret1", "name": "A",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", errorOf(t, rec))

	rec = ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@example.com", "password": "bad-pass"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorOf(t, rec))

	var login struct {
		Token string `json:"token"`
	}
	rec = ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@example.com", "password": "secret1"}, &login)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		User auth.Principal `json:"user"`
	}
	rec = ts.do(http.MethodGet, "/api/auth/me", login.Token, nil, &me)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@example.com", me.User.Email)
	assert.EqualValues(t, 100, me.User.Credits)

	rec = ts.do(http.MethodPut, "/api/auth/profile", login.Token, map[string]string{
		"currentPassword": "wrong", "newPassword": "another1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Current password is incorrect", errorOf(t, rec))
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, generator.Echo{})
	u := testutil.CreateUser(t, ts.store, "u@example.com", models.RoleUser, 5)

	cases := []struct {
		name   string
		token  string
		status int
		msg    string
	}{
		{"missing", "", http.StatusUnauthorized, "Access token required"},
		{"garbage", "not-a-token", http.StatusUnauthorized, "Invalid token"},
		{"wrong secret", testutil.GenerateJWTHS256(t, "other-secret", u.ID, time.Hour), http.StatusUnauthorized, "Invalid token"},
		{"expired", testutil.GenerateJWTHS256(t, testutil.TestSecret, u.ID, -time.Minute), http.StatusUnauthorized, "Token expired"},
		{"unknown user", ts.token(9999), http.StatusUnauthorized, "User not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(http.MethodGet, "/api/content/history", tc.token, nil, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, errorOf(t, rec))
		})
	}

	rec := ts.do(http.MethodGet, "/api/admin/stats", ts.token(u.ID), nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", errorOf(t, rec))
}

func TestGenerateEndpoint(t *testing.T) {
	ts := newTestServer(t, generator.Echo{})
	u := testutil.CreateUser(t, ts.store, "u@example.com", models.RoleUser, 1)
	tok := ts.token(u.ID)

	rec := ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{"prompt": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Prompt is required", errorOf(t, rec))

	rec = ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{"templateId": 424242, "prompt": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var tpls []models.Template
	ts.do(http.MethodGet, "/api/templates?type=blog", tok, nil, &tpls)
	require.Len(t, tpls, 1)

	rec = ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{
		"templateId": tpls[0].ID, "prompt": "x", "parameters": map[string]any{"topic": "Go"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing template parameters: tone, length", errorOf(t, rec))

	var res service.GenerateResult
	rec = ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{
		"templateId": tpls[0].ID, "prompt": "Go",
		"parameters": map[string]any{"topic": "Go", "tone": "dry", "length": 800},
	}, &res)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, res.Content, "approximately 800 words")
	assert.Zero(t, res.CreditsRemaining)
	assert.Contains(t, rec.Body.String(), `"creditsRemaining":0`)

	rec = ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{"prompt": "again"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient credits. Please contact admin for more credits.", errorOf(t, rec))
	assert.EqualValues(t, 1, testutil.GenerationCount(t, ts.store, u.ID))
}

func TestGenerateEndpoint_TemplateIDForms(t *testing.T) {
	ts := newTestServer(t, generator.Echo{})
	u := testutil.CreateUser(t, ts.store, "u@example.com", models.RoleUser, 10)
	tok := ts.token(u.ID)

	var tpls []models.Template
	ts.do(http.MethodGet, "/api/templates?type=blog", tok, nil, &tpls)
	require.Len(t, tpls, 1)
	params := map[string]any{"topic": "Go", "tone": "dry", "length": 300}

	// Route params reach the body as strings.
	var res service.GenerateResult
	rec := ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{
		"templateId": itoa(tpls[0].ID), "prompt": "Go", "parameters": params,
	}, &res)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, res.Content, "approximately 300 words")
	assert.EqualValues(t, 9, res.CreditsRemaining)

	for _, id := range []any{nil, "", 0, "0"} {
		rec = ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{
			"templateId": id, "prompt": "free form",
		}, &res)
		require.Equal(t, http.StatusOK, rec.Code, "templateId %#v: %s", id, rec.Body.String())
		assert.Contains(t, res.Content, "free form")
	}

	rec = ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{"templateId": "blog", "prompt": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid templateId: expected a number", errorOf(t, rec))
	assert.EqualValues(t, 5, testutil.GenerationCount(t, ts.store, u.ID))
}

func TestGenerateEndpoint_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t, generator.Func(func(context.Context, string) (string, error) {
		return "", errors.New("provider exploded: secret detail")
	}))
	u := testutil.CreateUser(t, ts.store, "u@example.com", models.RoleUser, 3)

	rec := ts.do(http.MethodPost, "/api/content/generate", ts.token(u.ID), map[string]any{"prompt": "x"}, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to generate content. Please try again.", errorOf(t, rec))
	assert.NotContains(t, rec.Body.String(), "secret detail")
	assert.EqualValues(t, 3, testutil.Credits(t, ts.store, u.ID))
}

func TestHistoryEndpoint(t *testing.T) {
	ts := newTestServer(t, generator.Echo{})
	u := testutil.CreateUser(t, ts.store, "u@example.com", models.RoleUser, 50)
	other := testutil.CreateUser(t, ts.store, "o@example.com", models.RoleUser, 50)
	tok := ts.token(u.ID)

	var first service.GenerateResult
	for i := 0; i < 12; i++ {
		var res service.GenerateResult
		rec := ts.do(http.MethodPost, "/api/content/generate", tok, map[string]any{"prompt": "p", "contentType": "email"}, &res)
		require.Equal(t, http.StatusOK, rec.Code)
		if i == 0 {
			first = res
		}
	}

	var page service.HistoryPage
	rec := ts.do(http.MethodGet, "/api/content/history?page=2&limit=5", tok, nil, &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, page.Generations, 5)
	assert.EqualValues(t, 12, page.Pagination.Total)
	assert.EqualValues(t, 3, page.Pagination.Pages)

	var fav map[string]bool
	rec = ts.do(http.MethodPatch, "/api/content/"+itoa(first.ID)+"/favorite", tok, nil, &fav)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fav["is_favorite"])

	rec = ts.do(http.MethodGet, "/api/content/history?favorite=true", tok, nil, &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, page.Pagination.Total)

	otherTok := ts.token(other.ID)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/content/"+itoa(first.ID), otherTok, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPatch, "/api/content/"+itoa(first.ID)+"/favorite", otherTok, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/content/"+itoa(first.ID), otherTok, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/content/abc", tok, nil, nil).Code)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/content/"+itoa(first.ID), tok, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/content/"+itoa(first.ID), tok, nil, nil).Code)
}

func TestAdminEndpoints(t *testing.T) {
	ts := newTestServer(t, generator.Echo{})
	admin := testutil.CreateUser(t, ts.store, "admin@example.com", models.RoleAdmin, 10)
	u := testutil.CreateUser(t, ts.store, "u@example.com", models.RoleUser, 10)
	tok := ts.token(admin.ID)
	userPath := "/api/admin/users/" + itoa(u.ID)

	rec := ts.do(http.MethodPatch, userPath+"/credits", tok, map[string]any{"credits": -4}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credits value", errorOf(t, rec))
	rec = ts.do(http.MethodPatch, userPath+"/credits", tok, map[string]any{"credits": "lots"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPatch, userPath+"/credits", tok, map[string]any{"credits": 42}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 42, testutil.Credits(t, ts.store, u.ID))
	rec = ts.do(http.MethodPatch, "/api/admin/users/9999/credits", tok, map[string]any{"credits": 1}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPatch, "/api/admin/users/"+itoa(admin.ID)+"/role", tok, map[string]string{"role": "user"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot remove the last admin", errorOf(t, rec))
	rec = ts.do(http.MethodPatch, userPath+"/role", tok, map[string]string{"role": "superuser"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/admin/users/"+itoa(admin.ID), tok, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete your own account", errorOf(t, rec))

	var users service.UserPage
	rec = ts.do(http.MethodGet, "/api/admin/users?search=u@ex", tok, nil, &users)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, users.Users, 1)
	assert.Equal(t, u.ID, users.Users[0].ID)

	var st models.Stats
	rec = ts.do(http.MethodGet, "/api/admin/stats", tok, nil, &st)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, st.TotalUsers)
	assert.EqualValues(t, 8, st.TotalTemplates)

	var tpl models.Template
	rec = ts.do(http.MethodPost, "/api/admin/templates", tok, map[string]any{
		"name": "Tweet", "content_type": "social", "prompt_template": "Tweet about {{topic}}",
	}, &tpl)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(http.MethodPost, "/api/admin/templates", tok, map[string]any{"name": "Tweet"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPut, "/api/admin/templates/"+itoa(tpl.ID), tok, map[string]any{
		"name": "Tweet", "content_type": "social", "prompt_template": "Tweet about {{topic}}", "is_active": false,
	}, &tpl)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, tpl.IsActive)
	// The admin screen toggles with integers.
	body := map[string]any{"name": "Tweet", "content_type": "social", "prompt_template": "Tweet about {{topic}}"}
	body["is_active"] = 1
	rec = ts.do(http.MethodPut, "/api/admin/templates/"+itoa(tpl.ID), tok, body, &tpl)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, tpl.IsActive)
	body["is_active"] = 0
	rec = ts.do(http.MethodPut, "/api/admin/templates/"+itoa(tpl.ID), tok, body, &tpl)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, tpl.IsActive)
	body["is_active"] = "maybe"
	rec = ts.do(http.MethodPut, "/api/admin/templates/"+itoa(tpl.ID), tok, body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid is_active: expected true, false, 0 or 1", errorOf(t, rec))

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/templates/"+itoa(tpl.ID), tok, nil, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/admin/templates/"+itoa(tpl.ID), tok, nil, nil).Code)

	var setting models.Setting
	rec = ts.do(http.MethodPut, "/api/admin/settings/site_name", tok, map[string]string{"value": "Studio"}, &setting)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "site_name", setting.Key)

	// A demoted admin loses access on the very next request.
	_, err := repository.NewUserRepository(ts.store).SetRole(context.Background(), admin.ID, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/admin/stats", tok, nil, nil).Code)
}

func TestPersistenceErrorIsOpaque(t *testing.T) {
	ts := newTestServer(t, generator.Echo{})
	u := testutil.CreateUser(t, ts.store, "u@example.com", models.RoleUser, 5)
	require.NoError(t, ts.store.Exec(context.Background(), `DROP TABLE generations`))

	rec := ts.do(http.MethodGet, "/api/content/history", ts.token(u.ID), nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Something went wrong!", errorOf(t, rec))
	assert.NotContains(t, rec.Body.String(), "generations")
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
