package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/config"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/routes"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   string             `json:"error"`
	Issues  []validation.Issue `json:"issues"`
}

type session struct {
	User  model.Identity `json:"user"`
	Token string         `json:"token"`
}

func newServer(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		AppName:           "Folio",
		AppEnv:            "development",
		AppURL:            "http://localhost:8090",
		DBDriver:          "sqlite",
		DBConnection:      filepath.Join(t.TempDir(), "folio.db") + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)",
		JWTSecret:         "routes-test-secret",
		JWTExpiry:         time.Hour,
		EmailFrom:         "noreply@example.com",
		StorageDriver:     "memory",
		CachePrefix:       "folio:",
		CacheTTL:          time.Minute,
		OrphanGracePeriod: 24 * time.Hour,
	}

	a, err := app.New(cfg, app.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	return routes.SetupRoutes(a)
}

func send(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", browserUA)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func register(t *testing.T, h http.Handler, name, email string) session {
	t.Helper()

	rec := send(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":            name,
		"username":        strings.ToLower(name),
		"email":           email,
		"password":        "Secret123",
		"confirmPassword": "Secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var s session
	env := decode(t, rec, &s)
	require.True(t, env.Success)
	require.NotEmpty(t, s.Token)
	return s
}

func contactBody() map[string]any {
	return map[string]any{
		"email":            "ada@example.com",
		"phone":            "+44 1234",
		"location":         "London",
		"github":           "github.com/ada",
		"availableForWork": true,
	}
}

func TestPortfolio_Empty(t *testing.T) {
	h := newServer(t)

	rec := send(t, h, http.MethodGet, "/api/portfolio", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view service.PortfolioView
	env := decode(t, rec, &view)
	assert.True(t, env.Success)
	assert.Nil(t, view.Owner)
	assert.Nil(t, view.Contact)
	assert.Empty(t, view.Projects)

	rec = send(t, h, http.MethodGet, "/api/resume", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOwnerFlow(t *testing.T) {
	h := newServer(t)

	owner := register(t, h, "Ada", "ada@example.com")
	assert.Equal(t, model.RoleAdmin, owner.User.Role)

	// Publish contact details and see them on the public site.
	rec := send(t, h, http.MethodPut, "/api/dashboard/contact", owner.Token, contactBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(t, h, http.MethodGet, "/api/portfolio", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view service.PortfolioView
	decode(t, rec, &view)
	require.NotNil(t, view.Owner)
	assert.Equal(t, "Ada", view.Owner.Name)
	require.NotNil(t, view.Contact)
	assert.Equal(t, "ada@example.com", view.Contact.Email)
	assert.True(t, view.Contact.AvailableForWork)

	// A visitor sends a hire request.
	rec = send(t, h, http.MethodPost, "/api/messages", "", map[string]string{
		"name":    "Grace",
		"email":   "grace@example.com",
		"subject": "Hiring",
		"message": "We would love to talk about a role.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(t, h, http.MethodGet, "/api/dashboard/messages", owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page service.MessagePage
	decode(t, rec, &page)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Unread)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "Grace", page.Messages[0].Name)

	rec = send(t, h, http.MethodPatch, "/api/dashboard/messages/"+page.Messages[0].ID+"/read", owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(t, h, http.MethodGet, "/api/dashboard/messages", owner.Token, nil)
	decode(t, rec, &page)
	assert.Equal(t, 0, page.Unread)

	// The submit is counted alongside visits.
	rec = send(t, h, http.MethodPost, "/api/analytics/visit", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"counted":true}}`, rec.Body.String())

	rec = send(t, h, http.MethodGet, "/api/dashboard/analytics?days=7", owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary service.AnalyticsSummary
	decode(t, rec, &summary)
	assert.Equal(t, int64(1), summary.Totals.Visitors)
	assert.Equal(t, int64(1), summary.Totals.ContactSubmits)
}

func TestAccessControl(t *testing.T) {
	h := newServer(t)

	owner := register(t, h, "Ada", "ada@example.com")
	visitor := register(t, h, "Grace", "grace@example.com")
	assert.Equal(t, model.RoleUser, visitor.User.Role)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous dashboard", http.MethodGet, "/api/dashboard/contact", "", http.StatusUnauthorized},
		{"anonymous me", http.MethodGet, "/api/me", "", http.StatusUnauthorized},
		{"user dashboard", http.MethodGet, "/api/dashboard/contact", visitor.Token, http.StatusForbidden},
		{"user inbox", http.MethodGet, "/api/dashboard/messages", visitor.Token, http.StatusForbidden},
		{"user me", http.MethodGet, "/api/me", visitor.Token, http.StatusOK},
		{"owner dashboard", http.MethodGet, "/api/dashboard/contact", owner.Token, http.StatusOK},
		{"unknown project", http.MethodGet, "/api/dashboard/projects/missing", owner.Token, http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
		{"bad token", http.MethodGet, "/api/me", "not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(t, h, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestValidationErrors(t *testing.T) {
	h := newServer(t)
	owner := register(t, h, "Ada", "ada@example.com")

	body := contactBody()
	body["email"] = "not-an-email"
	rec := send(t, h, http.MethodPut, "/api/dashboard/contact", owner.Token, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	require.NotEmpty(t, env.Issues)
	assert.Equal(t, "email", env.Issues[0].Field)

	req := httptest.NewRequest(http.MethodPut, "/api/dashboard/contact", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+owner.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env = decode(t, rec, nil)
	require.Len(t, env.Issues, 1)
	assert.Equal(t, "body", env.Issues[0].Field)
}

func TestRegisterConflict(t *testing.T) {
	h := newServer(t)
	register(t, h, "Ada", "ada@example.com")

	rec := send(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":            "Ada Again",
		"username":        "ada2",
		"email":           "ada@example.com",
		"password":        "Secret123",
		"confirmPassword": "Secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestCookieSessionRequiresCSRF(t *testing.T) {
	h := newServer(t)
	owner := register(t, h, "Ada", "ada@example.com")

	// A safe request hands out the csrf cookie.
	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	csrfToken := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, csrfToken)

	authCookie := &http.Cookie{Name: service.AuthCookieName, Value: owner.Token}
	csrfCookie := &http.Cookie{Name: "csrf_token", Value: csrfToken}

	put := func(header string) *httptest.ResponseRecorder {
		b, err := json.Marshal(contactBody())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/api/dashboard/contact", bytes.NewReader(b))
		req.AddCookie(authCookie)
		req.AddCookie(csrfCookie)
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, put("").Code)
	assert.Equal(t, http.StatusForbidden, put("wrong").Code)
	assert.Equal(t, http.StatusOK, put(csrfToken).Code)
}

func TestAvatarUpload(t *testing.T) {
	h := newServer(t)
	owner := register(t, h, "Ada", "ada@example.com")

	content := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+owner.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var asset model.Asset
	decode(t, rec, &asset)
	require.NotEmpty(t, asset.Key)
	assert.True(t, strings.HasPrefix(asset.Key, model.UploadKindAvatar+"/"))
	assert.Equal(t, "http://localhost:8090/files/"+asset.Key, asset.URL)

	rec = send(t, h, http.MethodGet, "/files/"+asset.Key, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, content, rec.Body.Bytes())

	rec = send(t, h, http.MethodPut, "/api/me/avatar", owner.Token, asset)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me model.Identity
	decode(t, rec, &me)
	require.NotNil(t, me.Avatar)
	assert.Equal(t, asset.Key, me.Avatar.Key)

	rec = send(t, h, http.MethodDelete, "/api/me/avatar", owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(t, h, http.MethodGet, "/files/"+asset.Key, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsUnknownKind(t *testing.T) {
	h := newServer(t)
	owner := register(t, h, "Ada", "ada@example.com")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "x.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/banner", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+owner.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec, nil)
	require.Len(t, env.Issues, 1)
	assert.Equal(t, "kind", env.Issues[0].Field)
}

func TestDeleteAccount(t *testing.T) {
	h := newServer(t)
	owner := register(t, h, "Ada", "ada@example.com")

	rec := send(t, h, http.MethodDelete, "/api/me", owner.Token, map[string]string{"confirm": "delete"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, h, http.MethodDelete, "/api/me", owner.Token, map[string]string{"confirm": service.ConfirmDeleteAccount})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.AuthCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	// The token still verifies but names a deleted user.
	rec = send(t, h, http.MethodGet, "/api/me", owner.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(t, h, http.MethodGet, "/api/portfolio", "", nil)
	var view service.PortfolioView
	decode(t, rec, &view)
	assert.Nil(t, view.Owner)
}

func TestAuthRateLimit(t *testing.T) {
	h := newServer(t)

	var last int
	for i := 0; i < 6; i++ {
		rec := send(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "Wrong123",
		})
		last = rec.Code
		if i < 5 {
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
