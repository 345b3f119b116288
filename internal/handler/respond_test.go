package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

func TestRespondError(t *testing.T) {
	user := &model.User{ID: "u1", Role: model.RoleUser}

	tests := []struct {
		name     string
		err      error
		user     *model.User
		wantCode int
		wantBody string
	}{
		{
			name:     "validation",
			err:      validation.Single("email", "invalid email address"),
			wantCode: http.StatusBadRequest,
			wantBody: `{"success":false,"error":"invalid email address","issues":[{"field":"email","message":"invalid email address"}]}`,
		},
		{
			name:     "unauthorized anonymous",
			err:      &service.Error{Kind: service.ErrUnauthorized, Message: "sign in to continue"},
			wantCode: http.StatusUnauthorized,
			wantBody: `{"success":false,"error":"sign in to continue"}`,
		},
		{
			name:     "unauthorized signed in",
			err:      &service.Error{Kind: service.ErrUnauthorized, Message: "admins only"},
			user:     user,
			wantCode: http.StatusForbidden,
			wantBody: `{"success":false,"error":"admins only"}`,
		},
		{
			name:     "not found",
			err:      &service.Error{Kind: service.ErrNotFound, Message: "project not found"},
			wantCode: http.StatusNotFound,
			wantBody: `{"success":false,"error":"project not found"}`,
		},
		{
			name:     "conflict wrapped",
			err:      fmt.Errorf("register: %w", &service.Error{Kind: service.ErrConflict, Message: "email already in use"}),
			wantCode: http.StatusConflict,
			wantBody: `{"success":false,"error":"email already in use"}`,
		},
		{
			name:     "upstream",
			err:      &service.Error{Kind: service.ErrUpstream, Message: "could not delete the stored file, nothing was changed"},
			wantCode: http.StatusBadGateway,
			wantBody: `{"success":false,"error":"could not delete the stored file, nothing was changed"}`,
		},
		{
			name:     "unclassified",
			err:      errors.New("disk on fire"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"success":false,"error":"something went wrong, please try again"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			if tt.user != nil {
				req = req.WithContext(ctxkeys.WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()

			respondError(rec, req, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantMsg string
	}{
		{name: "valid", body: `{"name":"Ada"}`, want: "Ada"},
		{name: "empty", body: "", wantMsg: "request body is required"},
		{name: "malformed", body: `{"name":`, wantMsg: "request body must be valid JSON"},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", maxJSONBody) + `"}`, wantMsg: "request body is too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var p payload
			err := decodeJSON(rec, req, &p)

			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, p.Name)
				return
			}

			ve, ok := validation.AsError(err)
			require.True(t, ok)
			require.Len(t, ve.Issues, 1)
			assert.Equal(t, "body", ve.Issues[0].Field)
			assert.Equal(t, tt.wantMsg, ve.Issues[0].Message)
		})
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x", nil)

	assert.Equal(t, 3, queryInt(req, "page", 1))
	assert.Equal(t, 1, queryInt(req, "bad", 1))
	assert.Equal(t, 20, queryInt(req, "missing", 20))
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"not found"}`, rec.Body.String())
}
