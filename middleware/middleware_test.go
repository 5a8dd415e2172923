package middleware

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/tepki/handlers"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/pkg/i18n"
	"github.com/akinalp/tepki/services"
)

func TestMain(m *testing.M) {
	locales, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		panic(err)
	}
	if err := i18n.Load(locales); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubUsers map[string]*models.User

func (s stubUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s stubUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, pkg.ErrNotFound
}

// captureUser, context'e konan kullanıcıyı yakalar.
func captureUser(dst **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst, _ = handlers.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthRequire(t *testing.T) {
	tokens := services.NewTokenService("secret")
	users := stubUsers{
		"u-alice": {ID: "u-alice", Username: "alice", Language: "en"},
		"u-bob":   {ID: "u-bob", Username: "bob"},
	}
	mw := NewAuthMiddleware(tokens, users)

	issue := func(id string) string {
		tok, err := tokens.IssueAccessToken(&models.User{ID: id}, time.Hour)
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name       string
		header     string
		lang       string
		wantStatus int
		wantUser   string
		wantLang   string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer " + issue("u-gone"), wantStatus: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + issue("u-alice"), lang: "tr", wantStatus: http.StatusNoContent, wantUser: "u-alice", wantLang: "en"},
		{name: "language from header", header: "Bearer " + issue("u-bob"), lang: "tr-TR,tr;q=0.9", wantStatus: http.StatusNoContent, wantUser: "u-bob", wantLang: "tr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *models.User
			req := httptest.NewRequest(http.MethodPost, "/api/method/setReaction", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.lang != "" {
				req.Header.Set("Accept-Language", tt.lang)
			}
			rec := httptest.NewRecorder()

			mw.Require(captureUser(&got)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUser == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantUser, got.ID)
			assert.Equal(t, tt.wantLang, got.Language)
		})
	}
}

type stubPermissions struct {
	services.PermissionService
	perms map[string]models.Permission
}

func (s stubPermissions) HasPermission(_ context.Context, userID string, perm models.Permission, _ string) (bool, error) {
	return s.perms[userID].Has(perm), nil
}

func TestPermissionRequire(t *testing.T) {
	mw := NewPermissionMiddleware(stubPermissions{perms: map[string]models.Permission{
		"u-root":  models.PermAll,
		"u-alice": models.PermViewRoom | models.PermReact,
	}})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	serve := func(user *models.User) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/rooms/r1/sync-last-message", nil)
		if user != nil {
			req = req.WithContext(handlers.WithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		mw.Require(models.PermAdmin, ok).ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(&models.User{ID: "u-root"}))
	assert.Equal(t, http.StatusForbidden, serve(&models.User{ID: "u-alice"}))
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
}
