// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware bir func(next http.Handler) http.Handler'dır; kendi kontrolünü
// yapar, geçerse next'i çağırır, geçmezse request burada durur.
//
//	Auth → Permission → Handler
package middleware

import (
	"net/http"
	"strings"

	"github.com/akinalp/tepki/handlers"
	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/pkg/i18n"
	"github.com/akinalp/tepki/repository"
	"github.com/akinalp/tepki/services"
)

// AuthMiddleware, JWT token doğrulama middleware'ı.
type AuthMiddleware struct {
	tokenService services.TokenService
	userRepo     repository.UserRepository
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(tokenService services.TokenService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		userRepo:     userRepo,
	}
}

// Require, JWT token zorunlu kılan middleware.
//
// Header formatı: Authorization: Bearer <token>
//
// Token geçerliyse kullanıcı store'dan yüklenip context'e konur.
// Kullanıcının dili kayıtlı değilse Accept-Language'den seçilir.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := i18n.NewLocalizer(i18n.DetectLanguage(r.Header.Get("Accept-Language")))

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, loc.T("auth.missingToken"))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, loc.T("auth.invalidToken"))
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, loc.T("auth.invalidToken"))
			return
		}

		// token geçerli ama kullanıcı silinmiş olabilir
		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}

		if user.Language == "" {
			user.Language = loc.Lang()
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
	})
}
