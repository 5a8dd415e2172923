// Package handlers, HTTP endpoint'lerini barındırır.
//
// Thin handler pattern: handler'lar sadece request parse eder ve yanıt yazar.
// İş mantığı services paketindedir.
package handlers

import (
	"context"

	"github.com/akinalp/tepki/models"
)

// contextKey, context'te değer taşımak için özel key tipi.
// String key kullanmak başka paketlerle çakışabilir.
type contextKey string

// UserContextKey, AuthMiddleware'ın doğruladığı kullanıcıyı taşır.
const UserContextKey contextKey = "user"

// WithUser, kullanıcıyı context'e ekler.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext, context'teki kullanıcıyı döner.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}
