// Package repository, store erişim katmanını tanımlar.
//
// Service katmanı SQL veya Mongo sorgusu yazmaz; buradaki interface'ler
// üzerinden çalışır. Her interface'in iki implementasyonu vardır:
// sqlite_*.go (modernc.org/sqlite) ve mongo_*.go (mongo-driver).
// Hangisinin kullanılacağı DATABASE_DRIVER ile main'de seçilir.
//
// Bulunamayan kayıtlar pkg.ErrNotFound döner.
package repository

import (
	"context"

	"github.com/akinalp/tepki/models"
)

// UserRepository, kullanıcı okuma işlemleri.
// GetByID, kullanıcının global rol id'lerini de (User.Roles) doldurur.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
