// Package main, store seçimi ve repository katmanı başlatma.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/tepki/config"
	"github.com/akinalp/tepki/database"
	"github.com/akinalp/tepki/handlers"
	"github.com/akinalp/tepki/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
type Repositories struct {
	User        repository.UserRepository
	Message     repository.MessageRepository
	Room        repository.RoomRepository
	Role        repository.RoleRepository
	CustomEmoji repository.CustomEmojiRepository
}

// Store, seçilen driver'ın repository'leri ve yaşam döngüsü.
type Store struct {
	Repos  *Repositories
	Health handlers.HealthCheck
	close  func()
}

// Close, alttaki bağlantıyı kapatır.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// openStore, cfg.Database.Driver'a göre SQLite veya MongoDB açar.
func openStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		return openMongoStore(ctx, cfg.Database)
	default:
		return openSQLiteStore(cfg.Database)
	}
}

func openSQLiteStore(cfg config.DatabaseConfig) (*Store, error) {
	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	db, err := database.New(cfg.Path, migrations)
	if err != nil {
		return nil, err
	}

	return &Store{
		Repos: &Repositories{
			User:        repository.NewSQLiteUserRepo(db.Conn),
			Message:     repository.NewSQLiteMessageRepo(db.Conn),
			Room:        repository.NewSQLiteRoomRepo(db.Conn),
			Role:        repository.NewSQLiteRoleRepo(db.Conn),
			CustomEmoji: repository.NewSQLiteCustomEmojiRepo(db.Conn),
		},
		Health: db.Conn.PingContext,
		close: func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Str("component", "database").Msg("failed to close sqlite")
			}
		},
	}, nil
}

func openMongoStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	ms, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	return &Store{
		Repos: &Repositories{
			User:        repository.NewMongoUserRepo(ms.DB),
			Message:     repository.NewMongoMessageRepo(ms.DB),
			Room:        repository.NewMongoRoomRepo(ms.DB),
			Role:        repository.NewMongoRoleRepo(ms.DB),
			CustomEmoji: repository.NewMongoCustomEmojiRepo(ms.DB),
		},
		Health: func(ctx context.Context) error {
			return ms.Client.Ping(ctx, nil)
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ms.Close(ctx); err != nil {
				log.Warn().Err(err).Str("component", "database").Msg("failed to disconnect mongo")
			}
		},
	}, nil
}
