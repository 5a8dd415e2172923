package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo collection isimleri.
const (
	CollMessages      = "messages"
	CollRooms         = "rooms"
	CollUsers         = "users"
	CollSubscriptions = "subscriptions"
	CollCustomEmoji   = "custom_emoji"
	CollRoles         = "roles"
)

// MongoStore, Mongo client'ı ve seçili veritabanını taşır.
type MongoStore struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// ConnectMongo, uri'ye bağlanır, ping atar ve index'leri garanti eder.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	store := &MongoStore{Client: client, DB: client.Database(dbName)}
	if err := store.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Str("component", "database").Str("db", dbName).Msg("mongo connected")
	return store, nil
}

// EnsureIndexes, lookup'ların kullandığı index'leri oluşturur. Idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollSubscriptions: {
			{Keys: bson.D{{Key: "rid", Value: 1}, {Key: "u._id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollCustomEmoji: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "aliases", Value: 1}}},
		},
		CollUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range indexes {
		if _, err := s.DB.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Close, client bağlantısını kapatır.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
