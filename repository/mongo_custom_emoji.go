package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akinalp/tepki/database"
)

type mongoCustomEmojiRepo struct {
	emoji *mongo.Collection
}

// NewMongoCustomEmojiRepo, constructor, interface döner.
func NewMongoCustomEmojiRepo(db *mongo.Database) CustomEmojiRepository {
	return &mongoCustomEmojiRepo{emoji: db.Collection(database.CollCustomEmoji)}
}

// CountByNameOrAlias, aliases bir dizi olduğu için {aliases: name} eleman eşleşmesi yapar.
func (r *mongoCustomEmojiRepo) CountByNameOrAlias(ctx context.Context, name string) (int64, error) {
	count, err := r.emoji.CountDocuments(ctx, bson.M{
		"$or": bson.A{
			bson.M{"name": name},
			bson.M{"aliases": name},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count custom emoji: %w", err)
	}
	return count, nil
}
