package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akinalp/tepki/database"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
)

type mongoMessageRepo struct {
	messages *mongo.Collection
}

// NewMongoMessageRepo, constructor, interface döner.
func NewMongoMessageRepo(db *mongo.Database) MessageRepository {
	return &mongoMessageRepo{messages: db.Collection(database.CollMessages)}
}

func (r *mongoMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := r.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if len(msg.Reactions) == 0 {
		msg.Reactions = nil
	}
	return &msg, nil
}

func (r *mongoMessageRepo) SetReactions(ctx context.Context, messageID string, reactions models.Reactions) error {
	if len(reactions) == 0 {
		return r.UnsetReactions(ctx, messageID)
	}
	return updateOne(ctx, r.messages, messageID, bson.M{"$set": bson.M{"reactions": reactions}}, "set reactions")
}

func (r *mongoMessageRepo) UnsetReactions(ctx context.Context, messageID string) error {
	return updateOne(ctx, r.messages, messageID, bson.M{"$unset": bson.M{"reactions": 1}}, "unset reactions")
}

// updateOne, _id ile tek doküman günceller; eşleşme yoksa pkg.ErrNotFound.
func updateOne(ctx context.Context, coll *mongo.Collection, id string, update bson.M, op string) error {
	return updateWhere(ctx, coll, bson.M{"_id": id}, update, op)
}

func updateWhere(ctx context.Context, coll *mongo.Collection, filter, update bson.M, op string) error {
	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if result.MatchedCount == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
