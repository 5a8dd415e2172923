package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akinalp/tepki/database"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
)

// mongoRoomRepo, üyelik subscriptions koleksiyonunda {rid, u: {_id}} olarak tutulur.
type mongoRoomRepo struct {
	rooms         *mongo.Collection
	subscriptions *mongo.Collection
}

// NewMongoRoomRepo, constructor, interface döner.
func NewMongoRoomRepo(db *mongo.Database) RoomRepository {
	return &mongoRoomRepo{
		rooms:         db.Collection(database.CollRooms),
		subscriptions: db.Collection(database.CollSubscriptions),
	}
}

func (r *mongoRoomRepo) GetByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := r.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room.LastMessage != nil && len(room.LastMessage.Reactions) == 0 {
		room.LastMessage.Reactions = nil
	}
	return &room, nil
}

func (r *mongoRoomRepo) SetReactionsInLastMessage(ctx context.Context, roomID string, reactions models.Reactions) error {
	if len(reactions) == 0 {
		return r.UnsetReactionsInLastMessage(ctx, roomID)
	}
	return updateWhere(ctx, r.rooms,
		bson.M{"_id": roomID, "lastMessage": bson.M{"$exists": true}},
		bson.M{"$set": bson.M{"lastMessage.reactions": reactions}},
		"set last message reactions")
}

func (r *mongoRoomRepo) UnsetReactionsInLastMessage(ctx context.Context, roomID string) error {
	return updateWhere(ctx, r.rooms,
		bson.M{"_id": roomID, "lastMessage": bson.M{"$exists": true}},
		bson.M{"$unset": bson.M{"lastMessage.reactions": 1}},
		"unset last message reactions")
}

func (r *mongoRoomRepo) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	count, err := r.subscriptions.CountDocuments(ctx,
		bson.M{"rid": roomID, "u._id": userID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check room membership: %w", err)
	}
	return count > 0, nil
}
