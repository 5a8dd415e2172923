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

type mongoUserRepo struct {
	users *mongo.Collection
}

// NewMongoUserRepo, constructor, interface döner.
func NewMongoUserRepo(db *mongo.Database) UserRepository {
	return &mongoUserRepo{users: db.Collection(database.CollUsers)}
}

func (r *mongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
