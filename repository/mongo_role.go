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
)

// mongoRoleRepo, global rol id'leri users.roles, oda rolleri subscriptions.roles
// alanındadır; rol tanımları roles koleksiyonundan çözülür.
type mongoRoleRepo struct {
	users         *mongo.Collection
	subscriptions *mongo.Collection
	roles         *mongo.Collection
}

// NewMongoRoleRepo, constructor, interface döner.
func NewMongoRoleRepo(db *mongo.Database) RoleRepository {
	return &mongoRoleRepo{
		users:         db.Collection(database.CollUsers),
		subscriptions: db.Collection(database.CollSubscriptions),
		roles:         db.Collection(database.CollRoles),
	}
}

type roleRefs struct {
	Roles []string `bson:"roles"`
}

func (r *mongoRoleRepo) GetForUser(ctx context.Context, userID, roomID string) ([]models.Role, error) {
	ids, err := r.roleIDs(ctx, r.users, bson.M{"_id": userID})
	if err != nil {
		return nil, err
	}

	if roomID != "" {
		roomIDs, err := r.roleIDs(ctx, r.subscriptions, bson.M{"rid": roomID, "u._id": userID})
		if err != nil {
			return nil, err
		}
		ids = append(ids, roomIDs...)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.roles.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}

	var roles []models.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, fmt.Errorf("failed to decode roles: %w", err)
	}
	return roles, nil
}

func (r *mongoRoleRepo) roleIDs(ctx context.Context, coll *mongo.Collection, filter bson.M) ([]string, error) {
	var refs roleRefs
	err := coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"roles": 1})).Decode(&refs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role refs from %s: %w", coll.Name(), err)
	}
	return refs.Roles, nil
}
