package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/akinalp/tepki/database"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
)

// Mongo repository testleri gerçek sunucu yerine mtest mock deployment kullanır:
// her komuta sıradaki hazır cevap döner ve gönderilen komut, started event
// üzerinden okunur. Böylece filter ve update dokümanları birebir doğrulanır.

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// updated, UpdateOne'ın sunucuya verdiği n/nModified cevabı.
func updated(n int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: n},
	)
}

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

// nextUpdate, kuyruktaki ilk update komutunun q (filter) ve u (update) dokümanlarını döner.
func nextUpdate(mt *mtest.T, coll string) (filter, update bson.Raw) {
	ev := mt.GetStartedEvent()
	require.NotNil(mt, ev)
	require.Equal(mt, "update", ev.CommandName)
	assert.Equal(mt, coll, ev.Command.Lookup("update").StringValue())

	stmt := ev.Command.Lookup("updates", "0").Document()
	return stmt.Lookup("q").Document(), stmt.Lookup("u").Document()
}

func nextFind(mt *mtest.T, coll string) bson.Raw {
	ev := mt.GetStartedEvent()
	require.NotNil(mt, ev)
	require.Equal(mt, "find", ev.CommandName)
	assert.Equal(mt, coll, ev.Command.Lookup("find").StringValue())
	return ev.Command.Lookup("filter").Document()
}

func sampleReactions() models.Reactions {
	return models.Reactions{":tada:": {Usernames: []string{"alice", "bob"}}}
}

func TestMongoMessageReactions(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("set writes the whole map", func(mt *mtest.T) {
		repo := NewMongoMessageRepo(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, repo.SetReactions(ctx, "m-1", sampleReactions()))

		filter, update := nextUpdate(mt, database.CollMessages)
		assert.Equal(mt, "m-1", filter.Lookup("_id").StringValue())

		var got models.Reactions
		require.NoError(mt, update.Lookup("$set", "reactions").Unmarshal(&got))
		assert.Equal(mt, sampleReactions(), got)
		_, err := update.LookupErr("$unset")
		assert.Error(mt, err)
	})

	mt.Run("empty map unsets the field", func(mt *mtest.T) {
		repo := NewMongoMessageRepo(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, repo.SetReactions(ctx, "m-1", models.Reactions{}))

		_, update := nextUpdate(mt, database.CollMessages)
		_, err := update.LookupErr("$unset", "reactions")
		assert.NoError(mt, err)
		_, err = update.LookupErr("$set")
		assert.Error(mt, err)
	})

	mt.Run("no match is not found", func(mt *mtest.T) {
		repo := NewMongoMessageRepo(mt.DB)
		mt.AddMockResponses(updated(0), updated(0))

		assert.ErrorIs(mt, repo.SetReactions(ctx, "missing", sampleReactions()), pkg.ErrNotFound)
		assert.ErrorIs(mt, repo.UnsetReactions(ctx, "missing"), pkg.ErrNotFound)
	})

	mt.Run("get normalizes empty reactions", func(mt *mtest.T) {
		repo := NewMongoMessageRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, database.CollMessages), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "m-1"},
				{Key: "rid", Value: "r-1"},
				{Key: "msg", Value: "hello"},
				{Key: "reactions", Value: bson.D{}},
			}))

		msg, err := repo.GetByID(ctx, "m-1")
		require.NoError(mt, err)
		assert.Equal(mt, "r-1", msg.RoomID)
		assert.Nil(mt, msg.Reactions)
		assert.Equal(mt, "m-1", nextFind(mt, database.CollMessages).Lookup("_id").StringValue())
	})

	mt.Run("get missing is not found", func(mt *mtest.T) {
		repo := NewMongoMessageRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, database.CollMessages), mtest.FirstBatch))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(mt, err, pkg.ErrNotFound)
	})
}

func TestMongoRoomLastMessageReactions(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("set is guarded by lastMessage $exists", func(mt *mtest.T) {
		repo := NewMongoRoomRepo(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, repo.SetReactionsInLastMessage(ctx, "r-1", sampleReactions()))

		filter, update := nextUpdate(mt, database.CollRooms)
		assert.Equal(mt, "r-1", filter.Lookup("_id").StringValue())
		assert.True(mt, filter.Lookup("lastMessage", "$exists").Boolean())

		var got models.Reactions
		require.NoError(mt, update.Lookup("$set", "lastMessage.reactions").Unmarshal(&got))
		assert.Equal(mt, sampleReactions(), got)
	})

	mt.Run("unset keeps the same guard", func(mt *mtest.T) {
		repo := NewMongoRoomRepo(mt.DB)
		mt.AddMockResponses(updated(1))

		require.NoError(mt, repo.UnsetReactionsInLastMessage(ctx, "r-1"))

		filter, update := nextUpdate(mt, database.CollRooms)
		assert.True(mt, filter.Lookup("lastMessage", "$exists").Boolean())
		_, err := update.LookupErr("$unset", "lastMessage.reactions")
		assert.NoError(mt, err)
	})

	mt.Run("room without last message is not found", func(mt *mtest.T) {
		repo := NewMongoRoomRepo(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repo.SetReactionsInLastMessage(ctx, "r-empty", sampleReactions())
		assert.ErrorIs(mt, err, pkg.ErrNotFound)
	})

	mt.Run("membership counts subscriptions", func(mt *mtest.T) {
		repo := NewMongoRoomRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, database.CollSubscriptions), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(1)}}))

		member, err := repo.IsMember(ctx, "r-1", "u-alice")
		require.NoError(mt, err)
		assert.True(mt, member)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "aggregate", ev.CommandName)
		match := ev.Command.Lookup("pipeline", "0", "$match").Document()
		assert.Equal(mt, "r-1", match.Lookup("rid").StringValue())
		assert.Equal(mt, "u-alice", match.Lookup("u._id").StringValue())
	})
}

func TestMongoCustomEmojiCount(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("matches name or alias", func(mt *mtest.T) {
		repo := NewMongoCustomEmojiRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, database.CollCustomEmoji), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(2)}}))

		count, err := repo.CountByNameOrAlias(context.Background(), "party")
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), count)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, database.CollCustomEmoji, ev.Command.Lookup("aggregate").StringValue())

		or := ev.Command.Lookup("pipeline", "0", "$match", "$or")
		assert.Equal(mt, "party", or.Array().Lookup("0", "name").StringValue())
		assert.Equal(mt, "party", or.Array().Lookup("1", "aliases").StringValue())
	})

	mt.Run("server error is wrapped", func(mt *mtest.T) {
		repo := NewMongoCustomEmojiRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "boom",
		}))

		_, err := repo.CountByNameOrAlias(context.Background(), "party")
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to count custom emoji")
	})
}

func TestMongoRoleGetForUser(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("merges global and room roles", func(mt *mtest.T) {
		repo := NewMongoRoleRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, database.CollUsers), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "u-alice"}, {Key: "roles", Value: bson.A{"user"}}}),
			mtest.CreateCursorResponse(0, ns(mt, database.CollSubscriptions), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "s-1"}, {Key: "roles", Value: bson.A{"moderator"}}}),
			mtest.CreateCursorResponse(0, ns(mt, database.CollRoles), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "moderator"}, {Key: "name", Value: "Moderator"},
					{Key: "permissions", Value: int64(models.PermPostReadOnly | models.PermReact)}},
				bson.D{{Key: "_id", Value: "user"}, {Key: "name", Value: "User"},
					{Key: "permissions", Value: int64(models.PermReact)}}),
		)

		roles, err := repo.GetForUser(ctx, "u-alice", "r-news")
		require.NoError(mt, err)
		require.Len(mt, roles, 2)
		assert.Equal(mt, "moderator", roles[0].ID)
		assert.True(mt, roles[0].Permissions.Has(models.PermPostReadOnly))
		assert.Equal(mt, "user", roles[1].ID)

		assert.Equal(mt, "u-alice", nextFind(mt, database.CollUsers).Lookup("_id").StringValue())

		sub := nextFind(mt, database.CollSubscriptions)
		assert.Equal(mt, "r-news", sub.Lookup("rid").StringValue())
		assert.Equal(mt, "u-alice", sub.Lookup("u._id").StringValue())

		values, err := nextFind(mt, database.CollRoles).Lookup("_id", "$in").Array().Values()
		require.NoError(mt, err)
		ids := make([]string, 0, len(values))
		for _, v := range values {
			ids = append(ids, v.StringValue())
		}
		assert.Equal(mt, []string{"user", "moderator"}, ids)
	})

	mt.Run("no room skips subscriptions", func(mt *mtest.T) {
		repo := NewMongoRoleRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, database.CollUsers), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "u-bob"}, {Key: "roles", Value: bson.A{"user"}}}),
			mtest.CreateCursorResponse(0, ns(mt, database.CollRoles), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "user"}, {Key: "permissions", Value: int64(models.PermReact)}}),
		)

		roles, err := repo.GetForUser(ctx, "u-bob", "")
		require.NoError(mt, err)
		require.Len(mt, roles, 1)

		nextFind(mt, database.CollUsers)
		nextFind(mt, database.CollRoles)
	})

	mt.Run("unknown user has no roles", func(mt *mtest.T) {
		repo := NewMongoRoleRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, database.CollUsers), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(mt, database.CollSubscriptions), mtest.FirstBatch),
		)

		roles, err := repo.GetForUser(ctx, "ghost", "r-news")
		require.NoError(mt, err)
		assert.Empty(mt, roles)
	})
}

func TestMongoUserRepo(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("by username", func(mt *mtest.T) {
		repo := NewMongoUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, database.CollUsers), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "u-bob"}, {Key: "username", Value: "bob"}, {Key: "language", Value: "tr"}}))

		user, err := repo.GetByUsername(ctx, "bob")
		require.NoError(mt, err)
		assert.Equal(mt, "u-bob", user.ID)
		assert.Equal(mt, "tr", user.Language)
		assert.Equal(mt, "bob", nextFind(mt, database.CollUsers).Lookup("username").StringValue())
	})

	mt.Run("missing is not found", func(mt *mtest.T) {
		repo := NewMongoUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, database.CollUsers), mtest.FirstBatch))

		_, err := repo.GetByID(ctx, "ghost")
		assert.ErrorIs(mt, err, pkg.ErrNotFound)
	})
}
