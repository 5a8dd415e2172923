package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/tepki/apps"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/pkg/metrics"
)

var (
	userRole = models.Role{ID: "user", Name: "user", Permissions: models.PermViewRoom | models.PermReact}
	modRole  = models.Role{ID: "moderator", Name: "moderator", Permissions: models.PermViewRoom | models.PermReact | models.PermPostReadOnly}
)

type harness struct {
	store  *memStore
	hub    *recordingHub
	runner *BackgroundRunner
	svc    ReactionService

	mu        sync.Mutex
	added     []ReactionEvent
	removed   []ReactionEvent
	appEvents []*apps.MessageReacted
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	store.users["u-alice"] = &models.User{ID: "u-alice", Username: "alice", Language: "en"}
	store.users["u-bob"] = &models.User{ID: "u-bob", Username: "bob", Language: "tr"}
	store.roles["u-alice:"] = []models.Role{userRole}
	store.roles["u-bob:"] = []models.Role{userRole}
	store.rooms["r1"] = &models.Room{ID: "r1", Type: models.RoomTypePublic, LastMessage: &models.Message{ID: "m1", RoomID: "r1"}}
	store.messages["m0"] = &models.Message{ID: "m0", RoomID: "r1", Msg: "older"}
	store.messages["m1"] = &models.Message{ID: "m1", RoomID: "r1", Msg: "latest"}
	store.customEmoji["party_parrot"] = true

	h := &harness{store: store, hub: &recordingHub{}}

	m := metrics.New(prometheus.NewRegistry())
	h.runner = NewBackgroundRunner(m, time.Second)
	rooms := fakeRooms{store}
	msgs := fakeMessages{store}

	hooks := NewReactionHooks(h.runner)
	hooks.OnAdded(func(_ context.Context, ev ReactionEvent) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.added = append(h.added, ev)
		return nil
	})
	hooks.OnRemoved(func(_ context.Context, ev ReactionEvent) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.removed = append(h.removed, ev)
		return nil
	})

	bus := apps.NewLocalBus()
	bus.Subscribe(apps.EventPostMessageReacted, func(_ context.Context, p any) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.appEvents = append(h.appEvents, p.(*apps.MessageReacted))
		return nil
	})

	emoji := NewEmojiService(map[string]bool{":smile:": true, ":tada:": true}, fakeCustomEmoji{store}, time.Minute)
	permissions := NewPermissionService(fakeRoles{store}, rooms, 0)
	t.Cleanup(emoji.Close)
	t.Cleanup(permissions.Close)

	h.svc = NewReactionService(ReactionDeps{
		Users:       fakeUsers{store},
		Messages:    msgs,
		Rooms:       rooms,
		Emoji:       emoji,
		Permissions: permissions,
		Hooks:       hooks,
		Apps:        bus,
		Notifier:    NewChangeNotifier(rooms, msgs, h.hub, h.runner),
		Syncer:      NewLastMessageSyncer(rooms, msgs),
		Runner:      h.runner,
		Metrics:     m,
	})
	return h
}

func (h *harness) set(t *testing.T, userID, reaction, messageID string, shouldReact *bool) (models.ReactionOutcome, error) {
	t.Helper()
	out, err := h.svc.SetReaction(context.Background(), userID, reaction, messageID, shouldReact)
	h.runner.Wait()
	return out, err
}

func boolPtr(b bool) *bool { return &b }

func TestReactEndToEndAdd(t *testing.T) {
	h := newHarness(t)

	out, err := h.set(t, "u-alice", "smile", "m1", nil)

	require.NoError(t, err)
	assert.Equal(t, models.ReactionAdded, out)

	msg := h.store.message("m1")
	assert.Equal(t, models.Reactions{":smile:": {Usernames: []string{"alice"}}}, msg.Reactions)
	assert.Equal(t, msg.Reactions, h.store.room("r1").LastMessage.Reactions)
	assert.Equal(t, []string{"message.set", "room.set"}, h.store.Writes())

	assert.ElementsMatch(t, []string{"room:r1 room_changed", "room:r1 message_changed"}, h.hub.ops())

	require.Len(t, h.added, 1)
	assert.True(t, h.added[0].ShouldReact)
	assert.Equal(t, ":smile:", h.added[0].Reaction)
	assert.Nil(t, h.added[0].OldMessage)
	assert.Empty(t, h.removed)

	require.Len(t, h.appEvents, 1)
	assert.True(t, h.appEvents[0].IsReacted)
	assert.Equal(t, "alice", h.appEvents[0].User.Username)
}

func TestReactEndToEndRemoveWithExplicitFalse(t *testing.T) {
	h := newHarness(t)
	_, err := h.set(t, "u-alice", ":smile:", "m1", nil)
	require.NoError(t, err)

	out, err := h.set(t, "u-alice", ":smile:", "m1", boolPtr(false))

	require.NoError(t, err)
	assert.Equal(t, models.ReactionRemoved, out)
	assert.Nil(t, h.store.message("m1").Reactions)
	assert.Nil(t, h.store.room("r1").LastMessage.Reactions)
	assert.Equal(t, []string{"message.set", "room.set", "message.unset", "room.unset"}, h.store.Writes())

	require.Len(t, h.removed, 1)
	ev := h.removed[0]
	assert.False(t, ev.ShouldReact)
	assert.Nil(t, ev.Message.Reactions)
	require.NotNil(t, ev.OldMessage)
	assert.Equal(t, []string{"alice"}, ev.OldMessage.Reactions[":smile:"].Usernames)

	require.Len(t, h.appEvents, 2)
	assert.False(t, h.appEvents[1].IsReacted)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	h := newHarness(t)
	h.store.messages["m0"].Reactions = models.Reactions{":tada:": {Usernames: []string{"bob"}}}

	first, err := h.set(t, "u-alice", "smile", "m0", nil)
	require.NoError(t, err)
	second, err := h.set(t, "u-alice", "smile", "m0", nil)
	require.NoError(t, err)

	assert.Equal(t, models.ReactionAdded, first)
	assert.Equal(t, models.ReactionRemoved, second)
	assert.Equal(t, models.Reactions{":tada:": {Usernames: []string{"bob"}}}, h.store.message("m0").Reactions)
	assert.Equal(t, []string{"message.set", "message.set"}, h.store.Writes())
}

func TestDesiredStateEqualToCurrentIsNoop(t *testing.T) {
	h := newHarness(t)
	h.store.messages["m1"].Reactions = models.Reactions{":smile:": {Usernames: []string{"alice"}}}

	out, err := h.set(t, "u-alice", "smile", "m1", boolPtr(true))
	require.NoError(t, err)
	assert.Equal(t, models.ReactionUnchanged, out)

	out, err = h.set(t, "u-bob", "smile", "m1", boolPtr(false))
	require.NoError(t, err)
	assert.Equal(t, models.ReactionUnchanged, out)

	assert.Empty(t, h.store.Writes())
	assert.Empty(t, h.hub.ops())
	assert.Empty(t, h.added)
	assert.Empty(t, h.removed)
	assert.Empty(t, h.appEvents)
}

func TestRemovingLastUsernameDeletesOnlyThatKey(t *testing.T) {
	h := newHarness(t)
	h.store.messages["m0"].Reactions = models.Reactions{
		":smile:": {Usernames: []string{"alice", "bob"}},
		":tada:":  {Usernames: []string{"alice"}},
	}

	_, err := h.set(t, "u-alice", "tada", "m0", nil)
	require.NoError(t, err)
	assert.Equal(t, models.Reactions{":smile:": {Usernames: []string{"alice", "bob"}}}, h.store.message("m0").Reactions)

	_, err = h.set(t, "u-alice", "smile", "m0", nil)
	require.NoError(t, err)
	assert.Equal(t, models.Reactions{":smile:": {Usernames: []string{"bob"}}}, h.store.message("m0").Reactions)

	_, err = h.set(t, "u-bob", "smile", "m0", nil)
	require.NoError(t, err)
	assert.Nil(t, h.store.message("m0").Reactions)
	assert.Equal(t, "message.unset", h.store.Writes()[2])
}

func TestUnknownEmojiFailsBeforeAnyOtherCheck(t *testing.T) {
	h := newHarness(t)
	h.store.rooms["r1"].Muted = []string{"alice"}

	for _, userID := range []string{"u-alice", "u-ghost"} {
		_, err := h.set(t, userID, "not_an_emoji", "m1", nil)

		var invalid *pkg.InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, pkg.ReasonUnknownEmoji, invalid.Reason)
		assert.ErrorIs(t, err, pkg.ErrBadRequest)
	}
	assert.Empty(t, h.store.Writes())
}

func TestCustomEmojiByNameOrAlias(t *testing.T) {
	h := newHarness(t)

	out, err := h.set(t, "u-alice", ":party_parrot:", "m0", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionAdded, out)
	assert.True(t, h.store.message("m0").HasReacted(":party_parrot:", "alice"))
}

func TestMutedUserIsNotAllowed(t *testing.T) {
	h := newHarness(t)
	h.store.rooms["r1"].Muted = []string{"bob"}

	_, err := h.set(t, "u-bob", "smile", "m1", nil)

	var na *pkg.NotAllowedError
	require.ErrorAs(t, err, &na)
	assert.Equal(t, pkg.ReasonMuted, na.Reason)
	assert.Equal(t, "r1", na.RoomID)
	assert.Equal(t, "Susturuldunuz, bu odada tepki veremezsiniz", na.Message)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
	assert.Empty(t, h.store.Writes())
	assert.Empty(t, h.hub.ops())
}

func TestReadOnlyRoom(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(h *harness)
		wantErr bool
	}{
		{name: "blocked", prepare: func(*harness) {}, wantErr: true},
		{name: "react when read only", prepare: func(h *harness) { h.store.rooms["r1"].ReactWhenReadOnly = true }},
		{name: "unmuted override", prepare: func(h *harness) { h.store.rooms["r1"].Unmuted = []string{"alice"} }},
		{name: "room scoped post-readonly role", prepare: func(h *harness) { h.store.roles["u-alice:r1"] = []models.Role{modRole} }},
		{name: "role in other room does not count", prepare: func(h *harness) { h.store.roles["u-alice:r2"] = []models.Role{modRole} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.store.rooms["r1"].ReadOnly = true
			tt.prepare(h)

			out, err := h.set(t, "u-alice", "smile", "m1", nil)

			if tt.wantErr {
				var na *pkg.NotAllowedError
				require.ErrorAs(t, err, &na)
				assert.Equal(t, pkg.ReasonReadOnly, na.Reason)
				assert.Equal(t, "r1", na.RoomID)
				assert.Empty(t, h.store.Writes())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.ReactionAdded, out)
		})
	}
}

func TestPrivateRoomRequiresMembership(t *testing.T) {
	h := newHarness(t)
	h.store.rooms["r1"].Type = models.RoomTypePrivate

	_, err := h.set(t, "u-alice", "smile", "m1", nil)
	var na *pkg.NotAllowedError
	require.ErrorAs(t, err, &na)
	assert.Equal(t, pkg.ReasonNotAuthorized, na.Reason)
	assert.Equal(t, "r1", na.RoomID)

	h.store.members["r1/u-alice"] = true
	out, err := h.set(t, "u-alice", "smile", "m1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionAdded, out)
}

func TestMissingEntities(t *testing.T) {
	h := newHarness(t)
	h.store.messages["orphan"] = &models.Message{ID: "orphan", RoomID: "gone"}

	cases := map[string]struct{ user, message string }{
		pkg.ReasonInvalidUser:    {"u-ghost", "m1"},
		pkg.ReasonInvalidMessage: {"u-alice", "nope"},
		pkg.ReasonInvalidRoom:    {"u-alice", "orphan"},
	}
	for reason, c := range cases {
		_, err := h.set(t, c.user, "smile", c.message, nil)
		assert.Equal(t, reason, pkg.ReasonOf(err))
		assert.ErrorIs(t, err, pkg.ErrBadRequest)
	}
}

func TestLastMessageWriteFailureIsRepairedInBackground(t *testing.T) {
	h := newHarness(t)
	h.store.failRoomWrites = 1

	out, err := h.set(t, "u-alice", "smile", "m1", nil)

	require.NoError(t, err)
	assert.Equal(t, models.ReactionAdded, out)
	assert.Equal(t, []string{"message.set", "room.set"}, h.store.Writes())
	assert.Equal(t, h.store.message("m1").Reactions, h.store.room("r1").LastMessage.Reactions)
}

func TestMessageWriteFailureFailsToggle(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("disk full")
	h.store.failMessageWrite = boom

	_, err := h.set(t, "u-alice", "smile", "m1", nil)

	require.ErrorIs(t, err, boom)
	assert.Empty(t, h.added)
	assert.Empty(t, h.hub.ops())
	assert.Nil(t, h.store.room("r1").LastMessage.Reactions)
}

func TestSideEffectFailuresNeverFailToggle(t *testing.T) {
	h := newHarness(t)
	hooks := NewReactionHooks(h.runner)
	hooks.OnAdded(func(context.Context, ReactionEvent) error { panic("hook exploded") })
	bus := apps.NewLocalBus()
	bus.Subscribe(apps.EventPostMessageReacted, func(context.Context, any) error { return errors.New("app down") })

	svc := h.svc.(*reactionService)
	svc.Hooks = hooks
	svc.Apps = bus

	out, err := h.set(t, "u-alice", "smile", "m0", nil)

	require.NoError(t, err)
	assert.Equal(t, models.ReactionAdded, out)
}
