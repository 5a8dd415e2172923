package apps

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/tepki/models"
)

func TestLocalBusDeliversInOrder(t *testing.T) {
	bus := NewLocalBus()
	var got []string

	bus.Subscribe(EventPostMessageReacted, func(_ context.Context, p any) error {
		got = append(got, "first:"+p.(*MessageReacted).Reaction)
		return nil
	})
	bus.Subscribe(EventPostMessageReacted, func(_ context.Context, p any) error {
		got = append(got, "second")
		return nil
	})
	bus.Subscribe("other", func(context.Context, any) error {
		t.Fatal("unexpected kind")
		return nil
	})

	err := bus.Publish(context.Background(), EventPostMessageReacted, &MessageReacted{Reaction: ":smile:"})

	require.NoError(t, err)
	assert.Equal(t, []string{"first::smile:", "second"}, got)
}

func TestLocalBusIsolatesFailures(t *testing.T) {
	bus := NewLocalBus()
	called := false

	bus.Subscribe("k", func(context.Context, any) error { panic("boom") })
	bus.Subscribe("k", func(context.Context, any) error { return errors.New("bad") })
	bus.Subscribe("k", func(context.Context, any) error { called = true; return nil })

	err := bus.Publish(context.Background(), "k", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: boom")
	assert.True(t, called)
}

func TestLocalBusWithoutSubscribers(t *testing.T) {
	assert.NoError(t, NewLocalBus().Publish(context.Background(), "nobody", 1))
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func TestNATSBusPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	bus := newNATSBus(pub, "tepki.apps")

	err := bus.Publish(context.Background(), EventPostMessageReacted, &MessageReacted{
		Message:   &models.Message{ID: "m1"},
		User:      &models.User{ID: "u1", Username: "alice"},
		Reaction:  ":smile:",
		IsReacted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "tepki.apps.IPostMessageReacted", pub.subject)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.data, &decoded))
	assert.Equal(t, ":smile:", decoded["reaction"])
	assert.Equal(t, true, decoded["is_reacted"])
}

func TestNATSBusHonoursCancelledContext(t *testing.T) {
	pub := &fakePublisher{}
	bus := newNATSBus(pub, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(ctx, "k", 1)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pub.subject)
	assert.Equal(t, "k", bus.Subject("k"))
}

func TestNATSBusWrapsPublishError(t *testing.T) {
	boom := errors.New("no servers")
	bus := newNATSBus(&fakePublisher{err: boom}, "p")

	err := bus.Publish(context.Background(), "k", 1)

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, bus.Close())
}
