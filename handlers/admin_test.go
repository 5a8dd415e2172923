package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/services"
)

type fakeSyncer struct {
	synced []string
}

func (f *fakeSyncer) Sync(_ context.Context, roomID string) error {
	if roomID == "r-gone" {
		return fmt.Errorf("sync last message: load room: %w", pkg.ErrNotFound)
	}
	f.synced = append(f.synced, roomID)
	return nil
}

// fakePermissions, sadece Invalidate çağrılarını kaydeder.
type fakePermissions struct {
	services.PermissionService
	invalidated []string
}

func (f *fakePermissions) Invalidate(userID string) {
	f.invalidated = append(f.invalidated, userID)
}

func TestSyncLastMessage(t *testing.T) {
	syncer := &fakeSyncer{}
	h := NewAdminHandler(syncer, &fakePermissions{})
	pattern := "POST /api/admin/rooms/{roomId}/sync-last-message"

	rec, resp := doRequest(t, h.SyncLastMessage, pattern, "/api/admin/rooms/r1/sync-last-message", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"room_id": "r1"}, resp.Data)
	assert.Equal(t, []string{"r1"}, syncer.synced)

	rec, _ = doRequest(t, h.SyncLastMessage, pattern, "/api/admin/rooms/r-gone/sync-last-message", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidatePermissions(t *testing.T) {
	perms := &fakePermissions{}
	h := NewAdminHandler(&fakeSyncer{}, perms)
	pattern := "POST /api/admin/users/{userId}/invalidate-permissions"

	rec, resp := doRequest(t, h.InvalidatePermissions, pattern, "/api/admin/users/u-alice/invalidate-permissions", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]any{"user_id": "u-alice"}, resp.Data)
	assert.Equal(t, []string{"u-alice"}, perms.invalidated)
}
