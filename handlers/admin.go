package handlers

import (
	"net/http"

	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/services"
)

// AdminHandler, operasyonel bakım endpoint'leri.
type AdminHandler struct {
	syncer      services.LastMessageSyncer
	permissions services.PermissionService
}

// NewAdminHandler, constructor.
func NewAdminHandler(syncer services.LastMessageSyncer, permissions services.PermissionService) *AdminHandler {
	return &AdminHandler{syncer: syncer, permissions: permissions}
}

// SyncLastMessage godoc
// POST /api/admin/rooms/{roomId}/sync-last-message
//
// Odanın lastMessage.reactions kopyasını canonical mesajdan yeniden türetir.
// Arka plan senkronu kaçırıldığında elle onarım için.
func (h *AdminHandler) SyncLastMessage(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")

	if err := h.syncer.Sync(r.Context(), roomID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"room_id": roomID})
}

// InvalidatePermissions godoc
// POST /api/admin/users/{userId}/invalidate-permissions
//
// Kullanıcının cache'lenmiş yetkilerini (global ve oda bazlı) siler.
// Rol ataması DB'de değiştiğinde TTL dolmasını beklemeden yeni yetkiler
// bir sonraki istekte okunur.
func (h *AdminHandler) InvalidatePermissions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	h.permissions.Invalidate(userID)
	pkg.JSON(w, http.StatusOK, map[string]string{"user_id": userID})
}
