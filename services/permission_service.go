package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
	"github.com/akinalp/tepki/pkg/cache"
	"github.com/akinalp/tepki/repository"
)

// PermissionService, kullanıcı yetkilerini ve oda erişimini çözer.
//
// Etkin yetki = global rollerin ve o odada verilen rollerin permission
// bit'lerinin OR'u. Sonuç (userID, roomID) başına TTL cache'te tutulur.
type PermissionService interface {
	HasPermission(ctx context.Context, userID string, perm models.Permission, roomID string) (bool, error)
	CanAccessRoom(ctx context.Context, room *models.Room, user *models.User) (bool, error)
	CanAccessRoomByID(ctx context.Context, userID, roomID string) (bool, error)
	Invalidate(userID string)
	Close()
}

type permissionService struct {
	roleRepo repository.RoleRepository
	roomRepo repository.RoomRepository
	cache    *cache.TTLCache[string, models.Permission]
}

// NewPermissionService, constructor. ttl 0 ise cache kapalıdır.
func NewPermissionService(roleRepo repository.RoleRepository, roomRepo repository.RoomRepository, ttl time.Duration) PermissionService {
	return &permissionService{
		roleRepo: roleRepo,
		roomRepo: roomRepo,
		cache:    cache.New[string, models.Permission](ttl, 5*time.Minute),
	}
}

func permKey(userID, roomID string) string {
	return userID + ":" + roomID
}

func (s *permissionService) resolve(ctx context.Context, userID, roomID string) (models.Permission, error) {
	return s.cache.GetOrLoad(permKey(userID, roomID), func() (models.Permission, error) {
		roles, err := s.roleRepo.GetForUser(ctx, userID, roomID)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve roles: %w", err)
		}

		var perms models.Permission
		for _, role := range roles {
			perms |= role.Permissions
		}
		return perms, nil
	})
}

func (s *permissionService) HasPermission(ctx context.Context, userID string, perm models.Permission, roomID string) (bool, error) {
	perms, err := s.resolve(ctx, userID, roomID)
	if err != nil {
		return false, err
	}
	return perms.Has(perm), nil
}

// CanAccessRoom, public oda herkese açık; özel grup ve DM üyelik ister.
// Admin yetkisi üyelik kontrolünü atlar.
func (s *permissionService) CanAccessRoom(ctx context.Context, room *models.Room, user *models.User) (bool, error) {
	if !room.RequiresMembership() {
		return true, nil
	}

	admin, err := s.HasPermission(ctx, user.ID, models.PermAdmin, room.ID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}

	member, err := s.roomRepo.IsMember(ctx, room.ID, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}

// CanAccessRoomByID, WS aboneliği gibi sadece id'lerin bilindiği yerler için.
// Olmayan oda false döner.
func (s *permissionService) CanAccessRoomByID(ctx context.Context, userID, roomID string) (bool, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if errors.Is(err, pkg.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.CanAccessRoom(ctx, room, &models.User{ID: userID})
}

// Invalidate, kullanıcının tüm cache'lenmiş yetkilerini siler.
func (s *permissionService) Invalidate(userID string) {
	prefix := userID + ":"
	s.cache.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
}

// Close, cache temizlik goroutine'ini durdurur. Birden fazla çağrılabilir.
func (s *permissionService) Close() {
	s.cache.Close()
}
