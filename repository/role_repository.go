package repository

import (
	"context"

	"github.com/akinalp/tepki/models"
)

// RoleRepository, kullanıcının etkin rollerini çözer.
//
// GetForUser global rollerle birlikte roomID'ye özel verilmiş rolleri döner.
// roomID boşsa sadece global roller döner.
type RoleRepository interface {
	GetForUser(ctx context.Context, userID, roomID string) ([]models.Role, error)
}
