package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/tepki/database"
	"github.com/akinalp/tepki/models"
)

type sqliteRoleRepo struct {
	db database.TxQuerier
}

// NewSQLiteRoleRepo, constructor, interface döner.
func NewSQLiteRoleRepo(db database.TxQuerier) RoleRepository {
	return &sqliteRoleRepo{db: db}
}

// GetForUser, room_id = '' satırları global, eşleşen room_id satırları oda rolüdür.
func (r *sqliteRoleRepo) GetForUser(ctx context.Context, userID, roomID string) ([]models.Role, error) {
	query := `
		SELECT DISTINCT r.id, r.name, r.permissions
		FROM roles r
		INNER JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ? AND (ur.room_id = '' OR ur.room_id = ?)
		ORDER BY r.id`

	rows, err := r.db.QueryContext(ctx, query, userID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for user: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Permissions); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
