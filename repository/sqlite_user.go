package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/tepki/database"
	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
)

type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo, constructor, interface döner.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, username, name, language FROM users WHERE id = ?`, id)
}

func (r *sqliteUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, username, name, language FROM users WHERE username = ?`, username)
}

func (r *sqliteUserRepo) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Name, &user.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := r.globalRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return user, nil
}

// globalRoles, room_id = '' olan rol atamalarının id'leri.
func (r *sqliteUserRepo) globalRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role_id FROM user_roles WHERE user_id = ? AND room_id = '' ORDER BY role_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user role: %w", err)
		}
		roles = append(roles, id)
	}
	return roles, rows.Err()
}
