package main

import (
	"context"
	"fmt"
	"time"

	"github.com/akinalp/tepki/config"
	"github.com/akinalp/tepki/services"
)

// issueToken, -issue-token bayrağı: kullanıcı için access token basar.
// Kimlik sağlayıcı olmayan geliştirme ortamları için.
func issueToken(ctx context.Context, cfg *config.Config, repos *Repositories, userID string, ttl time.Duration) error {
	user, err := repos.User.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}

	token, err := services.NewTokenService(cfg.JWT.Secret).IssueAccessToken(user, ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
