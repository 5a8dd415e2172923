package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TxQuerier, hem *sql.DB hem *sql.Tx tarafından karşılanır.
// SQLite repository'leri bunu alır; böylece aynı repository bir transaction
// içinde de çalıştırılabilir.
type TxQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx, fn'i tek bir transaction içinde çalıştırır.
// fn nil dönerse COMMIT, error dönerse ROLLBACK yapılır. Panic durumunda
// rollback yapılıp panic yeniden fırlatılır.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return
}
