package store

import (
	"context"
	"database/sql"
	"fmt"

	"workflow/internal/constants"
)

// PostgresBackend stores one row per record in user_notifications. The
// bigserial id gives append order.
type PostgresBackend struct {
	db      *sql.DB
	metaKey string
}

func NewPostgresBackend(db *sql.DB, metaKey string) *PostgresBackend {
	if metaKey == "" {
		metaKey = constants.NotificationMetaKey
	}
	return &PostgresBackend{db: db, metaKey: metaKey}
}

func (p *PostgresBackend) Name() string {
	return constants.StoreBackendPostgres
}

func (p *PostgresBackend) Append(ctx context.Context, userID string, value []byte) error {
	query := `
		INSERT INTO user_notifications (user_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
	`

	if _, err := p.db.ExecContext(ctx, query, userID, p.metaKey, string(value)); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Values(ctx context.Context, userID string) ([][]byte, error) {
	query := `
		SELECT meta_value
		FROM user_notifications
		WHERE user_id = $1 AND meta_key = $2
		ORDER BY id ASC
	`

	rows, err := p.db.QueryContext(ctx, query, userID, p.metaKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, []byte(value))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return out, nil
}
