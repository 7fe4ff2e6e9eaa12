package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "workflow/pkg/errors"
)

// PostgresSource reads the users, user_roles, posts and post_assignees
// tables.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) User(ctx context.Context, id string) (User, error) {
	query := `SELECT id, display_name, email FROM users WHERE id = $1`

	var u User
	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.DisplayName, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperrors.ErrNotFound.WithDetail("user_id", id)
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := s.strings(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, id)
	if err != nil {
		return User{}, fmt.Errorf("failed to get user roles: %w", err)
	}
	u.Roles = roles

	return u, nil
}

func (s *PostgresSource) Post(ctx context.Context, id string) (Post, error) {
	query := `SELECT id, title, author_id, status FROM posts WHERE id = $1`

	var p Post
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Title, &p.AuthorID, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, apperrors.ErrNotFound.WithDetail("post_id", id)
	}
	if err != nil {
		return Post{}, fmt.Errorf("failed to get post: %w", err)
	}

	assignees, err := s.strings(ctx, `SELECT user_id FROM post_assignees WHERE post_id = $1 ORDER BY position, user_id`, id)
	if err != nil {
		return Post{}, fmt.Errorf("failed to get post assignees: %w", err)
	}
	p.Assignees = assignees

	return p, nil
}

func (s *PostgresSource) UsersWithRole(ctx context.Context, role string) ([]string, error) {
	ids, err := s.strings(ctx, `SELECT user_id FROM user_roles WHERE role = $1 ORDER BY user_id`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with role: %w", err)
	}
	return ids, nil
}

func (s *PostgresSource) strings(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
