package directory

import (
	"context"
	"sort"
	"sync"

	"workflow/internal/config"
	apperrors "workflow/pkg/errors"
)

// MemorySource serves users and posts seeded from configuration.
type MemorySource struct {
	mu    sync.RWMutex
	users map[string]User
	posts map[string]Post
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		users: make(map[string]User),
		posts: make(map[string]Post),
	}
}

// NewMemorySourceFromConfig loads the users and posts listed under
// directory in the config file.
func NewMemorySourceFromConfig(cfg config.DirectoryConfig) *MemorySource {
	m := NewMemorySource()
	for _, u := range cfg.Users {
		m.PutUser(User{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email, Roles: u.Roles})
	}
	for _, p := range cfg.Posts {
		m.PutPost(Post{ID: p.ID, Title: p.Title, AuthorID: p.AuthorID, Status: p.Status, Assignees: p.Assignees})
	}
	return m
}

func (m *MemorySource) PutUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MemorySource) PutPost(p Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p
}

func (m *MemorySource) User(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, apperrors.ErrNotFound.WithDetail("user_id", id)
	}
	return u, nil
}

func (m *MemorySource) Post(_ context.Context, id string) (Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return Post{}, apperrors.ErrNotFound.WithDetail("post_id", id)
	}
	return p, nil
}

// UsersWithRole returns matching user ids sorted for stable fan-out order.
func (m *MemorySource) UsersWithRole(_ context.Context, role string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, u := range m.users {
		for _, r := range u.Roles {
			if r == role {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
