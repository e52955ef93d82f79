// Package session remembers across restarts whether the user chose to stay
// signed in. The flag is independent of the auth gateway's in-memory session
// and the two can disagree.
package session

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
)

// FlagStore is a persistent boolean key/value store.
type FlagStore interface {
	GetBoolean(ctx context.Context, key string, def bool) (bool, error)
	PutBoolean(ctx context.Context, key string, v bool) error
	Clear(ctx context.Context) error
}

type Manager struct {
	store FlagStore
}

func NewManager(store FlagStore) *Manager {
	return &Manager{store: store}
}

func (m *Manager) IsLoggedIn(ctx context.Context) (bool, error) {
	return m.store.GetBoolean(ctx, common.LoggedInKey, false)
}

func (m *Manager) SetLoggedIn(ctx context.Context, v bool) error {
	return m.store.PutBoolean(ctx, common.LoggedInKey, v)
}

// ClearSession drops every stored key, not only the flag.
func (m *Manager) ClearSession(ctx context.Context) error {
	return m.store.Clear(ctx)
}
