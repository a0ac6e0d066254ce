package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Manager binds a Store to requests through an HttpOnly cookie.
type Manager struct {
	store  Store
	cookie string
}

func NewManager(store Store, cookieName string) *Manager {
	return &Manager{store: store, cookie: cookieName}
}

// Session is the state loaded for one request.
type Session struct {
	ID   string
	Data *Data
}

// Load returns the caller's session, issuing a new id and cookie when the
// request carries none or the stored session has expired.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(m.cookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			data, err := m.store.Load(r.Context(), c.Value)
			if err == nil {
				return &Session{ID: c.Value, Data: data}
			}
			if !errors.Is(err, ErrNoSession) {
				slog.Warn("session load failed, starting fresh", "error", err)
			}
		}
	}

	s := &Session{ID: uuid.NewString(), Data: &Data{}}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Save writes the session back, logging any failure.
func (m *Manager) Save(ctx context.Context, s *Session) {
	if err := m.store.Save(ctx, s.ID, s.Data); err != nil {
		slog.Error("session save failed", "session", s.ID, "error", err)
	}
}
