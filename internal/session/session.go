// Package session keeps per-browser state server side, keyed by an opaque
// cookie. Sessions expire after an idle timeout that every request renews.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ErrNotFound is returned by a Store when the id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// contextKey under which the middleware stores the *Session.
const contextKey = "session"

// Data is what a session holds.
type Data struct {
	UserID      uint64 `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Role        string `json:"role,omitempty"`
	Destination uint64 `json:"destination,omitempty"`
}

// Store persists session data with a time to live.
type Store interface {
	Load(ctx context.Context, id string) (Data, error)
	Save(ctx context.Context, id string, data Data, ttl time.Duration) error
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Session is the request-scoped view of one stored session.
type Session struct {
	id        string
	staleID   string
	data      Data
	isNew     bool
	dirty     bool
	destroyed bool
}

// New returns an empty, unsaved session with a fresh id.
func New() *Session {
	return &Session{id: uuid.NewString(), isNew: true}
}

// ID returns the current session id.
func (s *Session) ID() string { return s.id }

// Data returns a copy of the session contents.
func (s *Session) Data() Data { return s.data }

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool { return s.data.UserID != 0 }

// SignIn stores the user identity and issues a fresh id so a session id
// seen before login cannot be reused after it.
func (s *Session) SignIn(userID uint64, email, fullName, role string) {
	if !s.isNew {
		s.staleID = s.id
	}
	s.id = uuid.NewString()
	s.isNew = true
	s.data.UserID = userID
	s.data.Email = email
	s.data.FullName = fullName
	s.data.Role = role
	s.dirty = true
}

// SetDestination records the building the user is navigating to. Zero
// clears it.
func (s *Session) SetDestination(buildingID uint64) {
	if s.data.Destination == buildingID {
		return
	}
	s.data.Destination = buildingID
	s.dirty = true
}

// Destroy removes the session from the store and expires the cookie.
func (s *Session) Destroy() {
	s.destroyed = true
	s.data = Data{}
}

// FromContext returns the session attached by Middleware, or nil when the
// middleware is not installed on the route.
func FromContext(c echo.Context) *Session {
	s, _ := c.Get(contextKey).(*Session)
	return s
}
