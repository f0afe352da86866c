// Package session holds the client's authentication state: who is logged
// in, with which bearer token, and what went wrong last.
//
// A Store is the single source of truth read by the API client, the access
// gate and the dashboard. Readers always receive a Snapshot copied under the
// lock, so a token is never observable without its user or the reverse.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// Status is the authentication state of a session.
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusError          Status = "error"
)

// ErrIncompleteSession is returned by CompleteAuth when the token or the
// user is missing.
var ErrIncompleteSession = errors.New("session: token and user are both required")

// Snapshot is an immutable read of a Store at one instant.
type Snapshot struct {
	Status    Status
	User      *models.User
	Token     string
	LastError string
}

// Authenticated reports whether the snapshot carries a usable identity.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil && s.Token != ""
}

// Role returns the user's role, or "" when anonymous.
func (s Snapshot) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings and transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the clock used to check restored token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

type persistOp int

const (
	persistNone persistOp = iota
	persistSave
	persistDelete
)

// Store owns the session for the lifetime of the process.
type Store struct {
	mu     sync.RWMutex
	snap   Snapshot
	tokens TokenStore

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	order  []int
	nextID int

	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates an anonymous session. tokens may be nil, in which case
// nothing survives the process.
func NewStore(tokens TokenStore, opts ...Option) *Store {
	s := &Store{
		snap:   Snapshot{Status: StatusAnonymous},
		tokens: tokens,
		subs:   make(map[int]func(Snapshot)),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a consistent copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Token returns the bearer token, or "" when not authenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Token
}

// Authenticated reports whether the current session is authenticated.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Authenticated()
}

// BeginAuth marks an authentication attempt in flight and clears the last
// error along with any previous identity.
func (s *Store) BeginAuth() {
	s.update(Snapshot{Status: StatusAuthenticating}, persistNone)
}

// CompleteAuth stores user and token together and marks the session
// authenticated. Nothing changes if either is missing.
func (s *Store) CompleteAuth(user *models.User, token string) error {
	if user == nil || token == "" {
		return ErrIncompleteSession
	}
	u := *user
	s.update(Snapshot{Status: StatusAuthenticated, User: &u, Token: token}, persistSave)
	return nil
}

// FailAuth records a failed attempt. Token and user are discarded.
func (s *Store) FailAuth(message string) {
	s.update(Snapshot{Status: StatusError, LastError: message}, persistDelete)
}

// Clear resets the session to anonymous and forgets the stored token.
// Calling it repeatedly is harmless.
func (s *Store) Clear() {
	s.update(Snapshot{Status: StatusAnonymous}, persistDelete)
}

// Restore returns the token persisted by a previous process. Tokens that
// are JWTs already past their exp claim are deleted instead. The session
// itself is not changed: the caller must re-validate the profile and call
// CompleteAuth.
func (s *Store) Restore() (string, bool) {
	if s.tokens == nil {
		return "", false
	}
	token, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("failed to load stored token", slog.String("error", err.Error()))
		return "", false
	}
	if token == "" {
		return "", false
	}
	if tokenExpired(token, s.now()) {
		s.logger.Debug("stored token expired, discarding")
		if err := s.tokens.Delete(); err != nil {
			s.logger.Warn("failed to delete expired token", slog.String("error", err.Error()))
		}
		return "", false
	}
	return token, true
}

// Subscribe registers fn to be called with the new snapshot after every
// update. Callbacks run synchronously, in registration order, outside the
// store lock. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// update is the single mutation entry point. Persistence happens under the
// lock so the file always matches the last committed snapshot.
func (s *Store) update(next Snapshot, op persistOp) {
	s.mu.Lock()
	prev := s.snap.Status
	s.snap = next
	current := s.snap.clone()
	s.persist(op, next.Token)
	s.mu.Unlock()

	if prev != next.Status {
		s.logger.Debug("session transition",
			slog.String("from", string(prev)),
			slog.String("to", string(next.Status)),
		)
	}
	s.notify(current)
}

func (s *Store) persist(op persistOp, token string) {
	if s.tokens == nil {
		return
	}
	var err error
	switch op {
	case persistSave:
		err = s.tokens.Save(token)
	case persistDelete:
		err = s.tokens.Delete()
	default:
		return
	}
	if err != nil {
		s.logger.Warn("failed to persist session token", slog.String("error", err.Error()))
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}
