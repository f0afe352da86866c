// Package auth drives login, registration, session resume and logout on top
// of the session store.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/Kimutaijeremy/handyproconnect/internal/api"
	"github.com/Kimutaijeremy/handyproconnect/internal/models"
	"github.com/Kimutaijeremy/handyproconnect/internal/session"
)

// DefaultTarget is where a successful login lands when no origin is known.
const DefaultTarget = "/dashboard"

// State is the progress of the current form submission.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// API is the subset of the API client used by the flow.
type API interface {
	Login(ctx context.Context, email, password string) (*models.Token, error)
	ProfileWithToken(ctx context.Context, token string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// OnRegistered sets a hook invoked with the user created by Register.
func OnRegistered(fn func(*models.User)) Option {
	return func(f *Flow) {
		f.onRegistered = fn
	}
}

// Flow authenticates users against the API and records the outcome in the
// session store.
type Flow struct {
	api   API
	store *session.Store

	mu    sync.Mutex
	state State

	logger       *slog.Logger
	onRegistered func(*models.User)
}

// NewFlow creates an idle flow.
func NewFlow(client API, store *session.Store, opts ...Option) *Flow {
	f := &Flow{
		api:    client,
		store:  store,
		state:  StateIdle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the state of the last submission.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Login exchanges credentials for a token, fetches the profile with it and
// only then commits both to the session. It returns the path to continue
// to: from, when it is a usable in-app path, or DefaultTarget.
func (f *Flow) Login(ctx context.Context, email, password, from string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", models.NewValidationError("email", "is required")
	}
	if password == "" {
		return "", models.NewValidationError("password", "is required")
	}

	f.setState(StateSubmitting)
	f.store.BeginAuth()

	token, err := f.api.Login(ctx, email, password)
	if err != nil {
		return "", f.fail("login", err)
	}
	if err := f.authenticate(ctx, token.AccessToken); err != nil {
		return "", err
	}

	f.logger.Info("logged in", slog.String("email", email))
	return Target(from), nil
}

// Register creates an account after checking the request locally. It does
// not log the user in.
func (f *Flow) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f.setState(StateSubmitting)
	user, err := f.api.Register(ctx, req)
	if err != nil {
		f.setState(StateFailed)
		f.logger.Warn("registration failed", slog.String("error", err.Error()))
		return nil, err
	}
	f.setState(StateSucceeded)

	if f.onRegistered != nil {
		f.onRegistered(user)
	}
	return user, nil
}

// Resume restores a session persisted by a previous run. Without a stored
// token it does nothing. The stored token is trusted only after the server
// returns a profile for it.
func (f *Flow) Resume(ctx context.Context) error {
	token, ok := f.store.Restore()
	if !ok {
		return nil
	}

	f.setState(StateSubmitting)
	f.store.BeginAuth()
	if err := f.authenticate(ctx, token); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			f.store.Clear()
		}
		return err
	}
	f.logger.Debug("session resumed")
	return nil
}

// Logout ends the session.
func (f *Flow) Logout() {
	f.store.Clear()
	f.setState(StateIdle)
}

// authenticate fetches the profile for token and commits the pair. Any
// failure discards the token.
func (f *Flow) authenticate(ctx context.Context, token string) error {
	user, err := f.api.ProfileWithToken(ctx, token)
	if err != nil {
		return f.fail("fetch profile", err)
	}
	if err := f.store.CompleteAuth(user, token); err != nil {
		return f.fail("complete login", err)
	}
	f.setState(StateSucceeded)
	return nil
}

func (f *Flow) fail(step string, err error) error {
	f.setState(StateFailed)
	f.store.FailAuth(err.Error())
	f.logger.Warn("authentication failed",
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
	return err
}

// Target returns the path to continue to after login. Paths outside the
// app and the auth pages themselves fall back to DefaultTarget.
func Target(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return DefaultTarget
	}
	switch strings.TrimRight(from, "/") {
	case "", "/login", "/register":
		return DefaultTarget
	}
	return from
}
