package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
	"github.com/Kimutaijeremy/handyproconnect/internal/session"
)

var (
	// ErrNoSession is returned when the dashboard is used without an
	// authenticated session.
	ErrNoSession = errors.New("dashboard: not authenticated")
	// ErrNotLoaded is returned by View before the first successful refresh
	// for the current user.
	ErrNotLoaded = errors.New("dashboard: not loaded")
	// ErrWrongRole is returned when the user's role cannot perform an action.
	ErrWrongRole = errors.New("dashboard: not available for this role")
)

// Source is the API surface the dashboard reads and writes.
type Source interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
	ListOpenJobs(ctx context.Context) ([]models.Job, error)
	GetJob(ctx context.Context, jobID int64) (*models.Job, error)
	CreateJob(ctx context.Context, draft models.JobDraft) (*models.Job, error)
	ListQuotes(ctx context.Context) ([]models.Quote, error)
	CreateQuote(ctx context.Context, draft models.QuoteDraft) (*models.Quote, error)
	DecideQuote(ctx context.Context, quoteID int64, decision models.QuoteDecision) (*models.Quote, error)
	ListServices(ctx context.Context) ([]models.Service, error)
}

// Option configures a ViewModel.
type Option func(*ViewModel)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(vm *ViewModel) {
		vm.logger = logger
	}
}

// WithClock overrides the clock stamped on snapshots.
func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) {
		vm.now = now
	}
}

// ViewModel owns the dashboard snapshot. Collections are never patched
// locally: every mutation is followed by a full refresh.
type ViewModel struct {
	source Source
	store  *session.Store

	mu        sync.Mutex
	snap      Snapshot
	loaded    bool
	started   uint64
	committed uint64

	logger *slog.Logger
	now    func() time.Time
}

// NewViewModel creates an empty view model.
func NewViewModel(source Source, store *session.Store, opts ...Option) *ViewModel {
	vm := &ViewModel{
		source: source,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

func (vm *ViewModel) user() (models.User, error) {
	snap := vm.store.Snapshot()
	if !snap.Authenticated() {
		return models.User{}, ErrNoSession
	}
	return *snap.User, nil
}

// Refresh fetches jobs, quotes and services concurrently and replaces the
// snapshot only if all three succeed. A refresh whose context has ended, or
// that was overtaken by a later refresh, is dropped.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	user, err := vm.user()
	if err != nil {
		return err
	}

	vm.mu.Lock()
	vm.started++
	seq := vm.started
	vm.mu.Unlock()

	var (
		jobs     []models.Job
		quotes   []models.Quote
		services []models.Service
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = vm.source.ListJobs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		quotes, err = vm.source.ListQuotes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		services, err = vm.source.ListServices(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		vm.logger.Warn("dashboard refresh failed, keeping previous snapshot",
			slog.String("error", err.Error()),
		)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if seq < vm.committed {
		vm.logger.Debug("dropping superseded dashboard refresh", slog.Uint64("seq", seq))
		return nil
	}
	vm.committed = seq
	vm.snap = Snapshot{
		Jobs:      jobs,
		Quotes:    quotes,
		Services:  services,
		FetchedAt: vm.now(),
		userID:    user.ID,
	}
	vm.loaded = true
	vm.logger.Debug("dashboard refreshed",
		slog.Int("jobs", len(jobs)),
		slog.Int("quotes", len(quotes)),
		slog.Int("services", len(services)),
	)
	return nil
}

// Snapshot returns the last committed snapshot.
func (vm *ViewModel) Snapshot() (Snapshot, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snap, vm.loaded
}

// View derives the dashboard for the session user.
func (vm *ViewModel) View() (View, error) {
	user, err := vm.user()
	if err != nil {
		return View{}, err
	}
	vm.mu.Lock()
	snap, loaded := vm.snap, vm.loaded
	vm.mu.Unlock()
	if !loaded || snap.userID != user.ID {
		return View{}, ErrNotLoaded
	}
	return Derive(user, snap), nil
}

// CreateJob posts a job for the customer and refreshes the dashboard.
func (vm *ViewModel) CreateJob(ctx context.Context, form JobForm) (*models.Job, error) {
	if err := vm.requireRole(models.RoleCustomer); err != nil {
		return nil, err
	}
	draft, err := ParseJobForm(form)
	if err != nil {
		return nil, err
	}
	job, err := vm.source.CreateJob(ctx, draft)
	if err != nil {
		return nil, err
	}
	return job, vm.refreshAfter(ctx, "create job")
}

// SubmitQuote places the professional's quote and refreshes the dashboard.
func (vm *ViewModel) SubmitQuote(ctx context.Context, form QuoteForm) (*models.Quote, error) {
	if err := vm.requireRole(models.RoleProfessional); err != nil {
		return nil, err
	}
	draft, err := ParseQuoteForm(form)
	if err != nil {
		return nil, err
	}
	quote, err := vm.source.CreateQuote(ctx, draft)
	if err != nil {
		return nil, err
	}
	return quote, vm.refreshAfter(ctx, "submit quote")
}

// DecideQuote accepts or rejects a quote on one of the customer's jobs and
// refreshes the dashboard.
func (vm *ViewModel) DecideQuote(ctx context.Context, quoteID int64, decision models.QuoteDecision) (*models.Quote, error) {
	if err := vm.requireRole(models.RoleCustomer); err != nil {
		return nil, err
	}
	quote, err := vm.source.DecideQuote(ctx, quoteID, decision)
	if err != nil {
		return nil, err
	}
	return quote, vm.refreshAfter(ctx, "decide quote")
}

// Browse loads the open job board and applies f. Professionals only.
func (vm *ViewModel) Browse(ctx context.Context, f BrowseFilter) (Board, error) {
	if err := vm.requireRole(models.RoleProfessional); err != nil {
		return Board{}, err
	}
	jobs, err := vm.source.ListOpenJobs(ctx)
	if err != nil {
		return Board{}, err
	}
	return Browse(jobs, f), nil
}

func (vm *ViewModel) refreshAfter(ctx context.Context, action string) error {
	if err := vm.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh after %s: %w", action, err)
	}
	return nil
}

func (vm *ViewModel) requireRole(role models.Role) error {
	user, err := vm.user()
	if err != nil {
		return err
	}
	if user.Role != role {
		return fmt.Errorf("%w: requires %s", ErrWrongRole, role)
	}
	return nil
}
