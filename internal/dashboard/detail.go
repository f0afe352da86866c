package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// Detail is a job together with the quotes placed on it.
type Detail struct {
	Job    models.Job     `json:"job" yaml:"job"`
	Quotes []models.Quote `json:"quotes" yaml:"quotes"`
	// CanQuote is set for professionals viewing an open job.
	CanQuote bool `json:"can_quote" yaml:"can_quote"`
	// CanDecide is set for the customer who owns the job.
	CanDecide bool `json:"can_decide" yaml:"can_decide"`
}

// LoadDetail fetches a job and its quotes.
func (vm *ViewModel) LoadDetail(ctx context.Context, jobID int64) (Detail, error) {
	user, err := vm.user()
	if err != nil {
		return Detail{}, err
	}

	var (
		job    *models.Job
		quotes []models.Quote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		job, err = vm.source.GetJob(gctx, jobID)
		return err
	})
	g.Go(func() error {
		var err error
		quotes, err = vm.source.ListQuotes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}

	d := Detail{
		Job: *job,
		Quotes: filter(quotes, func(q models.Quote) bool {
			return q.JobID == jobID
		}),
	}
	switch user.Role {
	case models.RoleProfessional:
		d.CanQuote = job.Status == models.JobStatusOpen
	case models.RoleCustomer:
		d.CanDecide = job.CustomerID == user.ID
	}
	return d, nil
}
