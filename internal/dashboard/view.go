// Package dashboard derives the role-specific dashboard from the session
// user and one consistent snapshot of jobs, quotes and services.
package dashboard

import (
	"time"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// Snapshot is one joint fetch of the three dashboard collections.
type Snapshot struct {
	Jobs      []models.Job
	Quotes    []models.Quote
	Services  []models.Service
	FetchedAt time.Time

	// userID is the user the snapshot was fetched for.
	userID int64
}

// Stats are the dashboard counters.
type Stats struct {
	ActiveJobs     int     `json:"active_jobs" yaml:"active_jobs"`
	CompletedJobs  int     `json:"completed_jobs" yaml:"completed_jobs"`
	Quotes         int     `json:"quotes" yaml:"quotes"`
	AcceptedQuotes int     `json:"accepted_quotes" yaml:"accepted_quotes"`
	AcceptedRatio  float64 `json:"accepted_ratio" yaml:"accepted_ratio"`
}

// View is what the dashboard shows to one user.
type View struct {
	User     models.User      `json:"user" yaml:"user"`
	MyJobs   []models.Job     `json:"my_jobs" yaml:"my_jobs"`
	MyQuotes []models.Quote   `json:"my_quotes" yaml:"my_quotes"`
	OpenJobs []models.Job     `json:"open_jobs,omitempty" yaml:"open_jobs,omitempty"`
	Services []models.Service `json:"services" yaml:"services"`
	Stats    Stats            `json:"stats" yaml:"stats"`
}

// Derive computes the view of snap for user. It does not modify snap.
//
// Professionals see the whole job pool and their own quotes. Customers see
// the jobs they posted and the quotes placed on them.
func Derive(user models.User, snap Snapshot) View {
	v := View{
		User:     user,
		Services: snap.Services,
	}

	switch user.Role {
	case models.RoleProfessional:
		v.MyJobs = append([]models.Job(nil), snap.Jobs...)
		v.MyQuotes = filter(snap.Quotes, func(q models.Quote) bool {
			return q.ProfessionalID == user.ID
		})
		v.OpenJobs = filter(snap.Jobs, func(j models.Job) bool {
			return j.Status == models.JobStatusOpen
		})
	case models.RoleCustomer:
		v.MyJobs = filter(snap.Jobs, func(j models.Job) bool {
			return j.CustomerID == user.ID
		})
		v.MyQuotes = filter(snap.Quotes, func(q models.Quote) bool {
			return q.BelongsToCustomer(user.ID)
		})
	}

	v.Stats = computeStats(v.MyJobs, v.MyQuotes)
	return v
}

func computeStats(jobs []models.Job, quotes []models.Quote) Stats {
	var s Stats
	for _, j := range jobs {
		switch j.Status {
		case models.JobStatusOpen:
			s.ActiveJobs++
		case models.JobStatusCompleted:
			s.CompletedJobs++
		}
	}
	s.Quotes = len(quotes)
	for _, q := range quotes {
		if q.Status == models.QuoteStatusAccepted {
			s.AcceptedQuotes++
		}
	}
	s.AcceptedRatio = AcceptedRatio(s.AcceptedQuotes, s.Quotes)
	return s
}

// AcceptedRatio returns accepted/total, or 0 when there are no quotes.
func AcceptedRatio(accepted, total int) float64 {
	return float64(accepted) / float64(max(total, 1))
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
