package dashboard

import (
	"strings"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// BrowseFilter narrows the open job board. Zero fields match everything.
type BrowseFilter struct {
	Search    string
	Urgency   models.Urgency
	ServiceID *int64
	MinBudget *float64
	MaxBudget *float64
}

// BrowseStats are the counters shown above the job board.
type BrowseStats struct {
	Available int `json:"available" yaml:"available"`
	Matching  int `json:"matching" yaml:"matching"`
	Emergency int `json:"emergency" yaml:"emergency"`
}

// Board is the filtered job board.
type Board struct {
	Jobs  []models.Job `json:"jobs" yaml:"jobs"`
	Stats BrowseStats  `json:"stats" yaml:"stats"`
}

// Browse filters jobs and counts the board.
func Browse(jobs []models.Job, f BrowseFilter) Board {
	matching := FilterJobs(jobs, f)
	stats := BrowseStats{Available: len(jobs), Matching: len(matching)}
	for _, j := range jobs {
		if j.Urgency == models.UrgencyEmergency {
			stats.Emergency++
		}
	}
	return Board{Jobs: matching, Stats: stats}
}

// FilterJobs returns the jobs matching every set field of f, in order.
//
// A job passes the minimum budget when either end of its range reaches it,
// and the maximum budget when either end is within it. Jobs without budgets
// never pass a budget filter.
func FilterJobs(jobs []models.Job, f BrowseFilter) []models.Job {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	return filter(jobs, func(j models.Job) bool {
		if search != "" &&
			!strings.Contains(strings.ToLower(j.Title), search) &&
			!strings.Contains(strings.ToLower(j.Description), search) &&
			!strings.Contains(strings.ToLower(j.Location), search) {
			return false
		}
		if f.Urgency != "" && j.Urgency != f.Urgency {
			return false
		}
		if f.ServiceID != nil && (j.ServiceID == nil || *j.ServiceID != *f.ServiceID) {
			return false
		}
		if f.MinBudget != nil && !anyBudget(j, func(b float64) bool { return b >= *f.MinBudget }) {
			return false
		}
		if f.MaxBudget != nil && !anyBudget(j, func(b float64) bool { return b <= *f.MaxBudget }) {
			return false
		}
		return true
	})
}

func anyBudget(j models.Job, ok func(float64) bool) bool {
	return (j.BudgetMin != nil && ok(*j.BudgetMin)) || (j.BudgetMax != nil && ok(*j.BudgetMax))
}
