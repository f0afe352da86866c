package dashboard

import (
	"math"
	"strconv"
	"strings"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// JobForm is the raw text of the "post a job" form.
type JobForm struct {
	Title       string
	Description string
	Location    string
	Urgency     string
	BudgetMin   string
	BudgetMax   string
	ServiceID   string
}

// QuoteForm is the raw text of the "submit a quote" form.
type QuoteForm struct {
	JobID  string
	Amount string
	Notes  string
}

// ParseJobForm turns form input into a draft. Blank optional fields are left
// nil so they are omitted from the request; text that is not a number is
// rejected.
func ParseJobForm(f JobForm) (models.JobDraft, error) {
	d := models.JobDraft{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Location:    strings.TrimSpace(f.Location),
		Urgency:     models.Urgency(strings.ToLower(strings.TrimSpace(f.Urgency))),
	}
	if d.Urgency == "" {
		d.Urgency = models.UrgencyNormal
	}

	var err error
	if d.BudgetMin, err = optionalAmount("budget_min", f.BudgetMin); err != nil {
		return models.JobDraft{}, err
	}
	if d.BudgetMax, err = optionalAmount("budget_max", f.BudgetMax); err != nil {
		return models.JobDraft{}, err
	}
	if d.ServiceID, err = optionalID("service_id", f.ServiceID); err != nil {
		return models.JobDraft{}, err
	}

	if err := d.Validate(); err != nil {
		return models.JobDraft{}, err
	}
	return d, nil
}

// ParseQuoteForm turns form input into a draft.
func ParseQuoteForm(f QuoteForm) (models.QuoteDraft, error) {
	jobID, err := optionalID("job_id", f.JobID)
	if err != nil {
		return models.QuoteDraft{}, err
	}
	if jobID == nil {
		return models.QuoteDraft{}, models.NewValidationError("job_id", "is required")
	}
	amount, err := optionalAmount("amount", f.Amount)
	if err != nil {
		return models.QuoteDraft{}, err
	}
	if amount == nil {
		return models.QuoteDraft{}, models.NewValidationError("amount", "is required")
	}

	d := models.QuoteDraft{
		JobID:  *jobID,
		Amount: *amount,
		Notes:  strings.TrimSpace(f.Notes),
	}
	if err := d.Validate(); err != nil {
		return models.QuoteDraft{}, err
	}
	return d, nil
}

func optionalAmount(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, models.NewValidationError(field, "must be a number")
	}
	return &v, nil
}

func optionalID(field, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, models.NewValidationError(field, "must be a whole number")
	}
	return &v, nil
}
