package models

import "fmt"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role" validate:"required,oneof=customer professional"`
}

// Validate checks the request locally before it is sent.
func (r RegisterRequest) Validate() error {
	return Validate(r)
}

// JobDraft is the body of POST /jobs/. Nil optional fields are omitted from
// the payload rather than sent as zero or null.
type JobDraft struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Urgency     Urgency  `json:"urgency" validate:"required,oneof=low normal urgent emergency"`
	BudgetMin   *float64 `json:"budget_min,omitempty" validate:"omitempty,gte=0"`
	BudgetMax   *float64 `json:"budget_max,omitempty" validate:"omitempty,gte=0"`
	ServiceID   *int64   `json:"service_id,omitempty" validate:"omitempty,gt=0"`
}

// Validate checks field rules and that the budget range is ordered.
func (d JobDraft) Validate() error {
	if err := Validate(d); err != nil {
		return err
	}
	if d.BudgetMin != nil && d.BudgetMax != nil && *d.BudgetMin > *d.BudgetMax {
		return NewValidationError("budget_min", fmt.Sprintf("must not exceed budget_max (%g > %g)", *d.BudgetMin, *d.BudgetMax))
	}
	return nil
}

// QuoteDraft holds the parameters of POST /quotes/{job_id}.
type QuoteDraft struct {
	JobID  int64   `validate:"gt=0"`
	Amount float64 `validate:"gt=0"`
	Notes  string
}

// Validate checks the draft locally before it is sent.
func (d QuoteDraft) Validate() error {
	return Validate(d)
}
