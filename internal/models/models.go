// Package models defines the marketplace entities exchanged with the
// HandyPro Connect API and the closed enumerations that govern them.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is the account type of a user. Only the two declared variants exist;
// decoding any other value fails.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleProfessional Role = "professional"
)

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProfessional:
		return true
	default:
		return false
	}
}

// Label returns the human facing name of the role.
func (r Role) Label() string {
	switch r {
	case RoleProfessional:
		return "Professional"
	case RoleCustomer:
		return "Homeowner"
	default:
		return string(r)
	}
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("models: invalid role %q", s)
	}
	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("models: role must be a string: %w", err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Urgency describes how soon a job needs attention.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// QuoteStatus is the state of a professional's bid.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// QuoteDecision is the customer's answer to a pending quote.
type QuoteDecision string

const (
	QuoteAccept QuoteDecision = "accepted"
	QuoteReject QuoteDecision = "rejected"
)

// Valid reports whether d is accept or reject.
func (d QuoteDecision) Valid() bool {
	return d == QuoteAccept || d == QuoteReject
}

// Timestamp decodes the API's ISO-8601 timestamps, which may or may not
// carry a zone designator. Unparseable values decode to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// User is the profile returned by GET /auth/me.
type User struct {
	ID       int64  `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	FullName string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Role     Role   `json:"role" yaml:"role"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// DisplayName returns the full name, or the local part of the email when
// no name is set.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// IsProfessional reports whether the user quotes on jobs.
func (u User) IsProfessional() bool {
	return u.Role == RoleProfessional
}

// Job is a homeowner's request for work.
type Job struct {
	ID           int64     `json:"id" yaml:"id"`
	CustomerID   int64     `json:"customer_id" yaml:"customer_id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Location     string    `json:"location" yaml:"location"`
	Urgency      Urgency   `json:"urgency" yaml:"urgency"`
	Status       JobStatus `json:"status" yaml:"status"`
	BudgetMin    *float64  `json:"budget_min,omitempty" yaml:"budget_min,omitempty"`
	BudgetMax    *float64  `json:"budget_max,omitempty" yaml:"budget_max,omitempty"`
	ServiceID    *int64    `json:"service_id,omitempty" yaml:"service_id,omitempty"`
	CreatedAt    Timestamp `json:"created_at" yaml:"-"`
	CustomerName string    `json:"customer_name" yaml:"customer_name"`
}

// Quote is a professional's priced bid against a job.
type Quote struct {
	ID               int64       `json:"id" yaml:"id"`
	JobID            int64       `json:"job_id" yaml:"job_id"`
	ProfessionalID   int64       `json:"professional_id" yaml:"professional_id"`
	ProfessionalName string      `json:"professional_name" yaml:"professional_name"`
	CustomerID       *int64      `json:"customer_id" yaml:"customer_id,omitempty"`
	Amount           float64     `json:"amount" yaml:"amount"`
	Notes            string      `json:"notes" yaml:"notes"`
	Status           QuoteStatus `json:"status" yaml:"status"`
	CreatedAt        Timestamp   `json:"created_at" yaml:"-"`
}

// BelongsToCustomer reports whether the quote was placed on a job owned by
// the given customer.
func (q Quote) BelongsToCustomer(customerID int64) bool {
	return q.CustomerID != nil && *q.CustomerID == customerID
}

// Service is an entry of the read-only service catalog.
type Service struct {
	ID                    int64  `json:"id" yaml:"id"`
	Name                  string `json:"name" yaml:"name"`
	Category              string `json:"category" yaml:"category"`
	RequiresCertification string `json:"requires_certification,omitempty" yaml:"requires_certification,omitempty"`
}

// Token is the response of POST /auth/login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
