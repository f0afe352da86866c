// Package gate decides whether a route may be shown for the current session
// or where to send the user instead.
package gate

import (
	"fmt"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
	"github.com/Kimutaijeremy/handyproconnect/internal/session"
)

const (
	// LoginPath is where unauthenticated users are sent.
	LoginPath = "/login"
	// FallbackPath is where authenticated users without the required role
	// are sent.
	FallbackPath = "/dashboard"
	// HomePath is where unknown routes are sent.
	HomePath = "/"
)

// Requirement is what a route demands of the session.
type Requirement struct {
	auth bool
	role models.Role
}

var (
	// None lets everybody through.
	None = Requirement{}
	// RequireAuth needs an authenticated session.
	RequireAuth = Requirement{auth: true}
)

// RequireRole needs an authenticated session whose user has role.
func RequireRole(role models.Role) Requirement {
	return Requirement{auth: true, role: role}
}

// Role returns the required role, or "" when any role will do.
func (r Requirement) Role() models.Role {
	return r.role
}

// String implements fmt.Stringer.
func (r Requirement) String() string {
	switch {
	case r.role != "":
		return fmt.Sprintf("role:%s", r.role)
	case r.auth:
		return "auth"
	default:
		return "none"
	}
}

// Decision is the outcome of Decide. Exactly one of Render and RedirectTo is
// set.
type Decision struct {
	Render     bool
	RedirectTo string
}

// Redirected reports whether the decision sends the user elsewhere.
func (d Decision) Redirected() bool {
	return !d.Render
}

func render() Decision {
	return Decision{Render: true}
}

func redirect(path string) Decision {
	return Decision{RedirectTo: path}
}

// Decide evaluates req against snap. It has no side effects.
func Decide(snap session.Snapshot, req Requirement) Decision {
	if !req.auth {
		return render()
	}
	if !snap.Authenticated() {
		return redirect(LoginPath)
	}
	if req.role != "" && snap.Role() != req.role {
		return redirect(FallbackPath)
	}
	return render()
}
