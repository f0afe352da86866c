package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kimutaijeremy/handyproconnect/internal/dashboard"
	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "dashboard",
		Short:       "Show your jobs, quotes and statistics",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: "/dashboard"},
		RunE:        a.runDashboard,
	}
}

// loadView refreshes the dashboard snapshot and derives the view.
func (a *app) loadView(cmd *cobra.Command) (dashboard.View, error) {
	if err := a.dash.Refresh(cmd.Context()); err != nil {
		return dashboard.View{}, err
	}
	return a.dash.View()
}

func (a *app) runDashboard(cmd *cobra.Command, args []string) error {
	view, err := a.loadView(cmd)
	if err != nil {
		return err
	}

	if ok, err := a.structured(view); ok {
		return err
	}

	fmt.Fprintf(a.out, "Welcome back, %s (%s)\n\n", view.User.DisplayName(), view.User.Role.Label())

	s := view.Stats
	fmt.Fprintf(a.out, "Active jobs:     %d\n", s.ActiveJobs)
	fmt.Fprintf(a.out, "Completed jobs:  %d\n", s.CompletedJobs)
	fmt.Fprintf(a.out, "Quotes:          %d\n", s.Quotes)
	fmt.Fprintf(a.out, "Accepted:        %d (%.0f%%)\n\n", s.AcceptedQuotes, s.AcceptedRatio*100)

	switch view.User.Role {
	case models.RoleProfessional:
		fmt.Fprintln(a.out, "Available jobs:")
		if err := printJobs(a.out, view.OpenJobs); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "\nMy quotes:")
		return printQuotes(a.out, view.MyQuotes)
	case models.RoleCustomer:
		fmt.Fprintln(a.out, "My jobs:")
		if err := printJobs(a.out, view.MyJobs); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "\nQuotes received:")
		return printQuotes(a.out, view.MyQuotes)
	}
	return nil
}
