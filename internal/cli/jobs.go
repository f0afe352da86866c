package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Kimutaijeremy/handyproconnect/internal/dashboard"
	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Post, browse and inspect jobs",
		Long: `Job commands.

Examples:
  handyctl jobs list
  handyctl jobs open --search sink --urgency emergency --min-budget 100
  handyctl jobs get 42
  handyctl jobs create --title "Fix sink" --description "Kitchen sink drips" --location Westlands --budget-max 200`,
	}

	list := &cobra.Command{
		Use:         "list",
		Short:       "List your jobs",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: "/dashboard"},
		RunE:        a.runJobsList,
	}

	open := &cobra.Command{
		Use:         "open",
		Short:       "Browse jobs open for quotes (professionals)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: "/pro/jobs"},
		RunE:        a.runJobsOpen,
	}
	open.Flags().String("search", "", "match title, description or location")
	open.Flags().String("urgency", "", "filter by urgency (low, normal, urgent, emergency)")
	open.Flags().String("service", "", "filter by service ID")
	open.Flags().String("min-budget", "", "minimum budget")
	open.Flags().String("max-budget", "", "maximum budget")

	get := &cobra.Command{
		Use:         "get <id>",
		Short:       "Show a job and its quotes",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationRoute: "/job/{id}"},
		RunE:        a.runJobsGet,
	}

	create := &cobra.Command{
		Use:         "create",
		Short:       "Post a new job (homeowners)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: "/dashboard"},
		RunE:        a.runJobsCreate,
	}
	create.Flags().String("title", "", "job title")
	create.Flags().String("description", "", "what needs doing")
	create.Flags().String("location", "", "where the job is")
	create.Flags().String("urgency", string(models.UrgencyNormal), "urgency (low, normal, urgent, emergency)")
	create.Flags().String("budget-min", "", "minimum budget")
	create.Flags().String("budget-max", "", "maximum budget")
	create.Flags().String("service", "", "service ID")

	cmd.AddCommand(list, open, get, create)
	return cmd
}

func (a *app) runJobsList(cmd *cobra.Command, args []string) error {
	view, err := a.loadView(cmd)
	if err != nil {
		return err
	}
	if ok, err := a.structured(map[string]any{
		"jobs":  view.MyJobs,
		"count": len(view.MyJobs),
	}); ok {
		return err
	}
	return printJobs(a.out, view.MyJobs)
}

func (a *app) runJobsOpen(cmd *cobra.Command, args []string) error {
	filter, err := browseFilter(cmd)
	if err != nil {
		return err
	}
	board, err := a.dash.Browse(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if ok, err := a.structured(board); ok {
		return err
	}
	fmt.Fprintf(a.out, "Available: %d  Matching: %d  Emergency: %d\n\n",
		board.Stats.Available, board.Stats.Matching, board.Stats.Emergency)
	return printJobs(a.out, board.Jobs)
}

func browseFilter(cmd *cobra.Command) (dashboard.BrowseFilter, error) {
	search, _ := cmd.Flags().GetString("search")
	urgency, _ := cmd.Flags().GetString("urgency")
	service, _ := cmd.Flags().GetString("service")
	minBudget, _ := cmd.Flags().GetString("min-budget")
	maxBudget, _ := cmd.Flags().GetString("max-budget")

	f := dashboard.BrowseFilter{
		Search:  search,
		Urgency: models.Urgency(urgency),
	}
	if service != "" {
		id, err := strconv.ParseInt(service, 10, 64)
		if err != nil {
			return f, models.NewValidationError("service", "must be a whole number")
		}
		f.ServiceID = &id
	}
	for _, b := range []struct {
		field string
		raw   string
		dst   **float64
	}{
		{"min-budget", minBudget, &f.MinBudget},
		{"max-budget", maxBudget, &f.MaxBudget},
	} {
		if b.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(b.raw, 64)
		if err != nil {
			return f, models.NewValidationError(b.field, "must be a number")
		}
		*b.dst = &v
	}
	return f, nil
}

func (a *app) runJobsGet(cmd *cobra.Command, args []string) error {
	jobID, err := parseID("job id", args[0])
	if err != nil {
		return err
	}
	detail, err := a.dash.LoadDetail(cmd.Context(), jobID)
	if err != nil {
		return err
	}

	if ok, err := a.structured(detail); ok {
		return err
	}

	j := detail.Job
	fmt.Fprintf(a.out, "ID:           %d\n", j.ID)
	fmt.Fprintf(a.out, "Title:        %s\n", j.Title)
	fmt.Fprintf(a.out, "Status:       %s\n", formatJobStatus(j.Status))
	fmt.Fprintf(a.out, "Urgency:      %s\n", formatUrgency(j.Urgency))
	fmt.Fprintf(a.out, "Location:     %s\n", j.Location)
	fmt.Fprintf(a.out, "Budget:       %s\n", formatBudget(j))
	if j.CustomerName != "" {
		fmt.Fprintf(a.out, "Posted by:    %s\n", j.CustomerName)
	}
	if !j.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "Posted:       %s\n", j.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(a.out, "\n%s\n\n", j.Description)

	fmt.Fprintf(a.out, "Quotes (%d):\n", len(detail.Quotes))
	if err := printQuotes(a.out, detail.Quotes); err != nil {
		return err
	}
	switch {
	case detail.CanQuote:
		fmt.Fprintf(a.out, "\nSubmit a quote: handyctl quotes submit %d --amount <amount>\n", j.ID)
	case detail.CanDecide && len(detail.Quotes) > 0:
		fmt.Fprintln(a.out, "\nAccept or reject: handyctl quotes accept|reject <quote-id>")
	}
	return nil
}

func (a *app) runJobsCreate(cmd *cobra.Command, args []string) error {
	form := dashboard.JobForm{}
	form.Title, _ = cmd.Flags().GetString("title")
	form.Description, _ = cmd.Flags().GetString("description")
	form.Location, _ = cmd.Flags().GetString("location")
	form.Urgency, _ = cmd.Flags().GetString("urgency")
	form.BudgetMin, _ = cmd.Flags().GetString("budget-min")
	form.BudgetMax, _ = cmd.Flags().GetString("budget-max")
	form.ServiceID, _ = cmd.Flags().GetString("service")

	job, err := a.dash.CreateJob(cmd.Context(), form)
	if err != nil {
		return err
	}

	if ok, err := a.structured(job); ok {
		return err
	}
	fmt.Fprintf(a.out, "%s Job posted: %d %s\n", colorGreen("✓"), job.ID, job.Title)
	return nil
}

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(what, "must be a positive whole number")
	}
	return id, nil
}
