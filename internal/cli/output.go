package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/Kimutaijeremy/handyproconnect/internal/api"
	"github.com/Kimutaijeremy/handyproconnect/internal/dashboard"
	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// structured reports whether output goes out as JSON or YAML, and writes v
// if so.
func (a *app) structured(v any) (bool, error) {
	switch a.format {
	case formatJSON:
		return true, printJSON(a.out, v)
	case formatYAML:
		return true, printYAML(a.out, v)
	default:
		return false, nil
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printTableHeader(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

// printError writes a one line error with a hint for the failures a user
// can act on.
func printError(w io.Writer, err error) {
	var ve *models.ValidationError
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		fmt.Fprintf(w, "%s %v\n", colorRed("Error:"), err)
		fmt.Fprintln(w, "Your session has ended. Please log in again with 'handyctl login'.")
	case errors.Is(err, errLoginRequired):
		fmt.Fprintf(w, "%s %v\n", colorRed("Error:"), err)
		fmt.Fprintln(w, "Log in first with 'handyctl login'.")
	case errors.Is(err, dashboard.ErrWrongRole), errors.Is(err, errRoleRequired):
		fmt.Fprintf(w, "%s %v\n", colorRed("Error:"), err)
	case errors.As(err, &ve):
		fmt.Fprintf(w, "%s invalid input: %v\n", colorRed("Error:"), ve)
	default:
		fmt.Fprintf(w, "%s %v\n", colorRed("Error:"), err)
	}
}

func colorize(code, s string) string {
	if noColor {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func colorGreen(s string) string  { return colorize("32", s) }
func colorYellow(s string) string { return colorize("33", s) }
func colorRed(s string) string    { return colorize("31", s) }

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func formatMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatBudget(j models.Job) string {
	switch {
	case j.BudgetMin != nil && j.BudgetMax != nil:
		return fmt.Sprintf("%s-%s", formatMoney(j.BudgetMin), formatMoney(j.BudgetMax))
	case j.BudgetMin != nil:
		return "from " + formatMoney(j.BudgetMin)
	case j.BudgetMax != nil:
		return "up to " + formatMoney(j.BudgetMax)
	default:
		return "-"
	}
}

func formatJobStatus(s models.JobStatus) string {
	switch s {
	case models.JobStatusOpen:
		return colorGreen("OPEN")
	case models.JobStatusInProgress:
		return colorYellow("IN PROGRESS")
	case models.JobStatusCompleted:
		return "COMPLETED"
	case models.JobStatusCancelled:
		return colorRed("CANCELLED")
	default:
		return strings.ToUpper(string(s))
	}
}

func formatQuoteStatus(s models.QuoteStatus) string {
	switch s {
	case models.QuoteStatusAccepted:
		return colorGreen("ACCEPTED")
	case models.QuoteStatusRejected:
		return colorRed("REJECTED")
	case models.QuoteStatusPending:
		return colorYellow("PENDING")
	default:
		return strings.ToUpper(string(s))
	}
}

func formatUrgency(u models.Urgency) string {
	switch u {
	case models.UrgencyEmergency:
		return colorRed("emergency")
	case models.UrgencyUrgent:
		return colorYellow("urgent")
	default:
		return string(u)
	}
}

func printJobs(w io.Writer, jobs []models.Job) error {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found")
		return nil
	}
	t := newTable(w)
	printTableHeader(t, "ID", "TITLE", "LOCATION", "URGENCY", "STATUS", "BUDGET", "POSTED")
	for _, j := range jobs {
		posted := "-"
		if !j.CreatedAt.IsZero() {
			posted = j.CreatedAt.Format("Jan 2, 2006")
		}
		fmt.Fprintf(t, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID,
			truncate(j.Title, 32),
			truncate(j.Location, 20),
			formatUrgency(j.Urgency),
			formatJobStatus(j.Status),
			formatBudget(j),
			posted,
		)
	}
	return t.Flush()
}

func printQuotes(w io.Writer, quotes []models.Quote) error {
	if len(quotes) == 0 {
		fmt.Fprintln(w, "No quotes found")
		return nil
	}
	t := newTable(w)
	printTableHeader(t, "ID", "JOB", "PROFESSIONAL", "AMOUNT", "STATUS", "NOTES")
	for _, q := range quotes {
		fmt.Fprintf(t, "%d\t%d\t%s\t%.2f\t%s\t%s\n",
			q.ID,
			q.JobID,
			truncate(q.ProfessionalName, 24),
			q.Amount,
			formatQuoteStatus(q.Status),
			truncate(q.Notes, 40),
		)
	}
	return t.Flush()
}
