package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kimutaijeremy/handyproconnect/internal/dashboard"
	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

func newQuotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Submit and decide on quotes",
		Long: `Quote commands.

Professionals submit quotes on open jobs; homeowners accept or reject the
quotes placed on their jobs.

Examples:
  handyctl quotes list
  handyctl quotes submit 42 --amount 150 --notes "Can start Monday"
  handyctl quotes accept 7
  handyctl quotes reject 8`,
	}

	list := &cobra.Command{
		Use:         "list",
		Short:       "List your quotes",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: "/dashboard"},
		RunE:        a.runQuotesList,
	}

	submit := &cobra.Command{
		Use:         "submit <job-id>",
		Short:       "Submit a quote on a job (professionals)",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationRoute: "/job/{id}"},
		RunE:        a.runQuotesSubmit,
	}
	submit.Flags().String("amount", "", "quoted amount")
	submit.Flags().String("notes", "", "notes for the homeowner")

	accept := &cobra.Command{
		Use:         "accept <quote-id>",
		Short:       "Accept a quote on one of your jobs",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationRoute: "/dashboard"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuotesDecide(cmd, args, models.QuoteAccept)
		},
	}

	reject := &cobra.Command{
		Use:         "reject <quote-id>",
		Short:       "Reject a quote on one of your jobs",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationRoute: "/dashboard"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuotesDecide(cmd, args, models.QuoteReject)
		},
	}

	cmd.AddCommand(list, submit, accept, reject)
	return cmd
}

func (a *app) runQuotesList(cmd *cobra.Command, args []string) error {
	view, err := a.loadView(cmd)
	if err != nil {
		return err
	}
	if ok, err := a.structured(map[string]any{
		"quotes":         view.MyQuotes,
		"count":          len(view.MyQuotes),
		"accepted_ratio": view.Stats.AcceptedRatio,
	}); ok {
		return err
	}
	return printQuotes(a.out, view.MyQuotes)
}

func (a *app) runQuotesSubmit(cmd *cobra.Command, args []string) error {
	amount, _ := cmd.Flags().GetString("amount")
	notes, _ := cmd.Flags().GetString("notes")

	quote, err := a.dash.SubmitQuote(cmd.Context(), dashboard.QuoteForm{
		JobID:  args[0],
		Amount: amount,
		Notes:  notes,
	})
	if err != nil {
		return err
	}

	if ok, err := a.structured(quote); ok {
		return err
	}
	fmt.Fprintf(a.out, "%s Quote %d submitted on job %d for %.2f\n", colorGreen("✓"), quote.ID, quote.JobID, quote.Amount)
	return nil
}

func (a *app) runQuotesDecide(cmd *cobra.Command, args []string, decision models.QuoteDecision) error {
	quoteID, err := parseID("quote id", args[0])
	if err != nil {
		return err
	}
	quote, err := a.dash.DecideQuote(cmd.Context(), quoteID, decision)
	if err != nil {
		return err
	}

	if ok, err := a.structured(quote); ok {
		return err
	}
	fmt.Fprintf(a.out, "%s Quote %d %s\n", colorGreen("✓"), quote.ID, decision)
	return nil
}
