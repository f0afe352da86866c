package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// ListQuotes returns quotes visible to the caller.
func (c *Client) ListQuotes(ctx context.Context) ([]models.Quote, error) {
	var quotes []models.Quote
	if err := c.get(ctx, "list quotes", "/quotes/", &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// CreateQuote submits a quote on a job. Amount and notes travel as query
// parameters.
func (c *Client) CreateQuote(ctx context.Context, draft models.QuoteDraft) (*models.Quote, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("amount", strconv.FormatFloat(draft.Amount, 'f', -1, 64))
	q.Set("notes", draft.Notes)

	var quote models.Quote
	err := c.do(ctx, "create quote", request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/quotes/%d", draft.JobID),
		query:  q,
	}, &quote)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// DecideQuote accepts or rejects a quote on one of the caller's jobs.
func (c *Client) DecideQuote(ctx context.Context, quoteID int64, decision models.QuoteDecision) (*models.Quote, error) {
	if !decision.Valid() {
		return nil, models.NewValidationError("status", "must be accepted or rejected")
	}
	body := map[string]any{"status": decision}

	var quote models.Quote
	err := c.do(ctx, "decide quote", request{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/quotes/%d", quoteID),
		body:   body,
	}, &quote)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
