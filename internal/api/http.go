package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerUserAgent     = "User-Agent"
	headerRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json"
	contentTypeForm     = "application/x-www-form-urlencoded"
	defaultUserAgent    = "handyctl/1.0"
)

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	// body is JSON encoded, unless it is url.Values, which is form encoded.
	body any
}

// do performs an HTTP request and handles common error cases.
func (c *Client) do(ctx context.Context, op string, r request, result any) error {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	var (
		bodyReader  io.Reader
		contentType string
	)
	switch b := r.body.(type) {
	case nil:
	case url.Values:
		bodyReader = strings.NewReader(b.Encode())
		contentType = contentTypeForm
	default:
		bodyBytes, err := json.Marshal(b)
		if err != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("marshal request body: %w", err)}
		}
		bodyReader = bytes.NewReader(bodyBytes)
		contentType = contentTypeJSON
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, bodyReader)
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set(headerUserAgent, c.userAgent)
	req.Header.Set(headerAccept, contentTypeJSON)
	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}
	if token := c.bearer(); token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug("api request",
		slog.String("op", op),
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", requestID),
	)

	if resp.StatusCode >= 400 {
		apiErr := newError(resp.StatusCode, respBody)
		if apiErr.IsUnauthorized() && c.session != nil {
			c.logger.Info("session rejected by server, clearing", slog.String("op", op))
			c.session.Clear()
		}
		return apiErr
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
		}
	}

	return nil
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, op, path string, result any) error {
	return c.do(ctx, op, request{method: http.MethodGet, path: path}, result)
}

// post performs a POST request with a JSON or form body.
func (c *Client) post(ctx context.Context, op, path string, body, result any) error {
	return c.do(ctx, op, request{method: http.MethodPost, path: path, body: body}, result)
}
