// Package api is the CLI's HTTP client for the premium server.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	json "github.com/goccy/go-json"
)

// StatusError is a non-2xx answer. It unwraps to the matching sentinel in
// common so callers can use errors.Is.
type StatusError struct {
	Code      int
	Message   string
	RequestID string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized:
		return common.ErrorUnauthenticated
	case e.Code == http.StatusForbidden:
		return common.ErrorForbidden
	case e.Code == http.StatusBadRequest:
		return common.ErrorValidation
	case e.Code == http.StatusNotFound:
		return common.ErrorNotFound
	case e.Code >= http.StatusInternalServerError:
		return common.ErrorUnavailable
	default:
		return nil
	}
}

type SubmitRequest struct {
	Company string  `json:"company"`
	Plate   string  `json:"plate"`
	Premium float64 `json:"premium"`
	User    string  `json:"user"`
}

type SubmitResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Provision string `json:"provision"`
	ID        string `json:"id"`
}

type ArchiveLink struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
	Records   int    `json:"records"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	token   string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every request. Empty clears it.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Catalog(ctx context.Context) (premium.Catalog, error) {
	out := premium.Catalog{}
	if err := c.do(ctx, http.MethodGet, "/plates.json", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SubmitPremium(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return SubmitResult{}, err
	}
	var out SubmitResult
	err = c.do(ctx, http.MethodPost, "/api/premiums", bytes.NewReader(b), "application/json", &out)
	return out, err
}

// SubmitForm posts the same submission through the hosted form endpoint.
func (c *Client) SubmitForm(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	form := url.Values{
		"form-name":   {common.PremiumFormName},
		"company":     {req.Company},
		"nummerplade": {req.Plate},
		"premium":     {fmt.Sprintf("%g", req.Premium)},
		"user":        {req.User},
	}
	var out SubmitResult
	err := c.do(ctx, http.MethodPost, "/", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out)
	return out, err
}

func (c *Client) Premiums(ctx context.Context) ([]premium.SubmissionRecord, error) {
	out := []premium.SubmissionRecord{}
	if err := c.do(ctx, http.MethodGet, "/api/premiums", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export downloads the spreadsheet export.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.do(ctx, http.MethodGet, "/api/premiums/export", nil, "", &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportArchive asks the server to store the export and return a link.
func (c *Client) ExportArchive(ctx context.Context) (ArchiveLink, error) {
	var out ArchiveLink
	err := c.do(ctx, http.MethodGet, "/api/premiums/export?archive=true", nil, "", &out)
	return out, err
}

func (c *Client) MergeCatalog(ctx context.Context, company string, records []premium.PlateRecord) (int, error) {
	b, err := json.Marshal(records)
	if err != nil {
		return 0, err
	}
	var out struct {
		Added int `json:"added"`
	}
	err = c.do(ctx, http.MethodPost, "/api/catalog/"+url.PathEscape(company), bytes.NewReader(b), "application/json", &out)
	return out.Added, err
}

// do sends one request. A *bytes.Buffer out receives the raw body, anything
// else is JSON-decoded.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error     string `json:"error"`
			RequestID string `json:"request_id"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error, RequestID: e.RequestID}
	}

	if buf, ok := out.(*bytes.Buffer); ok {
		_, err = io.Copy(buf, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
