// Package waterlog is the HTTP client for the WaterLog API.
package waterlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource supplies the bearer token for each request; an empty token sends no header
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// APIClient talks to the WaterLog API on behalf of one session
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*APIClient)

// WithHTTPClient replaces the traced default client
func WithHTTPClient(h *http.Client) Option {
	return func(c *APIClient) { c.httpClient = h }
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// WebSocketURL is the live events endpoint with the current token attached
func (c *APIClient) WebSocketURL() string {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", c.token())
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *APIClient) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *APIClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs req and returns the raw body of a 2xx answer
func (c *APIClient) send(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, parseAPIError(resp.StatusCode, body)
	}
	return body, resp.Header, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}

	raw, _, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Login posts the password form and returns the issued token
func (c *APIClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/auth/login", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}

	raw, _, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var resp LoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

func (c *APIClient) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRoutes returns the routes of date (YYYY-MM-DD); empty means today on the server
func (c *APIClient) ListRoutes(ctx context.Context, date string) (*RouteList, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date_filter", date)
	}
	var list RouteList
	if err := c.do(ctx, http.MethodGet, "/api/v1/routes", query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *APIClient) GetRoute(ctx context.Context, id int) (*RouteDetail, error) {
	var detail RouteDetail
	if err := c.do(ctx, http.MethodGet, "/api/v1/routes/"+strconv.Itoa(id), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// RouteAudit returns the audit trail of a route (admins, supervisors and auditors only)
func (c *APIClient) RouteAudit(ctx context.Context, id int) ([]AuditEntry, error) {
	entries := []AuditEntry{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/routes/"+strconv.Itoa(id)+"/audit", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *APIClient) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	var resp CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/routes/checkout", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) Checkin(ctx context.Context, routeID int, req CheckinRequest) (*CheckinResponse, error) {
	if req.Sales == nil {
		req.Sales = []SaleLine{}
	}
	var resp CheckinResponse
	path := "/api/v1/routes/" + strconv.Itoa(routeID) + "/checkin"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) Drivers(ctx context.Context) ([]Driver, error) {
	var drivers []Driver
	if err := c.do(ctx, http.MethodGet, "/api/v1/resources/drivers", nil, nil, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (c *APIClient) CreateDriver(ctx context.Context, req CreateDriverRequest) (*Driver, error) {
	var driver Driver
	if err := c.do(ctx, http.MethodPost, "/api/v1/resources/drivers", nil, req, &driver); err != nil {
		return nil, err
	}
	return &driver, nil
}

func (c *APIClient) Trucks(ctx context.Context) ([]Truck, error) {
	var trucks []Truck
	if err := c.do(ctx, http.MethodGet, "/api/v1/resources/trucks", nil, nil, &trucks); err != nil {
		return nil, err
	}
	return trucks, nil
}

func (c *APIClient) CreateTruck(ctx context.Context, req CreateTruckRequest) (*Truck, error) {
	var truck Truck
	if err := c.do(ctx, http.MethodPost, "/api/v1/resources/trucks", nil, req, &truck); err != nil {
		return nil, err
	}
	return &truck, nil
}

func (c *APIClient) Clients(ctx context.Context) ([]Client, error) {
	var clients []Client
	if err := c.do(ctx, http.MethodGet, "/clients", nil, nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (c *APIClient) CreateClient(ctx context.Context, req ClientRequest) (*Client, error) {
	var client Client
	if err := c.do(ctx, http.MethodPost, "/clients", nil, req, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *APIClient) UpdateClient(ctx context.Context, id int, req ClientRequest) (*Client, error) {
	var client Client
	if err := c.do(ctx, http.MethodPut, "/clients/"+strconv.Itoa(id), nil, req, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// Debts lists debt records, optionally filtered by status
func (c *APIClient) Debts(ctx context.Context, status string) ([]Debt, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var debts []Debt
	if err := c.do(ctx, http.MethodGet, "/api/v1/debts", query, nil, &debts); err != nil {
		return nil, err
	}
	return debts, nil
}

func (c *APIClient) ResolveDebt(ctx context.Context, id int, status, notes string) (*Debt, error) {
	body := map[string]string{"status": status, "resolution_notes": notes}
	var debt Debt
	if err := c.do(ctx, http.MethodPost, "/api/v1/debts/"+strconv.Itoa(id)+"/resolve", nil, body, &debt); err != nil {
		return nil, err
	}
	return &debt, nil
}

// ManifestPDF downloads the daily route manifest and the filename the server suggested
func (c *APIClient) ManifestPDF(ctx context.Context, date string) ([]byte, string, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date_filter", date)
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/reports/manifest.pdf", query, nil, "")
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/pdf")

	raw, header, err := c.send(req)
	if err != nil {
		return nil, "", err
	}

	filename := "manifiesto.pdf"
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return raw, filename, nil
}
