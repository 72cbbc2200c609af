// Package api is the HTTP client for the field-operations API used by the
// exposure grid and the command-line tools.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"fieldops-app/internal/domain/havs"

	"go.uber.org/zap"
)

const defaultTimeout = 8 * time.Second

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// IsConflict reports whether err is a 409, e.g. a week that already exists.
func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

// IsLocked reports whether err came from editing a submitted week.
func IsLocked(err error) bool { return hasStatus(err, http.StatusLocked) }

func hasStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token currently in use. It changes when the server
// renews it.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if renewed := resp.Header.Get("X-New-Token"); renewed != "" {
		c.setToken(renewed)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return errors.New("login returned no token")
	}
	c.setToken(out.Token)
	return nil
}

// WeekEnding asks the server which week a date belongs to. When the server
// cannot answer, the same rule is applied locally.
func (c *Client) WeekEnding(ctx context.Context, d havs.Date) havs.Date {
	var out struct {
		WeekEnding havs.Date `json:"week_ending"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/havs/week-ending?date="+url.QueryEscape(d.String()), nil, &out)
	if err == nil && havs.IsWeekEnding(out.WeekEnding) {
		return out.WeekEnding
	}
	zap.L().Debug("week ending from local rule", zap.String("date", d.String()), zap.Error(err))
	return havs.WeekEndingFor(d)
}

type StartWeekRequest struct {
	GangerID           uint      `json:"ganger_id,omitempty"`
	WeekEnding         havs.Date `json:"week_ending"`
	CarryOverMemberIDs []string  `json:"carry_over_member_ids,omitempty"`
}

func (c *Client) StartWeek(ctx context.Context, in StartWeekRequest) (*havs.WeekDetails, error) {
	var out struct {
		Week havs.WeekDetails `json:"week"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/functions/start-havs-week", in, &out); err != nil {
		return nil, err
	}
	return &out.Week, nil
}

func (c *Client) ListWeeks(ctx context.Context) ([]havs.WeekSummary, error) {
	var out struct {
		Weeks []havs.WeekSummary `json:"weeks"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/havs/weeks", nil, &out); err != nil {
		return nil, err
	}
	return out.Weeks, nil
}

func (c *Client) GetWeek(ctx context.Context, weekID string) (*havs.WeekDetails, error) {
	var out havs.WeekDetails
	if err := c.doJSON(ctx, http.MethodGet, "/havs/weeks/"+url.PathEscape(weekID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveEntries(ctx context.Context, weekID string, entries []havs.EntryInput) (*havs.SaveResult, error) {
	var out havs.SaveResult
	body := map[string]any{"entries": entries}
	if err := c.doJSON(ctx, http.MethodPut, "/havs/weeks/"+url.PathEscape(weekID)+"/entries", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Submit(ctx context.Context, weekID string, in havs.SubmitInput) (*havs.WeekDetails, error) {
	var out havs.WeekDetails
	if err := c.doJSON(ctx, http.MethodPost, "/havs/weeks/"+url.PathEscape(weekID)+"/submit", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
