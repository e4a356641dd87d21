package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// apiClient talks to the engine's /api/v1 surface.
type apiClient struct {
	base  string
	token string
	http  *http.Client
}

func newAPIClient(server, token string, timeout time.Duration) *apiClient {
	return &apiClient{
		base:  strings.TrimRight(server, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx response without data worth printing.
type apiError struct {
	Status int
	Code   string
	Msg    string
}

func (e *apiError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("server returned %d (%s): %s", e.Status, e.Code, e.Msg)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *apiClient) Deploy(ctx context.Context, uuids, tags string, force bool) (json.RawMessage, error) {
	q := url.Values{}
	if uuids != "" {
		q.Set("uuid", uuids)
	}
	if tags != "" {
		q.Set("tag", tags)
	}
	if force {
		q.Set("force", strconv.FormatBool(force))
	}
	return c.get(ctx, "/api/v1/deploy", q)
}

func (c *apiClient) Deployments(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/v1/deployments", nil)
}

func (c *apiClient) Deployment(ctx context.Context, identity string) (json.RawMessage, error) {
	return c.get(ctx, "/api/v1/deployments/"+url.PathEscape(identity), nil)
}

// get returns the body as-is when it carries data, so partial batch results
// reported with a 404 are still printed.
func (c *apiClient) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &apiError{Status: resp.StatusCode, Msg: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode >= 300 && len(env.Data) == 0 {
		e := &apiError{Status: resp.StatusCode}
		if env.Error != nil {
			e.Code, e.Msg = env.Error.Code, env.Error.Message
		}
		return nil, e
	}
	return json.RawMessage(body), nil
}
