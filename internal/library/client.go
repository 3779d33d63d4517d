// Package library is a client for the Godot Asset Library REST API: asset
// lookup, pending-edit listing, and submission of new assets and edits.
package library

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gderr "github.com/gdasset/gdasset/internal/errors"
	"github.com/gdasset/gdasset/internal/retry"
)

// DefaultBaseURL is the official asset library. API endpoints live under
// /api; the HTML frontend used by the form workaround lives at the root.
const DefaultBaseURL = "https://godotengine.org/asset-library"

// Options configures a Client. The zero value targets the official library
// anonymously.
type Options struct {
	BaseURL  string
	Token    string
	Username string
	Password string

	HTTPClient *http.Client
	Logger     *slog.Logger
	Retry      retry.Policy
}

// Client talks to one asset library instance. It re-authenticates once on a
// 401 when credentials are available, and retries transient server errors
// per its retry policy.
type Client struct {
	base       string
	httpClient *http.Client
	logger     *slog.Logger
	retry      retry.Policy

	token    string
	username string
	password string
}

func New(opts Options) *Client {
	c := &Client{
		base:       strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		retry:      opts.Retry,
		token:      opts.Token,
		username:   opts.Username,
		password:   opts.Password,
	}
	if c.base == "" {
		c.base = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.retry == (retry.Policy{}) {
		c.retry = retry.DefaultPolicy()
	}
	return c
}

// Token returns the current authentication token, either the configured one
// or the one obtained by Login.
func (c *Client) Token() string { return c.token }

func (c *Client) apiURL(parts ...string) string {
	return c.base + "/api/" + strings.Join(parts, "/")
}

func (c *Client) frontendURL(parts ...string) string {
	return c.base + "/" + strings.Join(parts, "/")
}

// Login authenticates with the configured username and password and stores
// the session token on the client.
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return gderr.New(gderr.CategoryAuth, "username and password are required to log in")
	}
	form := url.Values{"username": {c.username}, "password": {c.password}}
	var result struct {
		Token string `json:"token"`
	}
	if err := c.postForm(ctx, c.apiURL("login"), form, &result); err != nil {
		return err
	}
	if result.Token == "" {
		return gderr.New(gderr.CategoryAuth, "login response did not contain a token")
	}
	c.token = result.Token
	c.logger.Debug("logged in to asset library", "username", c.username)
	return nil
}

// GetAsset fetches the current listing of an asset given its id or URL.
func (c *Client) GetAsset(ctx context.Context, idOrURL string) (Payload, error) {
	id, err := GuessAssetID(idOrURL)
	if err != nil {
		return nil, err
	}
	var payload Payload
	if err := c.getJSON(ctx, c.apiURL("asset", strconv.Itoa(id)), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ListPendingEdits fetches the payloads of all pending (new or in-review)
// edits for an asset, each merged over its original listing. The edit list
// endpoint omits commits and previews, so every edit is fetched individually.
func (c *Client) ListPendingEdits(ctx context.Context, idOrURL string) ([]Payload, error) {
	id, err := GuessAssetID(idOrURL)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"asset":  {strconv.Itoa(id)},
		"status": {"new in_review"},
	}
	listings, err := c.getPaginated(ctx, c.apiURL("asset", "edit"), params)
	if err != nil {
		return nil, err
	}

	var edits []Payload
	for _, listing := range listings {
		editID, ok := jsonInt(listing["edit_id"])
		if !ok {
			continue
		}
		var edit Payload
		if err := c.getJSON(ctx, c.apiURL("asset", "edit", strconv.Itoa(editID)), nil, &edit); err != nil {
			return nil, err
		}
		original, _ := edit["original"].(map[string]any)
		merged := make(Payload, len(original)+len(edit))
		for k, v := range original {
			merged[k] = v
		}
		for k, v := range edit {
			if v != nil && k != "original" {
				merged[k] = v
			}
		}
		edits = append(edits, merged)
	}
	return edits, nil
}

// Submit sends a payload to the library: a new asset when the payload has no
// asset_id, an edit otherwise. When workaround is true the HTML form
// endpoint is used instead of the JSON API (see workaround.go).
func (c *Client) Submit(ctx context.Context, payload Payload, workaround bool) error {
	if c.token == "" {
		if err := c.Login(ctx); err != nil {
			return err
		}
	}
	if workaround {
		return c.submitViaForm(ctx, payload)
	}

	body := make(Payload, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["token"] = c.token

	err := c.postJSON(ctx, c.submitURL(payload, false), body, nil)
	if gderr.IsCategory(err, gderr.CategoryAuth) && c.username != "" && c.password != "" {
		// Stale token; log in once and retry.
		if err = c.Login(ctx); err != nil {
			return err
		}
		body["token"] = c.token
		err = c.postJSON(ctx, c.submitURL(payload, false), body, nil)
	}
	return err
}

func (c *Client) submitURL(payload Payload, workaround bool) string {
	assetID, hasID := jsonInt(payload["asset_id"])
	if workaround {
		if hasID {
			return c.frontendURL("asset", strconv.Itoa(assetID), "edit")
		}
		return c.frontendURL("asset", "submit")
	}
	if hasID {
		return c.apiURL("asset", strconv.Itoa(assetID))
	}
	return c.apiURL("asset")
}

// getPaginated walks a paginated listing endpoint, concatenating the result
// arrays of all pages.
func (c *Client) getPaginated(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, error) {
	var results []map[string]any
	for page := 0; ; page++ {
		params.Set("page", strconv.Itoa(page))
		var body struct {
			Result []map[string]any `json:"result"`
			Pages  int              `json:"pages"`
		}
		if err := c.getJSON(ctx, endpoint, params, &body); err != nil {
			return nil, err
		}
		results = append(results, body.Result...)
		if page >= body.Pages-1 {
			return results, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, result any) error {
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gderr.Wrap(err, gderr.CategoryInternal, "building request for %s", endpoint)
	}
	return c.doJSON(req, result)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body, result any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return gderr.Wrap(err, gderr.CategoryInternal, "encoding request for %s", endpoint)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(encoded)))
	if err != nil {
		return gderr.Wrap(err, gderr.CategoryInternal, "building request for %s", endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, result)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return gderr.Wrap(err, gderr.CategoryInternal, "building request for %s", endpoint)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.doJSON(req, result)
}

// doJSON performs an API request, retrying transient server errors per the
// retry policy.
func (c *Client) doJSON(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")

	var body []byte
	if req.Body != nil {
		var err error
		if body, err = io.ReadAll(req.Body); err != nil {
			return gderr.Wrap(err, gderr.CategoryInternal, "reading request body")
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxRetries+1; attempt++ {
		if body != nil {
			req.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return gderr.Wrap(err, gderr.CategoryNetwork, "%s %s", req.Method, req.URL.Path)
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return gderr.Wrap(readErr, gderr.CategoryNetwork, "reading response from %s", req.URL.Path)
		}

		switch {
		case resp.StatusCode >= 500:
			lastErr = apiError(req, resp.StatusCode, respBody)
			delay := c.retry.Delay(attempt)
			c.logger.Debug("retrying after server error",
				"url", req.URL.Path, "status", resp.StatusCode, "attempt", attempt, "delay", delay)
			select {
			case <-req.Context().Done():
				return gderr.Wrap(req.Context().Err(), gderr.CategoryNetwork, "%s %s", req.Method, req.URL.Path)
			case <-time.After(delay):
			}
			continue
		case resp.StatusCode >= 400:
			return apiError(req, resp.StatusCode, respBody)
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return gderr.Wrap(err, gderr.CategoryNetwork, "decoding response from %s", req.URL.Path)
			}
		}
		return nil
	}
	return lastErr
}

func apiError(req *http.Request, status int, body []byte) error {
	detail := ""
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		detail = ": " + parsed.Error
	}
	category := gderr.CategoryNetwork
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		category = gderr.CategoryAuth
	}
	return gderr.New(category, "%s request to %s failed with code %d%s",
		req.Method, req.URL.Path, status, detail)
}

// jsonInt coerces a decoded JSON value (number or numeric string) to an int.
func jsonInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
