// pattern: Imperative Shell
package instance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"codeprojects/internal/matcher"
	"codeprojects/internal/project"
)

// Client is a thin HTTP client for a running `serve` instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// BaseURL returns the instance address, e.g. "http://127.0.0.1:12345".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Projects fetches every loaded record.
func (c *Client) Projects() ([]project.Record, error) {
	var records []project.Record
	if err := c.getJSON("/api/projects", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Match runs a query on the instance. Results come back ranked.
func (c *Client) Match(q matcher.Query) ([]matcher.Match, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	if q.SingleRunner {
		params.Set("single", strconv.FormatBool(true))
	}

	var matches []matcher.Match
	if err := c.getJSON("/api/match?"+params.Encode(), &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// Run asks the instance to open the project at path.
func (c *Client) Run(path string) error {
	_, err := c.postJSON("/api/run", map[string]string{"path": path})
	return err
}

// Reload asks the instance to re-read its configuration and sources.
// Returns the new project count.
func (c *Client) Reload() (int, error) {
	body, err := c.postJSON("/api/reload", nil)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.Count, nil
}

func (c *Client) getJSON(path string, v any) error {
	body, err := c.get(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(path string) ([]byte, error) {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to codeprojects: %w", err)
	}
	return readBody(resp)
}

// postJSON performs a POST request with an optional JSON body and returns the
// response body.
func (c *Client) postJSON(path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to codeprojects: %w", err)
	}
	return readBody(resp)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("codeprojects returned status %d: %s", resp.StatusCode, extractErrorMessage(body))
	}
	return body, nil
}

// extractErrorMessage attempts to extract the error message from a JSON response body.
// If the body is not valid JSON or doesn't have an "error" field, returns the raw body string.
func extractErrorMessage(body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(body)
}
