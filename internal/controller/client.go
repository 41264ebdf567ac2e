// Package controller is an HTTP client for the network controller's login,
// backup command and backup download endpoints.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"netbackup/internal/apperrors"
	"strings"
	"time"
)

// DefaultContentType is recorded for downloads that carry no Content-Type.
const DefaultContentType = "application/octet-stream"

// maxResponseBodySize limits JSON API responses read into memory
const maxResponseBodySize = 1 << 20 // 1 MB

// statusOK is the meta.rc value the controller returns on success.
const statusOK = "ok"

// Options configures the controller client.
type Options struct {
	// Site is the controller site the backup command targets.
	// Default: "default"
	Site string

	// Version selects the backup file served at /dl/backup/<version>.unf.
	// Default: "8.0.7"
	Version string

	// Timeout for individual requests.
	// Default: 60s
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Credentials are the login inputs for one run.
type Credentials struct {
	Username string
	Password string

	// UserAgent is the optional client identity sent on every request of the run.
	UserAgent string
}

// Session carries what every authenticated request attaches.
// It is produced by Login and never modified afterwards.
type Session struct {
	Cookie    string
	UserAgent string
}

// Artifact is a downloaded backup body.
type Artifact struct {
	Data        []byte
	ContentType string
}

// Size returns the raw body length in bytes.
func (a *Artifact) Size() int64 {
	return int64(len(a.Data))
}

// StatusError is returned when the controller answers with a non-2xx status.
type StatusError struct {
	Method     string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %s", e.Method, e.Status)
}

// Client talks to a single controller.
type Client struct {
	baseURL    string
	site       string
	version    string
	httpClient *http.Client
}

// NewClient creates a client for the controller at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	if opts.Site == "" {
		opts.Site = "default"
	}
	if opts.Version == "" {
		opts.Version = "8.0.7"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:              http.ProxyFromEnvironment,
				IdleConnTimeout:    90 * time.Second,
				DisableCompression: true, // Sizes are measured on raw bytes
			},
			Timeout: opts.Timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		site:       opts.Site,
		version:    opts.Version,
		httpClient: httpClient,
	}
}

// ArtifactURL returns the download location of the backup file.
func (c *Client) ArtifactURL() string {
	return c.baseURL + "/dl/backup/" + c.version + ".unf"
}

func (c *Client) loginURL() string {
	return c.baseURL + "/api/login"
}

func (c *Client) backupURL() string {
	return c.baseURL + "/api/s/" + c.site + "/cmd/backup"
}

// apiResponse is the envelope every controller API call returns.
type apiResponse struct {
	Meta struct {
		RC  string `json:"rc"`
		Msg string `json:"msg,omitempty"`
	} `json:"meta"`
}

// Login authenticates and returns the session to attach to later calls.
// A response whose meta.rc is not "ok" yields an ErrAuthentication error;
// transport and decoding failures are returned as ErrInternal.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	payload := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	}

	resp, result, err := c.postJSON(ctx, c.loginURL(), payload, Session{UserAgent: creds.UserAgent})
	if err != nil {
		return Session{}, apperrors.Internal("controller.login", err)
	}

	if result.Meta.RC != statusOK {
		slog.WarnContext(ctx, "Login failed", "status", resp.StatusCode, "rc", result.Meta.RC, "msg", result.Meta.Msg)
		return Session{}, apperrors.Authentication("Login failed.")
	}

	cookie := sessionCookie(resp)
	if cookie == "" {
		return Session{}, apperrors.Authentication("Login response did not include a session cookie.")
	}

	return Session{Cookie: cookie, UserAgent: creds.UserAgent}, nil
}

// TriggerBackup starts an asynchronous backup on the controller.
func (c *Client) TriggerBackup(ctx context.Context, session Session) error {
	payload := map[string]any{
		"days": 0,
		"cmd":  "async-backup",
	}

	resp, result, err := c.postJSON(ctx, c.backupURL(), payload, session)
	if err != nil {
		return apperrors.Internal("controller.triggerBackup", err)
	}

	slog.InfoContext(ctx, "Backup trigger response", "status", resp.StatusCode, "rc", result.Meta.RC, "msg", result.Meta.Msg)

	if result.Meta.RC != statusOK {
		return apperrors.Trigger("Backup trigger failed.")
	}
	return nil
}

// Probe issues a HEAD request and returns the declared Content-Length.
// A missing length is reported as 0.
func (c *Client) Probe(ctx context.Context, target string, session Session) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodHead, target, http.NoBody, session)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("head request: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &StatusError{Method: http.MethodHead, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if resp.ContentLength < 0 {
		return 0, nil
	}
	return resp.ContentLength, nil
}

// Fetch downloads the full body at target into memory.
func (c *Client) Fetch(ctx context.Context, target string, session Session) (*Artifact, error) {
	req, err := c.newRequest(ctx, http.MethodGet, target, http.NoBody, session)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: http.MethodGet, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}

	return &Artifact{Data: data, ContentType: contentType}, nil
}

func (c *Client) postJSON(ctx context.Context, url string, payload any, session Session) (*http.Response, *apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(body), session)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&result); err != nil {
		return nil, nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return resp, &result, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader, session Session) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if session.Cookie != "" {
		req.Header.Set("Cookie", session.Cookie)
	}
	if session.UserAgent != "" {
		req.Header.Set("User-Agent", session.UserAgent)
	}
	return req, nil
}

// sessionCookie turns the login response's Set-Cookie headers into a
// Cookie header value.
func sessionCookie(resp *http.Response) string {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
