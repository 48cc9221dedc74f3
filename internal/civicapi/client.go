// Package civicapi implements the REST surface of the civic issue service.
// Every method takes the caller's access token explicitly; the client itself
// holds no session state, so one client serves login, logout, and re-login
// across accounts.
package civicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civica-dev/civica/internal/constants"
	"github.com/civica-dev/civica/internal/faults"
	"github.com/civica-dev/civica/internal/log"
)

const userAgent = "civica-cli"

// maxErrorBody caps how much of an error response is read for classification.
const maxErrorBody = 64 * 1024

// Token is the credential material returned by a successful login.
type Token struct {
	AccessToken string
	TokenType   string
}

// Upload is a file attachment for a multipart request. Content is buffered
// in memory; attachments are photo sized.
type Upload struct {
	Name   string
	Reader io.Reader
}

// headerTransport stamps identifying headers on every outgoing request so
// server logs can correlate requests to an install.
type headerTransport struct {
	base     http.RoundTripper
	deviceID string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if t.deviceID != "" {
		req.Header.Set("X-Device-ID", t.deviceID)
	}
	return t.base.RoundTrip(req)
}

// Client talks to the civic issue service.
type Client struct {
	baseURL  string
	deviceID string

	requestTimeout time.Duration
	uploadTimeout  time.Duration
	healthTimeout  time.Duration

	http    *http.Client // plain JSON requests
	uploads *http.Client // multipart uploads get a longer deadline
}

// Option configures a Client.
type Option func(*Client)

// WithDeviceID attaches the stable install identifier to every request.
func WithDeviceID(id string) Option {
	return func(c *Client) {
		c.deviceID = id
	}
}

// WithTimeouts overrides the request and upload deadlines.
func WithTimeouts(request, upload time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.requestTimeout = request
		}
		if upload > 0 {
			c.uploadTimeout = upload
		}
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		requestTimeout: constants.RequestTimeout,
		uploadTimeout:  constants.UploadTimeout,
		healthTimeout:  constants.HealthTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := &headerTransport{
		base:     http.DefaultTransport,
		deviceID: c.deviceID,
	}
	c.http = &http.Client{Timeout: c.requestTimeout, Transport: transport}
	c.uploads = &http.Client{Timeout: c.uploadTimeout, Transport: transport}

	return c
}

// BaseURL returns the configured service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes the service root and returns the advertised version.
func (c *Client) Health(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	var root struct {
		Message string `json:"message"`
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/", "", nil, nil, &root); err != nil {
		return "", err
	}
	return root.Version, nil
}

// do executes a JSON request against the service. A non-2xx response is
// classified into a *faults.Fault; transport failures likewise.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return faults.FromTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postMultipart executes a multipart form upload with a single file part.
func (c *Client) postMultipart(ctx context.Context, path, token, fileField string, upload Upload, fields map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	part, err := w.CreateFormFile(fileField, upload.Name)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, upload.Reader); err != nil {
		return fmt.Errorf("failed to read upload %s: %w", upload.Name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.uploads.Do(req)
	if err != nil {
		return faults.FromTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into a classified fault. The raw
// detail is logged at debug level only; what surfaces to the user is the
// classifier's message.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	code, detail := parseErrorBody(body)
	log.Debug("request rejected", "status", resp.StatusCode, "code", code, "detail", detail)
	return faults.FromResponse(resp.StatusCode, code, detail)
}

// parseErrorBody extracts the service's error envelope. The detail field is
// usually a plain string; newer endpoints ship {code, message}, and
// validation failures carry a list of field problems.
func parseErrorBody(body []byte) (code, detail string) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return "", ""
	}

	var plain string
	if err := json.Unmarshal(envelope.Detail, &plain); err == nil {
		return "", plain
	}

	var structured struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Detail, &structured); err == nil &&
		(structured.Code != "" || structured.Message != "") {
		return structured.Code, structured.Message
	}

	var fields []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil && len(fields) > 0 {
		return "", fields[0].Msg
	}

	return "", ""
}
