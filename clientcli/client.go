package clientcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/openhrv/openhrv"
)

// Multipart field names understood by the HRV service.
const (
	FieldFile           = "file"
	FieldSamplingRate   = "sampling_rate"
	FieldDataType       = "data_type"
	FieldSegmentLength  = "segment_length"
	FieldSegmentOverlap = "segment_overlap"
)

const (
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "openhrv-cli"

	// HeaderRequestID carries the per-request uuid.
	HeaderRequestID = "X-Request-ID"
)

// Client submits signal files to an HRV service.
type Client struct {
	config     *Config
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the URL used for mode.
func (c *Client) Endpoint(mode openhrv.Mode) string {
	return c.config.URL(mode)
}

// Calculate validates p, uploads the signal file and returns the raw response.
// The segmented endpoint is used when p.Segmented is set.
//
// Transport failures and non-2xx responses both return an error wrapping
// ErrRequestFailed; for the latter the chain also holds an *APIError.
func (c *Client) Calculate(ctx context.Context, p openhrv.Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Open(p.FilePath) //#nosec G304 -- FilePath is user-provided input
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	body, contentType, err := buildForm(p, file)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	mode := p.Mode()
	endpoint := c.Endpoint(mode)
	requestID := uuid.New()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID.String())

	slog.Debug("sending request",
		"endpoint", endpoint,
		"mode", mode,
		"data_type", p.DataType,
		"sampling_rate", p.SamplingRate,
		"form_bytes", body.Len(),
		"request_id", requestID,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrRequestFailed, err)
	}
	elapsed := time.Since(start)

	slog.Debug("received response",
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration", elapsed,
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, parseServerError(resp.StatusCode, respBody))
	}

	return &Result{
		Endpoint:    endpoint,
		Mode:        mode,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
		RequestID:   requestID,
		Duration:    elapsed,
	}, nil
}

// buildForm writes the metadata fields followed by the file part.
func buildForm(p openhrv.Params, content io.Reader) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range formFields(p) {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	part, err := w.CreateFormFile(FieldFile, filepath.Base(p.FilePath))
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", fmt.Errorf("copy file: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}

// formFields returns the metadata fields for p. Segment fields are only
// included in segmented mode.
func formFields(p openhrv.Params) []formField {
	fields := []formField{
		{name: FieldSamplingRate, value: strconv.Itoa(p.SamplingRate)},
		{name: FieldDataType, value: p.DataType.String()},
	}
	if p.Mode() != openhrv.ModeSegmented {
		return fields
	}
	return append(fields,
		formField{name: FieldSegmentLength, value: strconv.Itoa(p.SegmentLength)},
		formField{name: FieldSegmentOverlap, value: openhrv.FormatOverlap(*p.Overlap)},
	)
}

// parseServerError wraps a non-2xx response.
func parseServerError(statusCode int, body []byte) error {
	return &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}
}

// APIError represents a non-2xx response from the HRV service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
	if e.Body == "" {
		return "server error: " + msg
	}
	return "server error: " + msg + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrBadRequest is returned when the service rejects the upload (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrNotFound is returned when the endpoint path does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrServerError is returned when the service fails internally (500).
	ErrServerError = &APIError{StatusCode: http.StatusInternalServerError}
)
