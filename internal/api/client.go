package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/yildizm/histodash/internal/logger"
)

// FileField is the multipart field name the prediction endpoint reads
const FileField = "file"

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 4 << 20

// Config configures a Client
type Config struct {
	PredictURL string
	MetricsURL string
	// Timeout of 0 leaves request lifetime to the transport and the context
	Timeout   time.Duration
	UserAgent string

	// HTTPClient overrides the default client; Timeout is then ignored
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Upload is a file to submit for prediction
type Upload struct {
	// Name is sent as the multipart filename
	Name string
	// Content is read once
	Content io.Reader
}

// Client talks to the prediction and metrics endpoints. Every call is a
// single attempt.
type Client struct {
	predictURL *url.URL
	metricsURL *url.URL
	client     *http.Client
	userAgent  string
	log        *logger.Logger
	newID      func() string
}

// NewClient validates the endpoint URLs and builds a client
func NewClient(cfg Config) (*Client, error) {
	predictURL, err := parseEndpoint("predict", cfg.PredictURL)
	if err != nil {
		return nil, err
	}

	var metricsURL *url.URL
	if cfg.MetricsURL != "" {
		if metricsURL, err = parseEndpoint("metrics", cfg.MetricsURL); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		predictURL: predictURL,
		metricsURL: metricsURL,
		client:     httpClient,
		userAgent:  cfg.UserAgent,
		log:        log,
		newID:      func() string { return uuid.NewString() },
	}, nil
}

// HasMetrics reports whether a metrics endpoint is configured
func (c *Client) HasMetrics() bool {
	return c.metricsURL != nil
}

// FetchMetrics issues one GET against the metrics endpoint
func (c *Client) FetchMetrics(ctx context.Context) (*Metrics, error) {
	const op = "metrics"
	if c.metricsURL == nil {
		return nil, newError(ErrTypeConfiguration, op, "", "metrics endpoint not configured", nil)
	}
	endpoint := c.metricsURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, newError(ErrTypeConfiguration, op, endpoint, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req, c.newID())

	status, body, err := c.do(ctx, op, req)
	if err != nil {
		return nil, err
	}

	metrics, err := DecodeMetrics(body)
	if err != nil {
		return nil, &Error{Type: ErrTypeDecode, Op: op, URL: endpoint, StatusCode: status, Message: "unusable metrics payload", Cause: err}
	}

	c.log.DebugWithFields("metrics fetched", []logger.Field{logger.F("status", status), logger.F("accuracy", metrics.Accuracy)})
	return metrics, nil
}

// Predict posts the upload as multipart form data under FileField and
// decodes the reply. The HTTP status is not interpreted: the body decides.
func (c *Client) Predict(ctx context.Context, up Upload) (Outcome, error) {
	const op = "predict"
	endpoint := c.predictURL.String()

	body, contentType, err := buildMultipart(up)
	if err != nil {
		return Outcome{}, newError(ErrTypeInput, op, endpoint, "failed to read upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Outcome{}, newError(ErrTypeConfiguration, op, endpoint, "failed to create request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	requestID := c.newID()
	c.setCommonHeaders(req, requestID)

	start := time.Now()
	status, respBody, err := c.do(ctx, op, req)
	if err != nil {
		return Outcome{}, err
	}

	outcome, err := DecodeOutcome(respBody)
	if err != nil {
		return Outcome{}, &Error{Type: ErrTypeDecode, Op: op, URL: endpoint, StatusCode: status, Message: "unusable prediction payload", Cause: err}
	}

	c.log.InfoWithFields("prediction received", []logger.Field{
		logger.RequestID(requestID),
		logger.F("status", status),
		logger.F("outcome", outcome.Kind),
		logger.Duration(time.Since(start)),
	})
	return outcome, nil
}

func (c *Client) setCommonHeaders(req *http.Request, requestID string) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("X-Request-ID", requestID)
}

func (c *Client) do(ctx context.Context, op string, req *http.Request) (int, []byte, error) {
	endpoint := req.URL.String()

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, transportError(ctx, op, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		e := transportError(ctx, op, endpoint, err)
		e.StatusCode = resp.StatusCode
		return resp.StatusCode, nil, e
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.log.DebugWithFields("non-success status", []logger.Field{logger.F("op", op), logger.F("status", resp.StatusCode)})
	}
	return resp.StatusCode, body, nil
}

func buildMultipart(up Upload) (io.Reader, string, error) {
	if up.Content == nil {
		return nil, "", fmt.Errorf("upload has no content")
	}
	name := up.Name
	if name == "" {
		name = "upload"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(FileField, name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func parseEndpoint(op, raw string) (*url.URL, error) {
	if raw == "" {
		return nil, newError(ErrTypeConfiguration, op, "", "endpoint URL is required", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, newError(ErrTypeConfiguration, op, raw, "invalid endpoint URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newError(ErrTypeConfiguration, op, raw, "endpoint URL must be http or https", nil)
	}
	return u, nil
}
