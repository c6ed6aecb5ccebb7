// Package bridge talks to the mining backend through its command bridge.
package bridge

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Invoker sends one named command with an argument payload to the backend.
// out, when non-nil, receives the decoded result.
type Invoker interface {
	Invoke(ctx context.Context, command string, args any, out any) error
}

// slowCommandThreshold is how long a command may take before it is logged.
const slowCommandThreshold = time.Second

// HTTPConfig holds configuration for HTTPInvoker.
type HTTPConfig struct {
	BaseURL            string
	Username           string
	Password           string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
}

// HTTPInvoker implements Invoker over the backend's local HTTP bridge:
// POST {base}/invoke/{command} with the JSON-encoded args.
type HTTPInvoker struct {
	http   *http.Client
	config HTTPConfig
	log    logrus.FieldLogger
}

// NewHTTPInvoker constructs an HTTPInvoker from the given config.
// It configures TLS skip-verify and request timeout from the config.
// Returns an error if BaseURL is empty.
func NewHTTPInvoker(cfg HTTPConfig, log logrus.FieldLogger) (*HTTPInvoker, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	return &HTTPInvoker{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config: cfg,
		log:    log.WithField("component", "bridge"),
	}, nil
}

// BaseURL returns the configured base URL of the backend bridge.
func (c *HTTPInvoker) BaseURL() string {
	return c.config.BaseURL
}

// Invoke performs one command round trip. A non-2xx answer is returned as a
// *CommandError carrying the backend's message.
func (c *HTTPInvoker) Invoke(ctx context.Context, command string, args any, out any) error {
	start := time.Now()
	defer func() {
		if elapsed := time.Since(start); elapsed > slowCommandThreshold {
			c.log.WithField("command", command).Warnf("%s took too long: %v", command, elapsed)
		}
	}()

	if args == nil {
		args = struct{}{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%s: encode args: %w", command, err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/invoke/" + url.PathEscape(command)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", command, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.config.Username != "" || c.config.Password != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", command, err)
	}
	defer resp.Body.Close()

	const maxResponseBytes = 4 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", command, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &CommandError{
			Command: command,
			Status:  resp.StatusCode,
			Message: truncate(bytes.TrimSpace(body), 200),
		}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", command, err)
	}
	return nil
}

// CommandError is a command the backend received and rejected.
type CommandError struct {
	Command string
	Status  int
	Message string
}

func (e *CommandError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Command, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
