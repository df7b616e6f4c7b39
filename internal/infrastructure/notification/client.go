package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	"github.com/riskibarqy/chit-fund/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const emailPath = "/notify/email"

var errNotifierTransient = crerr.New("notification service transient failure")

type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts email notifications to the notification service.
type Client struct {
	http     *fasthttp.Client
	endpoint string
	timeout  time.Duration
	breaker  *resilience.CircuitBreaker
	logger   *logging.Logger
}

func NewClient(cfg ClientConfig, logger *logging.Logger) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid NOTIFIER_BASE_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "chit-fund-notifier",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		endpoint: baseURL + emailPath,
		timeout:  timeout,
		breaker:  resilience.FromConfig(cfg.CircuitBreaker),
		logger:   logger,
	}, nil
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *Client) Notify(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return crerr.New("notification recipient is required")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("notification.endpoint", c.endpoint),
			attribute.String("notification.subject", subject),
		)
	}

	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.send(ctx, emailRequest{To: to, Subject: subject, Body: body})
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "notification circuit breaker rejected request", "state", c.breaker.State())
		}
		return err
	}
	return nil
}

func (c *Client) send(ctx context.Context, payload emailRequest) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return crerr.Wrap(err, "encode notification payload")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBody(buf.B)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "post %s", c.endpoint), errNotifierTransient)
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		return nil
	}
	callErr := fmt.Errorf("notification service status=%d body=%s", status, truncate(string(resp.Body()), 512))
	if status >= 500 || status == fasthttp.StatusTooManyRequests {
		return crerr.Mark(callErr, errNotifierTransient)
	}
	return callErr
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errNotifierTransient)
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
