package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	"github.com/riskibarqy/chit-fund/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errDirectoryTransient = crerr.New("member directory transient failure")

type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client looks members up in the user service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig, httpClient *http.Client, logger *logging.Logger) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid DIRECTORY_BASE_URL")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		breaker:    resilience.FromConfig(cfg.CircuitBreaker),
		logger:     logger,
	}, nil
}

func (c *Client) GetMember(ctx context.Context, memberID string) (member.Profile, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return member.Profile{}, crerr.Wrap(member.ErrNotFound, "member id is empty")
	}

	var profile member.Profile
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var callErr error
		profile, callErr = c.fetch(ctx, memberID)
		return callErr
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "member directory circuit breaker rejected request",
				"member_id", memberID,
				"state", c.breaker.State(),
			)
		}
		return member.Profile{}, err
	}
	return profile, nil
}

func (c *Client) fetch(ctx context.Context, memberID string) (member.Profile, error) {
	endpoint := c.baseURL + "/api/users/" + url.PathEscape(memberID)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("directory.member_id", memberID))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return member.Profile{}, crerr.Wrap(err, "create member directory request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return member.Profile{}, crerr.Mark(crerr.Wrapf(err, "get member %s", memberID), errDirectoryTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return member.Profile{}, crerr.Mark(crerr.Wrap(err, "read member directory response"), errDirectoryTransient)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return member.Profile{}, crerr.Wrapf(member.ErrNotFound, "member %s", memberID)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return member.Profile{}, crerr.Mark(
			fmt.Errorf("member directory status=%d body=%s", resp.StatusCode, truncate(string(body), 512)),
			errDirectoryTransient,
		)
	case resp.StatusCode != http.StatusOK:
		return member.Profile{}, fmt.Errorf("member directory status=%d body=%s", resp.StatusCode, truncate(string(body), 512))
	}

	var decoded userResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return member.Profile{}, crerr.Wrap(err, "decode member directory response")
	}

	profile := member.Profile{
		ID:    memberID,
		Email: firstNonEmpty(decoded.UserEmail, decoded.Email),
		Name:  firstNonEmpty(decoded.UserName, decoded.Name),
	}
	return profile, nil
}

type userResponse struct {
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errDirectoryTransient)
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

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
