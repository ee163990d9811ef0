package railclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/bescout/fantasy-events/internal/domain/wallet"
	"github.com/bescout/fantasy-events/internal/platform/resilience"
)

var errRailTransient = crerr.New("payment rail transient failure")

type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client sends idempotent credit requests to the payment rail. The rail
// deduplicates on the Idempotency-Key header; a replay comes back as 200
// with already_applied set instead of 201.
type Client struct {
	client         *http.Client
	baseURL        string
	token          string
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid payment rail base URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		client:         &http.Client{Timeout: timeout},
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

func (c *Client) Credit(ctx context.Context, req wallet.CreditRequest) (wallet.CreditOutcome, error) {
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return wallet.CreditOutcome{}, crerr.New("idempotency key is required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return wallet.CreditOutcome{}, crerr.New("user id is required")
	}
	if req.Amount <= 0 {
		return wallet.CreditOutcome{}, crerr.Newf("credit amount must be positive, got %d", req.Amount)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "payment rail circuit breaker rejected request", "state", c.breaker.State())
			return wallet.CreditOutcome{}, fmt.Errorf("payment rail is temporarily unavailable: %w", err)
		}
	}

	payload, err := sonic.Marshal(creditRequestBody{
		UserID:    req.UserID,
		Amount:    req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		return wallet.CreditOutcome{}, crerr.Wrap(err, "marshal credit request")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.Write(payload); err != nil {
		return wallet.CreditOutcome{}, crerr.Wrap(err, "buffer credit request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/credits", strings.NewReader(buf.String()))
	if err != nil {
		return wallet.CreditOutcome{}, crerr.Wrap(err, "create credit request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		callErr := fmt.Errorf("%w: post credit key=%s: %v", errRailTransient, req.IdempotencyKey, err)
		c.recordCircuitResult(callErr)
		return wallet.CreditOutcome{}, callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return wallet.CreditOutcome{}, crerr.Wrap(err, "read credit response")
	}

	if resp.StatusCode/100 != 2 {
		raw := strings.TrimSpace(string(body))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			callErr := fmt.Errorf("%w: post credit key=%s status=%d body=%s", errRailTransient, req.IdempotencyKey, resp.StatusCode, raw)
			c.recordCircuitResult(callErr)
			return wallet.CreditOutcome{}, callErr
		}
		callErr := fmt.Errorf("post credit key=%s status=%d body=%s", req.IdempotencyKey, resp.StatusCode, raw)
		c.recordCircuitResult(callErr)
		return wallet.CreditOutcome{}, callErr
	}

	var decoded creditResponseBody
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return wallet.CreditOutcome{}, crerr.Wrap(err, "unmarshal credit response")
	}

	c.recordCircuitResult(nil)
	c.logger.InfoContext(ctx, "payment rail credit",
		"idempotency_key", req.IdempotencyKey,
		"applied", !decoded.AlreadyApplied,
		"rail_ref", decoded.RailRef,
	)

	return wallet.CreditOutcome{
		Applied: !decoded.AlreadyApplied,
		RailRef: decoded.RailRef,
	}, nil
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && crerr.Is(err, errRailTransient) {
		c.breaker.RecordFailure()
		return
	}
	if err == nil {
		c.breaker.RecordSuccess()
	}
}

type creditRequestBody struct {
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

type creditResponseBody struct {
	AlreadyApplied bool   `json:"already_applied"`
	RailRef        string `json:"rail_ref"`
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
