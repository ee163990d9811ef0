package oracleclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/bescout/fantasy-events/internal/domain/card"
	"github.com/bescout/fantasy-events/internal/domain/holding"
	"github.com/bescout/fantasy-events/internal/platform/cache"
	"github.com/bescout/fantasy-events/internal/platform/resilience"
)

var errOracleTransient = crerr.New("holdings oracle transient failure")

type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	CatalogTTL     time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the holdings oracle over HTTP. Holdings counts are
// always fetched fresh; only the immutable card catalog goes through the
// TTL cache.
type Client struct {
	http           *fasthttp.Client
	baseURL        string
	apiKey         string
	timeout        time.Duration
	catalog        *cache.Store
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	logger         *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid holdings oracle base URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	catalogTTL := cfg.CatalogTTL
	if catalogTTL <= 0 {
		catalogTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		timeout:        timeout,
		catalog:        cache.NewStore(catalogTTL),
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		logger:         logger,
	}, nil
}

func (c *Client) HoldingsForUser(ctx context.Context, userID string) (map[string]int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, crerr.New("user id is required")
	}

	body, err := c.doRequest(ctx, fasthttp.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/holdings", nil)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Holdings map[string]int `json:"holdings"`
	}
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, crerr.Wrap(err, "unmarshal holdings response")
	}
	if decoded.Holdings == nil {
		decoded.Holdings = map[string]int{}
	}

	return decoded.Holdings, nil
}

func (c *Client) Profile(ctx context.Context, userID string) (holding.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return holding.Profile{}, crerr.New("user id is required")
	}

	body, err := c.doRequest(ctx, fasthttp.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/profile", nil)
	if err != nil {
		return holding.Profile{}, err
	}

	var decoded struct {
		UserID           string `json:"user_id"`
		SubscriptionTier int    `json:"subscription_tier"`
		ClubID           string `json:"club_id"`
	}
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return holding.Profile{}, crerr.Wrap(err, "unmarshal profile response")
	}

	return holding.Profile{
		UserID:           decoded.UserID,
		SubscriptionTier: decoded.SubscriptionTier,
		ClubID:           decoded.ClubID,
	}, nil
}

func (c *Client) CardsByID(ctx context.Context, cardIDs []string) (map[string]card.Card, error) {
	result := make(map[string]card.Card, len(cardIDs))
	var missing []string
	for _, id := range cardIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if cached, ok := c.catalog.Get(ctx, "card::"+id); ok {
			if c, ok := cached.(card.Card); ok {
				result[id] = c
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	payload, err := sonic.Marshal(map[string]any{"card_ids": missing})
	if err != nil {
		return nil, crerr.Wrap(err, "marshal card batch request")
	}

	body, err := c.doRequest(ctx, fasthttp.MethodPost, "/v1/cards/batch", payload)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Cards []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			ClubID   string `json:"club_id"`
			Position string `json:"position"`
		} `json:"cards"`
	}
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, crerr.Wrap(err, "unmarshal card batch response")
	}

	for _, row := range decoded.Cards {
		c2 := card.Card{
			ID:       row.ID,
			Name:     row.Name,
			ClubID:   row.ClubID,
			Position: card.Position(row.Position),
		}
		result[c2.ID] = c2
		c.catalog.Set(ctx, "card::"+c2.ID, c2)
	}

	return result, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "holdings oracle circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("holdings oracle is temporarily unavailable: %w", err)
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		callErr := fmt.Errorf("%w: %s %s: %v", errOracleTransient, method, path, err)
		c.recordCircuitResult(callErr)
		return nil, callErr
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		raw := strings.TrimSpace(string(resp.Body()))
		if len(raw) > 512 {
			raw = raw[:512]
		}
		if status >= 500 || status == fasthttp.StatusTooManyRequests {
			callErr := fmt.Errorf("%w: %s %s status=%d body=%s", errOracleTransient, method, path, status, raw)
			c.recordCircuitResult(callErr)
			return nil, callErr
		}
		callErr := fmt.Errorf("holdings oracle %s %s status=%d body=%s", method, path, status, raw)
		c.recordCircuitResult(callErr)
		return nil, callErr
	}

	c.recordCircuitResult(nil)
	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && crerr.Is(err, errOracleTransient) {
		c.breaker.RecordFailure()
		return
	}
	if err == nil {
		c.breaker.RecordSuccess()
	}
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
