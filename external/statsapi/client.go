package statsapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/diamond-insights/internal/domain/game"
	"github.com/riskibarqy/diamond-insights/internal/domain/player"
	"github.com/riskibarqy/diamond-insights/internal/platform/cache"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
	"github.com/riskibarqy/diamond-insights/internal/platform/resilience"
	"github.com/riskibarqy/diamond-insights/internal/usecase"
)

const (
	defaultBaseURL      = "https://statsapi.mlb.com/api/v1"
	defaultTimeout      = 10 * time.Second
	defaultRetryBackoff = time.Second
	maxResponseBytes    = 8 << 20

	mlbSportID        = "1"
	scheduleHydrate   = "team,linescore,venue"
	scheduleGameTypes = "R,S,E"
	regularSeasonType = "R"
	providerDate      = "2006-01-02"
)

const (
	endpointSchedule = "schedule"
	endpointLeaders  = "stats/leaders"
	endpointPerson   = "people"
	endpointStats    = "people/stats"
)

const (
	outcomeSuccess   = "success"
	outcomeCacheHit  = "cache_hit"
	outcomeTransport = "transport_error"
	outcomeStatus    = "status_error"
	outcomeDecode    = "decode_error"
	outcomeCircuit   = "circuit_open"
	outcomeCanceled  = "canceled"
)

// RequestObserver receives one observation per upstream request.
type RequestObserver interface {
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// Cache is optional; nil disables response caching.
	Cache    cache.Cache
	Observer RequestObserver
}

// Client is the gateway to the MLB stats API. Each exported method issues
// exactly one logical request and decodes the body once.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight[[]byte]
	cache        cache.Cache
	observer     RequestObserver
}

var _ usecase.StatsProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		timeout:      timeout,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		cache:        cfg.Cache,
		observer:     cfg.Observer,
	}
}

func (c *Client) FetchSchedule(ctx context.Context, startDate, endDate time.Time) ([]game.DateBucket, error) {
	query := url.Values{}
	query.Set("sportId", mlbSportID)
	query.Set("hydrate", scheduleHydrate)
	query.Set("startDate", startDate.Format(providerDate))
	query.Set("endDate", endDate.Format(providerDate))
	query.Set("gameTypes", scheduleGameTypes)
	query.Set("sortBy", "gameDate")

	var envelope ScheduleResponse
	if err := c.doJSON(ctx, endpointSchedule, "/schedule", query, &envelope); err != nil {
		return nil, err
	}
	return mapSchedule(envelope, c.logger), nil
}

func (c *Client) FetchLeaders(ctx context.Context, q usecase.LeadersQuery) ([]usecase.LeaderRecord, error) {
	if strings.TrimSpace(q.Category) == "" {
		return nil, fmt.Errorf("%w: leader category is required", usecase.ErrInvalidInput)
	}
	if q.Limit < 1 {
		return nil, fmt.Errorf("%w: leaders limit must be at least 1", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("sportId", mlbSportID)
	query.Set("leaderCategories", q.Category)
	query.Set("limit", strconv.Itoa(q.Limit))
	query.Set("leaderGameTypes", regularSeasonType)
	if q.Season > 0 {
		query.Set("season", strconv.Itoa(q.Season))
	}
	if q.Group != "" {
		query.Set("statGroup", string(q.Group))
	}

	var envelope LeadersResponse
	if err := c.doJSON(ctx, endpointLeaders, "/stats/leaders", query, &envelope); err != nil {
		return nil, err
	}
	return mapLeaders(envelope, q), nil
}

func (c *Client) FetchPerson(ctx context.Context, personID int64) (usecase.ExternalPerson, error) {
	if personID <= 0 {
		return usecase.ExternalPerson{}, fmt.Errorf("%w: person id must be greater than zero", usecase.ErrInvalidInput)
	}

	var envelope PeopleResponse
	path := fmt.Sprintf("/people/%d", personID)
	if err := c.doJSON(ctx, endpointPerson, path, nil, &envelope); err != nil {
		return usecase.ExternalPerson{}, err
	}
	if len(envelope.People) == 0 {
		return usecase.ExternalPerson{}, &usecase.FetchError{
			Kind:     usecase.ErrDecode,
			Endpoint: endpointPerson,
			Err:      crerr.Newf("people payload for person_id=%d is empty", personID),
		}
	}
	return mapPerson(envelope.People[0]), nil
}

func (c *Client) FetchSeasonStats(ctx context.Context, personID int64, group player.Group, season int) (usecase.ExternalSeasonStats, error) {
	if personID <= 0 {
		return usecase.ExternalSeasonStats{}, fmt.Errorf("%w: person id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("stats", "season")
	query.Set("group", string(group))
	query.Set("gameType", regularSeasonType)
	if season > 0 {
		query.Set("season", strconv.Itoa(season))
	}

	var envelope StatsResponse
	path := fmt.Sprintf("/people/%d/stats", personID)
	if err := c.doJSON(ctx, endpointStats, path, query, &envelope); err != nil {
		return usecase.ExternalSeasonStats{}, err
	}
	return mapSeasonStats(envelope, personID, group, season), nil
}

// doJSON fetches path and decodes the body into target. Failures are
// *usecase.FetchError except caller cancellation, which returns ctx.Err().
func (c *Client) doJSON(ctx context.Context, endpoint, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	started := time.Now()
	raw, cached, err := c.fetchBody(ctx, endpoint, fullURL)
	if err != nil {
		c.observe(endpoint, outcomeFor(ctx, err), started)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !usecase.IsFetchFailure(err) && isContextError(err) {
			return &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpoint, Err: crerr.Wrap(err, "shared request aborted")}
		}
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		c.observe(endpoint, outcomeDecode, started)
		return &usecase.FetchError{
			Kind:     usecase.ErrDecode,
			Endpoint: endpoint,
			Err:      crerr.Wrapf(err, "decode %s payload", endpoint),
		}
	}

	if cached {
		c.observe(endpoint, outcomeCacheHit, started)
		return nil
	}
	c.observe(endpoint, outcomeSuccess, started)
	if c.cache != nil {
		if err := c.cache.Set(ctx, fullURL, raw); err != nil {
			c.logger.WarnContext(ctx, "statsapi cache write failed", "endpoint", endpoint, "error", err)
		}
	}
	return nil
}

// fetchBody returns the raw body for fullURL, consulting the cache first and
// collapsing identical in-flight requests.
func (c *Client) fetchBody(ctx context.Context, endpoint, fullURL string) ([]byte, bool, error) {
	if c.cache != nil {
		raw, ok, err := c.cache.Get(ctx, fullURL)
		if err != nil {
			c.logger.WarnContext(ctx, "statsapi cache read failed", "endpoint", endpoint, "error", err)
		} else if ok {
			return raw, true, nil
		}
	}

	raw, _, err := c.flight.Do(ctx, fullURL, func() ([]byte, error) {
		// Collapsed waiters share this call; none of them may cancel it.
		// Each attempt is bounded by the request timeout in send.
		shared := context.WithoutCancel(ctx)
		if c.breaker == nil {
			return c.executeRequest(shared, endpoint, fullURL)
		}

		var body []byte
		err := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(shared, endpoint, fullURL)
			return reqErr
		}, isCircuitFailure)
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(shared, "statsapi circuit breaker rejected request",
				"endpoint", endpoint,
				"state", c.breaker.State(),
			)
			return nil, &usecase.FetchError{
				Kind:     usecase.ErrDependencyUnavailable,
				Endpoint: endpoint,
				Err:      err,
			}
		}
		return body, err
	})
	return raw, false, err
}

func (c *Client) executeRequest(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.send(ctx, endpoint, fullURL)
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !isRetryable(err) || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * c.retryBackoff
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "statsapi request failed", "endpoint", endpoint, "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpoint, Err: crerr.Wrap(err, "build request")}
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpoint, Err: crerr.Wrap(err, "send request")}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpoint, Err: crerr.Wrap(err, "read response body")}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &usecase.FetchError{
			Kind:       usecase.ErrUpstreamStatus,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        crerr.Newf("body=%s", abbreviateBody(raw)),
		}
	}
	return raw, nil
}

func (c *Client) observe(endpoint, outcome string, started time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstream(endpoint, outcome, time.Since(started))
}

func outcomeFor(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return outcomeCanceled
	case stderrors.Is(err, usecase.ErrDependencyUnavailable):
		return outcomeCircuit
	case stderrors.Is(err, usecase.ErrUpstreamStatus):
		return outcomeStatus
	default:
		return outcomeTransport
	}
}

// isCircuitFailure counts transport failures and server-side statuses only.
// Client errors such as 404 mean the provider is healthy.
func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	var fetchErr *usecase.FetchError
	if !stderrors.As(err, &fetchErr) {
		return true
	}
	if stderrors.Is(fetchErr.Kind, usecase.ErrUpstreamStatus) {
		return isRetryableStatus(fetchErr.StatusCode)
	}
	return true
}

func isContextError(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryable(err error) bool {
	var fetchErr *usecase.FetchError
	if !stderrors.As(err, &fetchErr) {
		return false
	}
	if stderrors.Is(fetchErr.Kind, usecase.ErrTransport) {
		return true
	}
	return stderrors.Is(fetchErr.Kind, usecase.ErrUpstreamStatus) && isRetryableStatus(fetchErr.StatusCode)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	const limit = 256
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
