package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 64 << 20

// Client talks to the Codeforces API. Every failure surfaces as
// problemdomain.ErrJudgeUnavailable, except unknown handles.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    observability.JudgeMetrics
	logger     *slog.Logger
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.JudgeConfig, metrics observability.JudgeMetrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "codeforces",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Judge circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, max(1, cfg.Burst)),
		breaker:    breaker,
		metrics:    metrics,
		logger:     logger,
	}
}

// ProblemCatalog fetches the full problemset.
func (c *Client) ProblemCatalog(ctx context.Context) ([]problemdomain.Problem, error) {
	var res problemsetResult
	if err := c.call(ctx, "problemset.problems", nil, &res); err != nil {
		return nil, err
	}
	out := make([]problemdomain.Problem, 0, len(res.Problems))
	for _, p := range res.Problems {
		out = append(out, p.toDomain())
	}
	return out, nil
}

// Submissions fetches the latest limit submissions of handle, newest first.
func (c *Client) Submissions(ctx context.Context, handle string, limit int) ([]problemdomain.Submission, error) {
	params := url.Values{"handle": {handle}, "from": {"1"}}
	if limit > 0 {
		params.Set("count", strconv.Itoa(limit))
	}

	var res []apiSubmission
	if err := c.call(ctx, "user.status", params, &res); err != nil {
		return nil, err
	}
	out := make([]problemdomain.Submission, 0, len(res))
	for _, s := range res {
		out = append(out, s.toDomain())
	}
	return out, nil
}

// Rating returns the rating after the last rated contest, or 0 if unrated.
func (c *Client) Rating(ctx context.Context, handle string) (int, error) {
	var res []apiRatingChange
	if err := c.call(ctx, "user.rating", url.Values{"handle": {handle}}, &res); err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[len(res)-1].NewRating, nil
}

// LookupHandle returns the canonical spelling of handle.
func (c *Client) LookupHandle(ctx context.Context, handle string) (string, error) {
	var res []apiUser
	if err := c.call(ctx, "user.info", url.Values{"handles": {handle}}, &res); err != nil {
		var failed *FailedError
		if errors.As(err, &failed) && strings.Contains(strings.ToLower(failed.Comment), "not found") {
			return "", fmt.Errorf("%w: %s", problemdomain.ErrHandleNotFound, failed.Comment)
		}
		return "", err
	}
	if len(res) == 0 {
		return "", problemdomain.ErrHandleNotFound
	}
	return res[0].Handle, nil
}

// Contests lists contests; gym selects gym contests.
func (c *Client) Contests(ctx context.Context, gym bool) ([]problemdomain.Contest, error) {
	var res []apiContest
	if err := c.call(ctx, "contest.list", url.Values{"gym": {strconv.FormatBool(gym)}}, &res); err != nil {
		return nil, err
	}
	out := make([]problemdomain.Contest, 0, len(res))
	for _, ct := range res {
		out = append(out, ct.toDomain())
	}
	return out, nil
}

// Standings fetches the official scoreboard of contestID.
func (c *Client) Standings(ctx context.Context, contestID int) (problemdomain.Standings, error) {
	params := url.Values{
		"contestId":      {strconv.Itoa(contestID)},
		"showUnofficial": {"false"},
	}
	var res apiStandings
	if err := c.call(ctx, "contest.standings", params, &res); err != nil {
		return problemdomain.Standings{}, err
	}
	return res.toDomain(), nil
}

// call performs one throttled, breaker-guarded API request and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	start := time.Now()
	status := "ok"
	defer func() {
		c.metrics.RecordJudgeRequest(ctx, method, status, time.Since(start))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		status = "throttled"
		return fmt.Errorf("%w: %s: %v", problemdomain.ErrJudgeUnavailable, method, err)
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, method, params)
	})
	if err != nil {
		status = "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = "open"
		}
		c.logger.WarnContext(ctx, "Judge request failed",
			slog.String("method", method),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %s: %v", problemdomain.ErrJudgeUnavailable, method, err)
	}

	env := raw.(*envelope)
	if env.Status != "OK" {
		status = "failed"
		return &FailedError{Method: method, Comment: env.Comment}
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		status = "malformed"
		return fmt.Errorf("%w: %s: decode result: %v", problemdomain.ErrJudgeUnavailable, method, err)
	}
	return nil
}

// do issues the HTTP request. A FAILED envelope on a 4xx response is a valid
// answer and does not count against the breaker.
func (c *Client) do(ctx context.Context, method string, params url.Values) (*envelope, error) {
	endpoint := c.baseURL + "/" + method
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "lockout-bot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	switch {
	case resp.StatusCode == http.StatusOK && decodeErr == nil:
		return &env, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests &&
		decodeErr == nil && env.Status == "FAILED":
		return &env, nil
	case decodeErr != nil:
		return nil, fmt.Errorf("status %d: malformed payload: %w", resp.StatusCode, decodeErr)
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
