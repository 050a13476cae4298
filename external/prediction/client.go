package prediction

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
	"github.com/riskibarqy/diamond-insights/internal/usecase"
)

const (
	endpointPredict  = "predict"
	defaultTimeout   = 60 * time.Second
	maxResponseBytes = 4 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client requests tactical predictions for a game.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

var _ usecase.PredictionProvider = (*Client)(nil)

// NewClient returns nil when no base URL is configured.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil
	}

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

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

type predictResponse struct {
	TacticalProbabilities map[string]map[string]float64 `json:"tactical_probabilities"`
	TopTactics            map[string]any                `json:"top_tactics"`
	Recommendations       []recommendation              `json:"recommendations"`
	ContextAnalysis       map[string]any                `json:"context_analysis"`
	GeminiAnalysis        *string                       `json:"gemini_analysis"`
}

type recommendation struct {
	Tactic          string   `json:"tactic"`
	Probability     float64  `json:"probability"`
	Reasoning       string   `json:"reasoning"`
	SpecificActions []string `json:"specific_actions"`
}

func (c *Client) PredictGame(ctx context.Context, gameID int64) (usecase.GamePrediction, error) {
	if c == nil {
		return usecase.GamePrediction{}, fmt.Errorf("%w: prediction service is not configured", usecase.ErrDependencyUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/predict/%d", c.baseURL, gameID), nil)
	if err != nil {
		return usecase.GamePrediction{}, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpointPredict, Err: crerr.Wrap(err, "build request")}
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return usecase.GamePrediction{}, ctx.Err()
		}
		return usecase.GamePrediction{}, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpointPredict, Err: crerr.Wrap(err, "send request")}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return usecase.GamePrediction{}, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpointPredict, Err: crerr.Wrap(err, "read response body")}
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return usecase.GamePrediction{}, fmt.Errorf("%w: no prediction data for game %d", usecase.ErrNotFound, gameID)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.WarnContext(ctx, "prediction service returned non-success status", "game_id", gameID, "status", resp.StatusCode)
		return usecase.GamePrediction{}, &usecase.FetchError{
			Kind:       usecase.ErrUpstreamStatus,
			Endpoint:   endpointPredict,
			StatusCode: resp.StatusCode,
		}
	}

	var payload predictResponse
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.GamePrediction{}, &usecase.FetchError{Kind: usecase.ErrDecode, Endpoint: endpointPredict, Err: crerr.Wrap(err, "decode predict payload")}
	}
	return mapPrediction(gameID, payload), nil
}

func mapPrediction(gameID int64, payload predictResponse) usecase.GamePrediction {
	out := usecase.GamePrediction{
		GameID:                gameID,
		TacticalProbabilities: payload.TacticalProbabilities,
		TopTactics:            payload.TopTactics,
		ContextAnalysis:       payload.ContextAnalysis,
		Recommendations:       make([]usecase.TacticRecommendation, 0, len(payload.Recommendations)),
	}
	if out.TacticalProbabilities == nil {
		out.TacticalProbabilities = map[string]map[string]float64{}
	}
	if payload.GeminiAnalysis != nil {
		out.Analysis = strings.TrimSpace(*payload.GeminiAnalysis)
	}
	for _, rec := range payload.Recommendations {
		out.Recommendations = append(out.Recommendations, usecase.TacticRecommendation{
			Tactic:          rec.Tactic,
			Probability:     rec.Probability,
			Reasoning:       rec.Reasoning,
			SpecificActions: rec.SpecificActions,
		})
	}
	return out
}
