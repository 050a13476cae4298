package detection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
	"github.com/riskibarqy/diamond-insights/internal/usecase"
)

const (
	endpointDetect   = "detect"
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 4 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client posts camera frames to the jersey detection service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

var _ usecase.DetectionProvider = (*Client)(nil)

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

type detectResponse struct {
	Status     string                  `json:"status"`
	Message    string                  `json:"message"`
	Detections []detectionItem         `json:"detections"`
	Players    map[string]playerRecord `json:"players"`
}

type detectionItem struct {
	// Number arrives as either a JSON string or a number.
	Number     any     `json:"number"`
	Confidence float64 `json:"confidence"`
}

type playerRecord struct {
	Info  map[string]any `json:"info"`
	Stats map[string]any `json:"stats"`
}

func (c *Client) DetectPlayers(ctx context.Context, filename string, image []byte) (usecase.DetectionResult, error) {
	if c == nil {
		return usecase.DetectionResult{}, fmt.Errorf("%w: detection service is not configured", usecase.ErrDependencyUnavailable)
	}

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return usecase.DetectionResult{}, crerr.Wrap(err, "create multipart file part")
	}
	if _, err := part.Write(image); err != nil {
		return usecase.DetectionResult{}, crerr.Wrap(err, "write multipart image")
	}
	if err := writer.Close(); err != nil {
		return usecase.DetectionResult{}, crerr.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body.B))
	if err != nil {
		return usecase.DetectionResult{}, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpointDetect, Err: crerr.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return usecase.DetectionResult{}, ctx.Err()
		}
		return usecase.DetectionResult{}, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpointDetect, Err: crerr.Wrap(err, "send request")}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return usecase.DetectionResult{}, &usecase.FetchError{Kind: usecase.ErrTransport, Endpoint: endpointDetect, Err: crerr.Wrap(err, "read response body")}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "detection service returned non-success status", "status", resp.StatusCode)
		return usecase.DetectionResult{}, &usecase.FetchError{
			Kind:       usecase.ErrUpstreamStatus,
			Endpoint:   endpointDetect,
			StatusCode: resp.StatusCode,
		}
	}

	var payload detectResponse
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.DetectionResult{}, &usecase.FetchError{Kind: usecase.ErrDecode, Endpoint: endpointDetect, Err: crerr.Wrap(err, "decode detect payload")}
	}
	return mapDetectResponse(payload), nil
}

func mapDetectResponse(payload detectResponse) usecase.DetectionResult {
	out := usecase.DetectionResult{
		Status:     strings.TrimSpace(payload.Status),
		Message:    strings.TrimSpace(payload.Message),
		Detections: make([]usecase.JerseyDetection, 0, len(payload.Detections)),
		Players:    make([]usecase.DetectedPlayer, 0, len(payload.Players)),
	}
	for _, item := range payload.Detections {
		number := jerseyNumber(item.Number)
		if number == "" {
			continue
		}
		out.Detections = append(out.Detections, usecase.JerseyDetection{Number: number, Confidence: item.Confidence})
	}

	jerseys := make([]string, 0, len(payload.Players))
	for jersey := range payload.Players {
		jerseys = append(jerseys, jersey)
	}
	sort.Strings(jerseys)
	for _, jersey := range jerseys {
		record := payload.Players[jersey]
		out.Players = append(out.Players, usecase.DetectedPlayer{
			Jersey: jersey,
			Info:   record.Info,
			Stats:  record.Stats,
		})
	}
	return out
}

func jerseyNumber(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}
