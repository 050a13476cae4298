package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
)

// MaxDetectionImageBytes bounds uploads forwarded to the detection service.
const MaxDetectionImageBytes = 10 << 20

type JerseyDetection struct {
	Number     string
	Confidence float64
}

type DetectedPlayer struct {
	Jersey string
	Info   map[string]any
	Stats  map[string]any
}

type DetectionResult struct {
	Status     string
	Message    string
	Detections []JerseyDetection
	Players    []DetectedPlayer
}

type TacticRecommendation struct {
	Tactic          string
	Probability     float64
	Reasoning       string
	SpecificActions []string
}

type GamePrediction struct {
	GameID                int64
	TacticalProbabilities map[string]map[string]float64
	TopTactics            map[string]any
	Recommendations       []TacticRecommendation
	ContextAnalysis       map[string]any
	Analysis              string
}

type DetectionProvider interface {
	DetectPlayers(ctx context.Context, filename string, image []byte) (DetectionResult, error)
}

type PredictionProvider interface {
	PredictGame(ctx context.Context, gameID int64) (GamePrediction, error)
}

// GameInsightService forwards requests to the jersey detection and tactical
// prediction services. Either provider may be nil when not configured.
type GameInsightService struct {
	detector  DetectionProvider
	predictor PredictionProvider
	logger    *logging.Logger
}

func NewGameInsightService(detector DetectionProvider, predictor PredictionProvider, logger *logging.Logger) *GameInsightService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameInsightService{
		detector:  detector,
		predictor: predictor,
		logger:    logger,
	}
}

func (s *GameInsightService) DetectPlayers(ctx context.Context, filename string, image []byte) (DetectionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameInsightService.DetectPlayers", attribute.Int("detection.image_bytes", len(image)))
	defer span.End()

	if s.detector == nil {
		return DetectionResult{}, fmt.Errorf("%w: detection service is not configured", ErrDependencyUnavailable)
	}
	if len(image) == 0 {
		return DetectionResult{}, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	if len(image) > MaxDetectionImageBytes {
		return DetectionResult{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidInput, MaxDetectionImageBytes)
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "frame.jpg"
	}

	result, err := s.detector.DetectPlayers(ctx, filename, image)
	if err != nil {
		return DetectionResult{}, fmt.Errorf("detect players: %w", err)
	}
	s.logger.DebugContext(ctx, "detection completed",
		"status", result.Status,
		"detections", len(result.Detections),
		"players", len(result.Players),
	)
	return result, nil
}

func (s *GameInsightService) PredictGame(ctx context.Context, gameID int64) (GamePrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameInsightService.PredictGame", attribute.Int64("game.id", gameID))
	defer span.End()

	if s.predictor == nil {
		return GamePrediction{}, fmt.Errorf("%w: prediction service is not configured", ErrDependencyUnavailable)
	}
	if gameID <= 0 {
		return GamePrediction{}, fmt.Errorf("%w: game id must be greater than zero", ErrInvalidInput)
	}

	prediction, err := s.predictor.PredictGame(ctx, gameID)
	if err != nil {
		return GamePrediction{}, fmt.Errorf("predict game %d: %w", gameID, err)
	}
	prediction.GameID = gameID
	return prediction, nil
}
