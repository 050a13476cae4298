package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/riskibarqy/diamond-insights/internal/usecase"
)

const detectionFormField = "file"

// multipartOverhead leaves room for boundaries and part headers.
const multipartOverhead = 1 << 20

func (h *Handler) GetGamePrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGamePrediction")
	defer span.End()

	gameID, err := pathInt64(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	prediction, err := h.insightService.PredictGame(ctx, gameID)
	if err != nil {
		h.logFailure(ctx, "predict game failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(prediction))
}

func (h *Handler) CreateDetection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateDetection")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, usecase.MaxDetectionImageBytes+multipartOverhead)
	file, header, err := r.FormFile(detectionFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(ctx, w, fmt.Errorf("%w: upload exceeds %d bytes", usecase.ErrInvalidInput, usecase.MaxDetectionImageBytes))
			return
		}
		writeError(ctx, w, fmt.Errorf("%w: multipart field %q is required", usecase.ErrInvalidInput, detectionFormField))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, usecase.MaxDetectionImageBytes+1))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read upload: %v", usecase.ErrInvalidInput, err))
		return
	}

	result, err := h.insightService.DetectPlayers(ctx, header.Filename, image)
	if err != nil {
		h.logFailure(ctx, "detect players failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, detectionToDTO(result))
}

type jerseyDetectionDTO struct {
	Number     string  `json:"number"`
	Confidence float64 `json:"confidence"`
}

type detectedPlayerDTO struct {
	Jersey string         `json:"jersey"`
	Info   map[string]any `json:"info"`
	Stats  map[string]any `json:"stats"`
}

type detectionDTO struct {
	Status     string               `json:"status"`
	Message    string               `json:"message,omitempty"`
	Detections []jerseyDetectionDTO `json:"detections"`
	Players    []detectedPlayerDTO  `json:"players"`
}

func detectionToDTO(v usecase.DetectionResult) detectionDTO {
	out := detectionDTO{
		Status:     v.Status,
		Message:    v.Message,
		Detections: make([]jerseyDetectionDTO, 0, len(v.Detections)),
		Players:    make([]detectedPlayerDTO, 0, len(v.Players)),
	}
	for _, item := range v.Detections {
		out.Detections = append(out.Detections, jerseyDetectionDTO{Number: item.Number, Confidence: item.Confidence})
	}
	for _, item := range v.Players {
		out.Players = append(out.Players, detectedPlayerDTO{Jersey: item.Jersey, Info: item.Info, Stats: item.Stats})
	}
	return out
}

type tacticRecommendationDTO struct {
	Tactic          string   `json:"tactic"`
	Probability     float64  `json:"probability"`
	Reasoning       string   `json:"reasoning,omitempty"`
	SpecificActions []string `json:"specific_actions,omitempty"`
}

type predictionDTO struct {
	GameID                int64                         `json:"game_id"`
	TacticalProbabilities map[string]map[string]float64 `json:"tactical_probabilities"`
	TopTactics            map[string]any                `json:"top_tactics,omitempty"`
	Recommendations       []tacticRecommendationDTO     `json:"recommendations,omitempty"`
	ContextAnalysis       map[string]any                `json:"context_analysis,omitempty"`
	Analysis              string                        `json:"analysis,omitempty"`
}

func predictionToDTO(v usecase.GamePrediction) predictionDTO {
	out := predictionDTO{
		GameID:                v.GameID,
		TacticalProbabilities: v.TacticalProbabilities,
		TopTactics:            v.TopTactics,
		ContextAnalysis:       v.ContextAnalysis,
		Analysis:              v.Analysis,
	}
	if out.TacticalProbabilities == nil {
		out.TacticalProbabilities = map[string]map[string]float64{}
	}
	for _, item := range v.Recommendations {
		out.Recommendations = append(out.Recommendations, tacticRecommendationDTO{
			Tactic:          item.Tactic,
			Probability:     item.Probability,
			Reasoning:       item.Reasoning,
			SpecificActions: item.SpecificActions,
		})
	}
	return out
}
