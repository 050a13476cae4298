package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
	"github.com/riskibarqy/diamond-insights/internal/usecase"
)

type Handler struct {
	scheduleService    *usecase.ScheduleService
	leaderboardService *usecase.LeaderboardService
	directoryService   *usecase.PlayerDirectoryService
	insightService     *usecase.GameInsightService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	scheduleService *usecase.ScheduleService,
	leaderboardService *usecase.LeaderboardService,
	directoryService *usecase.PlayerDirectoryService,
	insightService *usecase.GameInsightService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scheduleService:    scheduleService,
		leaderboardService: leaderboardService,
		directoryService:   directoryService,
		insightService:     insightService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// logFailure logs server-side failures; client errors stay quiet.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	if mapError(ctx, err).HTTPStatus < http.StatusInternalServerError {
		return
	}
	requestID, _ := RequestIDFromContext(ctx)
	h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}

func pathInt64(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(key))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}
