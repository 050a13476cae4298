package httpapi

import (
	"net/http"

	"github.com/riskibarqy/diamond-insights/internal/platform/id"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
)

// RouterOptions carries the optional router surfaces.
type RouterOptions struct {
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	MetricsHandler     http.Handler
	IDGenerator        id.Generator
}

func NewRouter(handler *Handler, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.SwaggerEnabled, opts.MetricsHandler)
	registerScheduleRoutes(mux, handler)
	registerPlayerRoutes(mux, handler)
	registerInsightRoutes(mux, handler)

	return RequestTracing(RequestID(opts.IDGenerator, RequestLogging(logger, CORS(opts.CORSAllowedOrigins, recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				requestID, _ := RequestIDFromContext(ctx)
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "request_id", requestID)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
