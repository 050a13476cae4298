package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	SwaggerEnabled     bool
	MetricsEnabled     bool

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	StatsAPIBaseURL               string
	StatsAPITimeout               time.Duration
	StatsAPIMaxRetries            int
	StatsAPICircuitEnabled        bool
	StatsAPICircuitFailureCount   int
	StatsAPICircuitOpenTimeout    time.Duration
	StatsAPICircuitHalfOpenMaxReq int
	StatsAPISeason                int
	StatsAPIHittingCategory       string
	StatsAPIPitchingCategory      string

	FanoutMaxWorkers    int
	FanoutDetailTimeout time.Duration

	ScheduleWindowDays      int
	ScheduleProbeStepDays   int
	ScheduleProbeWindowDays int
	ScheduleProbeAttempts   int
	ScheduleGamesWindowDays int
	ScheduleTimezone        string

	CacheEnabled bool
	CacheBackend string
	CacheTTL     time.Duration
	RedisURL     string

	DetectionBaseURL  string
	DetectionTimeout  time.Duration
	PredictionBaseURL string
	PredictionTimeout time.Duration
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}
	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := parsePositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	statsTimeout, err := parsePositiveDuration("STATSAPI_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	statsMaxRetries, err := getEnvAsInt("STATSAPI_MAX_RETRIES", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATSAPI_MAX_RETRIES: %w", err)
	}
	if statsMaxRetries < 0 {
		return Config{}, fmt.Errorf("STATSAPI_MAX_RETRIES must be >= 0")
	}
	statsCircuitEnabled, err := strconv.ParseBool(getEnv("STATSAPI_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATSAPI_CIRCUIT_ENABLED: %w", err)
	}
	statsCircuitFailureCount, err := parseMinInt("STATSAPI_CIRCUIT_FAILURE_COUNT", 5, 1)
	if err != nil {
		return Config{}, err
	}
	statsCircuitOpenTimeout, err := parsePositiveDuration("STATSAPI_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	statsCircuitHalfOpenMaxReq, err := parseMinInt("STATSAPI_CIRCUIT_HALF_OPEN_MAX_REQ", 2, 1)
	if err != nil {
		return Config{}, err
	}
	statsSeason, err := parseMinInt("STATSAPI_SEASON", 0, 0)
	if err != nil {
		return Config{}, err
	}

	fanoutMaxWorkers, err := parseMinInt("FANOUT_MAX_WORKERS", 8, 1)
	if err != nil {
		return Config{}, err
	}
	fanoutDetailTimeout, err := parsePositiveDuration("FANOUT_DETAIL_TIMEOUT", "8s")
	if err != nil {
		return Config{}, err
	}

	scheduleWindowDays, err := parseMinInt("SCHEDULE_WINDOW_DAYS", 7, 1)
	if err != nil {
		return Config{}, err
	}
	scheduleProbeStepDays, err := parseMinInt("SCHEDULE_PROBE_STEP_DAYS", 5, 1)
	if err != nil {
		return Config{}, err
	}
	scheduleProbeWindowDays, err := parseMinInt("SCHEDULE_PROBE_WINDOW_DAYS", 5, 1)
	if err != nil {
		return Config{}, err
	}
	scheduleProbeAttempts, err := parseMinInt("SCHEDULE_PROBE_ATTEMPTS", 12, 0)
	if err != nil {
		return Config{}, err
	}
	scheduleGamesWindowDays, err := parseMinInt("SCHEDULE_GAMES_WINDOW_DAYS", 30, 1)
	if err != nil {
		return Config{}, err
	}
	scheduleTimezone := strings.TrimSpace(getEnv("SCHEDULE_TIMEZONE", "America/New_York"))
	if _, err := time.LoadLocation(scheduleTimezone); err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULE_TIMEZONE: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheBackend := strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", CacheBackendMemory)))
	if cacheBackend != CacheBackendMemory && cacheBackend != CacheBackendRedis {
		return Config{}, fmt.Errorf("invalid CACHE_BACKEND %q: valid values are %s, %s", cacheBackend, CacheBackendMemory, CacheBackendRedis)
	}
	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "60s")
	if err != nil {
		return Config{}, err
	}
	redisURL := strings.TrimSpace(getEnv("REDIS_URL", "redis://localhost:6379/0"))
	if cacheEnabled && cacheBackend == CacheBackendRedis && redisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
	}

	detectionTimeout, err := parsePositiveDuration("DETECTION_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	predictionTimeout, err := parsePositiveDuration("PREDICTION_TIMEOUT", "60s")
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := parsePositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := parsePositiveDuration("APP_WRITE_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "diamond-insights-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		SwaggerEnabled:     swaggerEnabled,
		MetricsEnabled:     metricsEnabled,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		StatsAPIBaseURL:               strings.TrimSpace(getEnv("STATSAPI_BASE_URL", "https://statsapi.mlb.com/api/v1")),
		StatsAPITimeout:               statsTimeout,
		StatsAPIMaxRetries:            statsMaxRetries,
		StatsAPICircuitEnabled:        statsCircuitEnabled,
		StatsAPICircuitFailureCount:   statsCircuitFailureCount,
		StatsAPICircuitOpenTimeout:    statsCircuitOpenTimeout,
		StatsAPICircuitHalfOpenMaxReq: statsCircuitHalfOpenMaxReq,
		StatsAPISeason:                statsSeason,
		StatsAPIHittingCategory:       strings.TrimSpace(getEnv("STATSAPI_HITTING_CATEGORY", "battingAverage")),
		StatsAPIPitchingCategory:      strings.TrimSpace(getEnv("STATSAPI_PITCHING_CATEGORY", "earnedRunAverage")),

		FanoutMaxWorkers:    fanoutMaxWorkers,
		FanoutDetailTimeout: fanoutDetailTimeout,

		ScheduleWindowDays:      scheduleWindowDays,
		ScheduleProbeStepDays:   scheduleProbeStepDays,
		ScheduleProbeWindowDays: scheduleProbeWindowDays,
		ScheduleProbeAttempts:   scheduleProbeAttempts,
		ScheduleGamesWindowDays: scheduleGamesWindowDays,
		ScheduleTimezone:        scheduleTimezone,

		CacheEnabled: cacheEnabled,
		CacheBackend: cacheBackend,
		CacheTTL:     cacheTTL,
		RedisURL:     redisURL,

		DetectionBaseURL:  strings.TrimSpace(getEnv("DETECTION_BASE_URL", "")),
		DetectionTimeout:  detectionTimeout,
		PredictionBaseURL: strings.TrimSpace(getEnv("PREDICTION_BASE_URL", "")),
		PredictionTimeout: predictionTimeout,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// ScheduleLocation resolves ScheduleTimezone, falling back to UTC.
func (c Config) ScheduleLocation() *time.Location {
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil || c.ScheduleTimezone == "" {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseMinInt(key string, fallback, minimum int) (int, error) {
	value, err := getEnvAsInt(key, fallback)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value < minimum {
		return 0, fmt.Errorf("%s must be >= %d", key, minimum)
	}
	return value, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
