package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/diamond-insights/internal/config"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "diamond-insights-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	shutdown, err := InitUptrace(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitUptrace_EmptyDSNIsNoop(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, UptraceDSN: "  "}

	shutdown, err := InitUptrace(cfg, nil)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestStartPprofServer_Disabled(t *testing.T) {
	srv, err := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	if srv != nil {
		t.Fatalf("expected no pprof server when disabled")
	}
	if err := StopPprofServer(srv, nil, 0); err != nil {
		t.Fatalf("stop pprof: %v", err)
	}
}

func TestPprofMux_ServesNamedProfiles(t *testing.T) {
	srv := httptest.NewServer(newPprofMux())
	defer srv.Close()

	for _, name := range []string{"heap", "goroutine", "allocs"} {
		resp, err := http.Get(srv.URL + "/debug/pprof/" + name + "?debug=1")
		if err != nil {
			t.Fatalf("get %s profile: %v", name, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status for %s profile: %d", name, resp.StatusCode)
		}
	}
}

func TestPyroscopeTags(t *testing.T) {
	tags := pyroscopeTags(config.Config{AppEnv: config.EnvProd, ServiceName: "diamond-insights-api"})
	if tags["env"] != config.EnvProd || tags["service"] != "diamond-insights-api" {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if _, ok := tags["version"]; ok {
		t.Fatalf("empty version must not be tagged: %v", tags)
	}

	tags = pyroscopeTags(config.Config{ServiceVersion: "1.4.0"})
	if tags["version"] != "1.4.0" {
		t.Fatalf("unexpected version tag: %v", tags)
	}
}
