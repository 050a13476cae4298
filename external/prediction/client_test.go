package prediction

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
	"github.com/riskibarqy/diamond-insights/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PredictGame(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict/745001", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"tactical_probabilities": {"pitching": {"Intentional Walk": 12.5, "Pitching Change": 40}},
			"top_tactics": {"pitching": "Pitching Change"},
			"recommendations": [{"tactic": "Pitching Change", "probability": 40, "reasoning": "high pitch count", "specific_actions": ["warm up the closer"]}],
			"context_analysis": {"game_situation": {"inning": 8}},
			"gemini_analysis": " Expect the bullpen. "
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Logger: logging.NewNop()})
	got, err := client.PredictGame(context.Background(), 745001)
	require.NoError(t, err)

	assert.Equal(t, int64(745001), got.GameID)
	assert.InDelta(t, 40, got.TacticalProbabilities["pitching"]["Pitching Change"], 0.001)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, []string{"warm up the closer"}, got.Recommendations[0].SpecificActions)
	assert.Equal(t, "Expect the bullpen.", got.Analysis)
}

func TestClient_PredictGame_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unknown game", status: http.StatusNotFound, want: usecase.ErrNotFound},
		{name: "server failure", status: http.StatusInternalServerError, want: usecase.ErrUpstreamStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client := NewClient(ClientConfig{BaseURL: server.URL, Logger: logging.NewNop()})
			_, err := client.PredictGame(context.Background(), 1)
			if !errors.Is(err, tc.want) {
				t.Fatalf("unexpected error: got=%v want=%v", err, tc.want)
			}
		})
	}
}

func TestClient_PredictGame_Unconfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})
	_, err := client.PredictGame(context.Background(), 1)
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
}
