package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/server/internal/agent/graph"
	"github.com/study-buddy/server/internal/agent/graph/nodes"
	"github.com/study-buddy/server/internal/agent/model"
	"github.com/study-buddy/server/internal/agent/repo"
	errx "github.com/study-buddy/server/internal/core/error"
	"github.com/study-buddy/server/internal/metrics"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []model.QueryInput
	reply string
	err   error
}

func (f *fakeRunner) Invoke(_ context.Context, in model.QueryInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	return f.reply, f.err
}

func postChat(t *testing.T, s *Server, body string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]string{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := New(Config{}, &fakeRunner{}, nil)
	for _, path := range []string{"/", "/health"} {
		resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "Study Buddy API is running", body["message"])
	}
}

func TestChat_Success(t *testing.T) {
	runner := &fakeRunner{reply: "What is your current education level?"}
	s := New(Config{}, runner, nil)

	status, body := postChat(t, s, `{"message":"I need a study plan","conversation_id":"abc"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "What is your current education level?", body["response"])
	require.Len(t, runner.calls, 1)
	assert.Equal(t, model.QueryInput{ConversationID: "abc", Query: "I need a study plan"}, runner.calls[0])
}

func TestChat_ConversationIDResolution(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"conversation id", `{"message":"hi","conversation_id":"c1","thread_id":"t1"}`, "c1"},
		{"thread id alias", `{"message":"hi","thread_id":"t1"}`, "t1"},
		{"default", `{"message":"hi"}`, DefaultConversationID},
		{"blank id", `{"message":"hi","conversation_id":"  "}`, DefaultConversationID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{reply: "ok"}
			status, _ := postChat(t, New(Config{}, runner, nil), tt.body)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.want, runner.calls[0].ConversationID)
		})
	}
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"missing message", `{"conversation_id":"c"}`, "message is required"},
		{"empty message", `{"message":""}`, "message is required"},
		{"malformed json", `{"message":`, "invalid request body"},
		{"id too long", fmt.Sprintf(`{"message":"hi","conversation_id":"%s"}`, strings.Repeat("x", 300)), "conversation_id is too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			status, body := postChat(t, New(Config{}, runner, nil), tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.detail, body["detail"])
			assert.Empty(t, runner.calls)
		})
	}
}

func TestChat_RouterErrors(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("load conversation: %w", errx.WrapRedis(errors.New("connection refused")))}
	status, body := postChat(t, New(Config{}, runner, nil), `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body["detail"], "connection refused")

	runner = &fakeRunner{err: errx.BadRequest(graph.ErrEmptyMessage)}
	status, body = postChat(t, New(Config{}, runner, nil), `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["detail"], "message is empty")
}

func TestCORS(t *testing.T) {
	s := New(Config{}, &fakeRunner{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	store := repo.NewMemoryConversationRepository(0)
	router, err := graph.NewRouter(graph.Config{
		Store:      store,
		Classifier: nodes.KeywordClassifier{},
		Generator:  nodes.CannedGenerator{},
		PlanSink:   repo.LogPlanRepository{},
		Recorder:   rec,
	})
	require.NoError(t, err)
	s := New(Config{}, router, reg)

	status, body := postChat(t, s, `{"message":"I'm so stressed"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Breathe in, breathe out...", body["response"])

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `studybuddy_turns_total{classified="true",intent="stress_relief",terminal="STRESS"} 1`)
}

func TestEndToEnd_StudyPlanOverHTTP(t *testing.T) {
	router, err := graph.NewRouter(graph.Config{
		Store:      repo.NewMemoryConversationRepository(0),
		Classifier: nodes.KeywordClassifier{},
		Generator:  nodes.CannedGenerator{},
		PlanSink:   repo.LogPlanRepository{},
	})
	require.NoError(t, err)
	s := New(Config{}, router, nil)

	var last string
	for _, msg := range []string{"I need a study plan", "College", "5", "4", "10", "last-minute"} {
		status, body := postChat(t, s, fmt.Sprintf(`{"message":%q,"thread_id":"e2e"}`, msg))
		require.Equal(t, http.StatusOK, status)
		last = body["response"]
	}
	assert.Contains(t, last, "Critical Exam Mode")
	assert.Contains(t, last, "Productivity Fix")
	require.NoError(t, router.Close(context.Background()))
}
