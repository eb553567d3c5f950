package apiserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/taskdesk/taskdesk/pkg/config"
	"github.com/taskdesk/taskdesk/pkg/service"
	"github.com/taskdesk/taskdesk/pkg/store/postgres"
)

type healthResponse struct {
	Status string `json:"status"`
}

type envelopeResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func newTestServer() *Server {
	cfg := &config.Config{}
	return NewServer(&postgres.Store{}, nil, cfg, zap.NewNop(), service.NopMailer{})
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}

	var response healthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != "ok" {
		t.Fatalf("expected status ok, got %q", response.Status)
	}
}

func TestAPIAuthRequired(t *testing.T) {
	server := newTestServer()

	paths := []string{
		"/api/v1/tasks",
		"/api/v1/projects",
		"/api/v1/notifications",
		"/api/v1/system-logs",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()

		server.Router().ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusUnauthorized, recorder.Code)
		}

		var response envelopeResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
			t.Fatalf("%s: failed to decode response: %v", path, err)
		}
		if response.Message != "missing authorization" {
			t.Fatalf("%s: expected missing authorization, got %q", path, response.Message)
		}
	}
}

func TestAPIRejectsMalformedBearer(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Token abc")
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}
