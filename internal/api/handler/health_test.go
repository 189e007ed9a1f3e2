package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLive(t *testing.T) {
	h := NewHealthHandler(newStubJobRepo(), &stubSender{ready: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Live(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want %q", resp.Status, "ok")
	}
	if resp.SessionReady {
		t.Error("session_ready = true, want false")
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name        string
		pingErr     error
		senderReady bool
		wantCode    int
		wantStatus  string
	}{
		{
			name:        "all healthy",
			senderReady: true,
			wantCode:    http.StatusOK,
			wantStatus:  "ready",
		},
		{
			name:        "job store down",
			pingErr:     errors.New("database is locked"),
			senderReady: true,
			wantCode:    http.StatusServiceUnavailable,
			wantStatus:  "job store unavailable",
		},
		{
			name:        "session not paired",
			senderReady: false,
			wantCode:    http.StatusServiceUnavailable,
			wantStatus:  "session not ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubJobRepo()
			repo.pingErr = tt.pingErr
			h := NewHealthHandler(repo, &stubSender{ready: tt.senderReady})

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			h.Ready(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("body status = %q, want %q", resp.Status, tt.wantStatus)
			}
		})
	}
}
