package status

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/takane/peerbridge/internal/config"
	"github.com/takane/peerbridge/internal/lifecycle"
	"github.com/takane/peerbridge/internal/router"
)

func serve(t *testing.T, state *lifecycle.State, reg *router.Registry, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := SetupRouter(&config.Config{Mode: "release"}, reg, state)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	w := serve(t, lifecycle.NewState(), router.NewRegistry(), "/healthz")
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHealthzShuttingDown(t *testing.T) {
	t.Parallel()
	state := lifecycle.NewState()
	state.RequestShutdown(lifecycle.ReasonSignal)
	w := serve(t, state, router.NewRegistry(), "/healthz")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestPeers(t *testing.T) {
	t.Parallel()
	reg := router.NewRegistry()
	reg.OnCreatePeer("p1", "pt-aaa")
	w := serve(t, lifecycle.NewState(), reg, "/api/peers")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"count":1`) {
		t.Errorf("body missing count: %s", body)
	}
	if !strings.Contains(body, `"p1"`) {
		t.Errorf("body missing peer id: %s", body)
	}
}

func TestStateEndpoint(t *testing.T) {
	t.Parallel()
	state := lifecycle.NewState()
	state.RequestShutdown(lifecycle.ReasonPeerDeleted)
	w := serve(t, state, router.NewRegistry(), "/api/state")
	body := w.Body.String()
	if !strings.Contains(body, `"shutting_down"`) {
		t.Errorf("body missing phase: %s", body)
	}
	if !strings.Contains(body, `"peer_deleted"`) {
		t.Errorf("body missing reason: %s", body)
	}
}
