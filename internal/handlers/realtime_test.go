package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/koclukapp/kocluk-backend/internal/logger"
	"github.com/koclukapp/kocluk-backend/internal/requestdata"
	"github.com/koclukapp/kocluk-backend/internal/sse"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

// openStream runs SSEStream in a goroutine and returns the request's cancel
// func plus a channel closed when the handler unwinds.
func openStream(t *testing.T, h *RealtimeHandler, userID, sessionID uuid.UUID) (context.CancelFunc, chan struct{}) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse/stream", nil)
	rd := &requestdata.RequestData{UserID: userID, SessionID: sessionID}
	c.Request = req.WithContext(requestdata.WithRequestData(ctx, rd))

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.SSEStream(c)
	}()
	return cancel, done
}

// waitForClient polls until the session's registered client differs from old.
func waitForClient(t *testing.T, h *RealtimeHandler, sessionID uuid.UUID, old *sse.SSEClient) *sse.SSEClient {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		client := h.clients[sessionID]
		h.mu.RUnlock()
		if client != nil && client != old {
			return client
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no SSE client registered for session %s", sessionID)
	return nil
}

func TestSSEStreamSameSessionReconnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := mustTestLogger(t)
	hub := sse.NewSSEHub(log)
	h := NewRealtimeHandler(log, hub)
	userID := uuid.New()
	sessionID := uuid.New()
	peerID := uuid.New()

	cancelOld, oldDone := openStream(t, h, userID, sessionID)
	defer cancelOld()
	oldClient := waitForClient(t, h, sessionID, nil)

	// same session reconnects; the first stream gets replaced
	cancelNew, newDone := openStream(t, h, userID, sessionID)
	newClient := waitForClient(t, h, sessionID, oldClient)

	select {
	case <-oldDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("replaced stream did not terminate")
	}

	// the old stream's teardown must not evict or close the replacement
	select {
	case <-newDone:
		t.Fatalf("live stream torn down by the replaced stream")
	default:
	}
	h.mu.RLock()
	current := h.clients[sessionID]
	h.mu.RUnlock()
	if current != newClient {
		t.Fatalf("replacement client lost during old stream teardown")
	}

	// conversation channels are still joinable on the live stream
	channel := sse.ConversationChannel(userID, peerID)
	body, err := json.Marshal(map[string]string{"channel": channel})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/sse/subscribe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rd := &requestdata.RequestData{UserID: userID, SessionID: sessionID}
	c.Request = req.WithContext(requestdata.WithRequestData(context.Background(), rd))
	h.SSESubscribe(c)
	if w.Code != http.StatusOK {
		t.Fatalf("subscribe after reconnect: status=%d body=%s", w.Code, w.Body.String())
	}

	cancelNew()
	select {
	case <-newDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not stop on context cancel")
	}
	h.mu.RLock()
	_, registered := h.clients[sessionID]
	h.mu.RUnlock()
	if registered {
		t.Fatalf("session should be unregistered after its own stream closes")
	}
}
