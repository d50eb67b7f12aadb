package handlers

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/koclukapp/kocluk-backend/internal/logger"
	"github.com/koclukapp/kocluk-backend/internal/requestdata"
	"github.com/koclukapp/kocluk-backend/internal/sse"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *sse.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*sse.SSEClient // key: SessionID (UserToken.ID)
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		Log:     log,
		Hub:     hub,
		clients: make(map[uuid.UUID]*sse.SSEClient),
	}
}

func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	userID := rd.UserID
	sessionID := rd.SessionID
	h.Log.Info("SSEStream open", "user_id", userID.String(), "session_id", sessionID.String())
	if sessionID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session id"})
		return
	}

	h.mu.Lock()
	// If this session already has a client, close it and replace.
	if existing, ok := h.clients[sessionID]; ok {
		h.Hub.CloseClient(existing)
		delete(h.clients, sessionID)
	}
	client := h.Hub.NewSSEClient(userID)
	h.clients[sessionID] = client
	h.mu.Unlock()

	// Every session listens on the user's own channel; conversation channels
	// are joined per-chat via SSESubscribe.
	h.Hub.AddChannel(client, sse.UserChannel(userID))

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	// A reconnect on the same session may already have replaced this client;
	// only drop the registry entry if it is still ours.
	h.mu.Lock()
	if h.clients[sessionID] == client {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	h.Hub.CloseClient(client)
}

func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	client, channel, ok := h.resolveChannelRequest(c)
	if !ok {
		return
	}
	h.Hub.AddChannel(client, channel)
	c.JSON(http.StatusOK, gin.H{"message": "subscribed", "channel": channel})
}

func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	client, channel, ok := h.resolveChannelRequest(c)
	if !ok {
		return
	}
	h.Hub.RemoveChannel(client, channel)
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed", "channel": channel})
}

// resolveChannelRequest validates the session, the requested channel, and
// that the channel actually belongs to the caller. Only the caller's own
// user channel and conversation channels the caller is a member of may be
// joined.
func (h *RealtimeHandler) resolveChannelRequest(c *gin.Context) (*sse.SSEClient, string, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, "", false
	}
	sessionID := rd.SessionID
	if sessionID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session id"})
		return nil, "", false
	}

	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
		return nil, "", false
	}
	if !channelBelongsTo(req.Channel, rd.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "channel not accessible"})
		return nil, "", false
	}

	h.mu.RLock()
	client, exists := h.clients[sessionID]
	h.mu.RUnlock()
	if !exists {
		c.JSON(http.StatusConflict, gin.H{"error": "no active SSE connection for this session"})
		return nil, "", false
	}
	return client, req.Channel, true
}

func channelBelongsTo(channel string, userID uuid.UUID) bool {
	if channel == sse.UserChannel(userID) {
		return true
	}
	if rest, ok := strings.CutPrefix(channel, "chat:"); ok {
		id := userID.String()
		parts := strings.SplitN(rest, ":", 2)
		return len(parts) == 2 && (parts[0] == id || parts[1] == id)
	}
	return false
}
