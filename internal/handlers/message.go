package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/koclukapp/kocluk-backend/internal/services"
)

type MessageHandler struct {
  messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
  return &MessageHandler{messageService: messageService}
}

// GET /api/messages/:user_id
func (mh *MessageHandler) GetConversation(c *gin.Context) {
  counterpartID, err := uuid.Parse(c.Param("user_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
    return
  }
  messages, err := mh.messageService.GetConversation(c.Request.Context(), counterpartID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "get_conversation_failed", err)
    return
  }
  RespondOK(c, gin.H{"messages": messages})
}

// POST /api/messages
func (mh *MessageHandler) Send(c *gin.Context) {
  var req struct {
    ReceiverID uuid.UUID `json:"receiver_id"`
    Content    string    `json:"content"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  message, err := mh.messageService.SendMessage(c.Request.Context(), req.ReceiverID, req.Content)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "send_message_failed", err)
    return
  }
  RespondOK(c, gin.H{"message": message})
}

// GET /api/messages/unread/count
func (mh *MessageHandler) UnreadCount(c *gin.Context) {
  count, err := mh.messageService.UnreadCount(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusBadRequest, "unread_count_failed", err)
    return
  }
  RespondOK(c, gin.H{"unread": count})
}
