package services

import (
  "context"
  "fmt"
  "strings"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/repos"
  "github.com/koclukapp/kocluk-backend/internal/requestdata"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type MessageService interface {
  // GetConversation returns the full exchange with the counterpart in
  // ascending created_at order and marks the counterpart's unread messages
  // to the caller as read, pushing the refreshed unread count.
  GetConversation(ctx context.Context, counterpartID uuid.UUID) ([]*types.Message, error)
  SendMessage(ctx context.Context, receiverID uuid.UUID, content string) (*types.Message, error)
  UnreadCount(ctx context.Context) (int64, error)
}

type messageService struct {
  db          *gorm.DB
  log         *logger.Logger
  messageRepo repos.MessageRepo
  pairs       PairService
  notify      MessageNotifier
}

func NewMessageService(db *gorm.DB, log *logger.Logger, messageRepo repos.MessageRepo, pairs PairService, notify MessageNotifier) MessageService {
  serviceLog := log.With("service", "MessageService")
  return &messageService{db: db, log: serviceLog, messageRepo: messageRepo, pairs: pairs, notify: notify}
}

func (ms *messageService) GetConversation(ctx context.Context, counterpartID uuid.UUID) ([]*types.Message, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  if err := ms.authorizeConversation(ctx, rd, counterpartID); err != nil {
    return nil, err
  }
  messages, err := ms.messageRepo.ListConversation(ctx, nil, rd.UserID, counterpartID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch conversation: %w", err)
  }
  read, err := ms.messageRepo.MarkConversationRead(ctx, nil, rd.UserID, counterpartID)
  if err != nil {
    // fetching still succeeded; the read receipts catch up on the next fetch
    ms.log.Warn("Failed to mark conversation read", "error", err)
    return messages, nil
  }
  if read > 0 {
    for _, m := range messages {
      if m.ReceiverID == rd.UserID && m.SenderID == counterpartID {
        m.IsRead = true
      }
    }
    if ms.notify != nil {
      ms.notify.MessagesRead(rd.UserID, counterpartID, read)
      if count, cErr := ms.messageRepo.CountUnread(ctx, nil, rd.UserID); cErr == nil {
        ms.notify.UnreadCount(rd.UserID, count)
      }
    }
  }
  return messages, nil
}

func (ms *messageService) SendMessage(ctx context.Context, receiverID uuid.UUID, content string) (*types.Message, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  content = strings.TrimSpace(content)
  if content == "" {
    return nil, fmt.Errorf("Message content cannot be empty")
  }
  if receiverID == rd.UserID {
    return nil, fmt.Errorf("Cannot message yourself")
  }
  if err := ms.authorizeConversation(ctx, rd, receiverID); err != nil {
    return nil, err
  }
  message := &types.Message{
    ID:         uuid.New(),
    SenderID:   rd.UserID,
    ReceiverID: receiverID,
    Content:    content,
    IsRead:     false,
    CreatedAt:  time.Now(),
  }
  if _, cErr := ms.messageRepo.Create(ctx, nil, []*types.Message{message}); cErr != nil {
    return nil, fmt.Errorf("Failed to send message: %w", cErr)
  }
  if ms.notify != nil {
    ms.notify.MessageCreated(message)
    if count, cErr := ms.messageRepo.CountUnread(ctx, nil, receiverID); cErr == nil {
      ms.notify.UnreadCount(receiverID, count)
    }
  }
  return message, nil
}

func (ms *messageService) UnreadCount(ctx context.Context) (int64, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return 0, fmt.Errorf("Not authenticated")
  }
  return ms.messageRepo.CountUnread(ctx, nil, rd.UserID)
}

func (ms *messageService) authorizeConversation(ctx context.Context, rd *requestdata.RequestData, counterpartID uuid.UUID) error {
  if rd.Role == types.RoleAdmin {
    return nil
  }
  paired, err := ms.pairs.PairedWith(ctx, rd.UserID, counterpartID)
  if err != nil {
    return err
  }
  if !paired {
    return fmt.Errorf("No conversation with this user")
  }
  return nil
}
