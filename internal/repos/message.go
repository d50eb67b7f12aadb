package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type MessageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error)
  // ListConversation returns every message exchanged between the two
  // participants, in either direction, ascending by created_at.
  ListConversation(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) ([]*types.Message, error)
  // MarkConversationRead flags unread messages sent by `sender` to `receiver`
  // as read and reports how many rows changed. Sender-side and already-read
  // rows are untouched.
  MarkConversationRead(ctx context.Context, tx *gorm.DB, receiver, sender uuid.UUID) (int64, error)
  CountUnread(ctx context.Context, tx *gorm.DB, receiver uuid.UUID) (int64, error)
  ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Message, error)
  DeleteByMemberID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type messageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
  repoLog := baseLog.With("repo", "MessageRepo")
  return &messageRepo{db: db, log: repoLog}
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  if len(messages) == 0 {
    return []*types.Message{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&messages).Error; err != nil {
    return nil, err
  }
  return messages, nil
}

func (mr *messageRepo) ListConversation(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var results []*types.Message
  if err := transaction.WithContext(ctx).
    Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (mr *messageRepo) MarkConversationRead(ctx context.Context, tx *gorm.DB, receiver, sender uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  res := transaction.WithContext(ctx).
    Model(&types.Message{}).
    Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiver, sender, false).
    Update("is_read", true)
  return res.RowsAffected, res.Error
}

func (mr *messageRepo) CountUnread(ctx context.Context, tx *gorm.DB, receiver uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Message{}).
    Where("receiver_id = ? AND is_read = ?", receiver, false).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (mr *messageRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Message, error) {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  var results []*types.Message
  if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (mr *messageRepo) DeleteByMemberID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = mr.db
  }
  return transaction.WithContext(ctx).
    Where("sender_id = ? OR receiver_id = ?", userID, userID).
    Delete(&types.Message{}).Error
}
