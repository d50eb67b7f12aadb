package types

import (
  "time"
  "github.com/google/uuid"
)

type Message struct {
  ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  SenderID   uuid.UUID `gorm:"index;not null;column:sender_id" json:"sender_id"`
  ReceiverID uuid.UUID `gorm:"index;not null;column:receiver_id" json:"receiver_id"`
  Content    string    `gorm:"not null;column:content" json:"content" validate:"required"`
  IsRead     bool      `gorm:"not null;index;column:is_read" json:"is_read"`
  CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (Message) TableName() string {
  return "messages"
}
