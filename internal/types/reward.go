package types

import (
  "time"
  "github.com/google/uuid"
)

type Reward struct {
  ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  CoachID     uuid.UUID `gorm:"index;not null;column:coach_id" json:"coach_id"`
  StudentID   uuid.UUID `gorm:"index;not null;column:student_id" json:"student_id"`
  Title       string    `gorm:"not null;column:title" json:"title" validate:"required"`
  Description string    `gorm:"column:description" json:"description"`
  IsClaimed   bool      `gorm:"not null;column:is_claimed" json:"is_claimed"`
  CreatedAt   time.Time `json:"created_at"`
  UpdatedAt   time.Time `json:"updated_at"`
}

func (Reward) TableName() string {
  return "rewards"
}
