package types

import (
  "time"
  "github.com/google/uuid"
)

type TaskStatus string

const (
  TaskStatusPending         TaskStatus = "pending"
  TaskStatusPendingApproval TaskStatus = "pending_approval"
  TaskStatusCompleted       TaskStatus = "completed"
  TaskStatusNotCompleted    TaskStatus = "not_completed"
)

type TaskType string

const (
  TaskTypeExplanation TaskType = "konu_anlatimi"
  TaskTypeQuestions   TaskType = "soru_cozumu"
  TaskTypeReading     TaskType = "kitap_okuma"
)

// Task is a unit of work a coach assigns to a student. For soru_cozumu tasks
// QuestionCount is required and the three result counts must sum to it before
// the task may complete. For kitap_okuma tasks Topic carries a page count.
type Task struct {
  ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
  CoachID       uuid.UUID  `gorm:"index;not null;column:coach_id" json:"coach_id"`
  StudentID     uuid.UUID  `gorm:"index;not null;column:student_id" json:"student_id"`
  Subject       string     `gorm:"not null;column:subject" json:"subject" validate:"required"`
  Topic         string     `gorm:"column:topic" json:"topic"`
  Type          TaskType   `gorm:"not null;column:task_type" json:"task_type" validate:"required,oneof=konu_anlatimi soru_cozumu kitap_okuma"`
  QuestionCount *int       `gorm:"column:question_count" json:"question_count,omitempty"`
  Description   string     `gorm:"column:description" json:"description"`
  Status        TaskStatus `gorm:"not null;index;column:status" json:"status"`
  CorrectCount  *int       `gorm:"column:correct_count" json:"correct_count,omitempty"`
  EmptyCount    *int       `gorm:"column:empty_count" json:"empty_count,omitempty"`
  WrongCount    *int       `gorm:"column:wrong_count" json:"wrong_count,omitempty"`
  CreatedAt     time.Time  `gorm:"index" json:"created_at"`
  UpdatedAt     time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
  return "tasks"
}
