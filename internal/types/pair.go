package types

import (
  "time"
  "github.com/google/uuid"
)

// CoachStudentPair is the exclusive coach-to-student assignment: a student
// belongs to at most one coach at a time, enforced by the unique index.
type CoachStudentPair struct {
  ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  CoachID   uuid.UUID `gorm:"index;not null;column:coach_id" json:"coach_id"`
  StudentID uuid.UUID `gorm:"uniqueIndex;not null;column:student_id" json:"student_id"`
  CreatedAt time.Time `json:"created_at"`
}

func (CoachStudentPair) TableName() string {
  return "coach_student_pairs"
}
