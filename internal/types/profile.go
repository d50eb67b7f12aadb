package types

import (
  "time"
  "github.com/google/uuid"
)

const (
  RoleStudent = "student"
  RoleCoach   = "coach"
  RoleAdmin   = "admin"
)

type Profile struct {
  ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
  Role      string    `gorm:"not null;index;column:role" json:"role" validate:"required,oneof=student coach admin"`
  FirstName string    `gorm:"not null;column:first_name" json:"first_name" validate:"required"`
  LastName  string    `gorm:"not null;column:last_name" json:"last_name" validate:"required"`
  Username  string    `gorm:"uniqueIndex;not null;column:username" json:"username" validate:"required,min=3"`
  Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email" validate:"required,email"`
  Password  string    `gorm:"not null;column:password" json:"-" validate:"required,min=6"`
  CreatedAt time.Time `json:"created_at"`
  UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
  return "profiles"
}
