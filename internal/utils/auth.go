package utils

import (
  "context"
  "fmt"
  "strings"
  "golang.org/x/crypto/bcrypt"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

func HashPassword(ctx context.Context, log *logger.Logger, profile *types.Profile) error {
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(profile.Password), bcrypt.DefaultCost)
  if err != nil {
    return fmt.Errorf("Failed to hash password")
  }
  profile.Password = string(hashedPassword)
  return nil
}

// NormalizeProfileFields trims every user-supplied field and lowercases the
// email. Username is left case-sensitive: "Ali" and "ali" are distinct accounts.
func NormalizeProfileFields(ctx context.Context, profile *types.Profile) {
  profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
  profile.FirstName = strings.TrimSpace(profile.FirstName)
  profile.LastName = strings.TrimSpace(profile.LastName)
  profile.Username = strings.TrimSpace(profile.Username)
  profile.Role = strings.ToLower(strings.TrimSpace(profile.Role))
}
