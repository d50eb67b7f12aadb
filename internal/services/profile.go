package services

import (
  "context"
  "fmt"
  "strings"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/repos"
  "github.com/koclukapp/kocluk-backend/internal/requestdata"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type ProfileUpdate struct {
  FirstName *string `json:"first_name"`
  LastName  *string `json:"last_name"`
  Username  *string `json:"username"`
}

type ProfileService interface {
  GetMe(ctx context.Context) (*types.Profile, error)
  UpdateMe(ctx context.Context, update ProfileUpdate) (*types.Profile, error)
  UsernameAvailable(ctx context.Context, username string) (bool, error)
}

type profileService struct {
  db          *gorm.DB
  log         *logger.Logger
  profileRepo repos.ProfileRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
  serviceLog := log.With("service", "ProfileService")
  return &profileService{db: db, log: serviceLog, profileRepo: profileRepo}
}

func (ps *profileService) GetMe(ctx context.Context) (*types.Profile, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  profiles, err := ps.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch profile: %w", err)
  }
  if len(profiles) == 0 {
    return nil, fmt.Errorf("Profile not found")
  }
  return profiles[0], nil
}

func (ps *profileService) UpdateMe(ctx context.Context, update ProfileUpdate) (*types.Profile, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  fields := map[string]interface{}{}
  if update.FirstName != nil {
    v := strings.TrimSpace(*update.FirstName)
    if v == "" {
      return nil, fmt.Errorf("First name cannot be empty")
    }
    fields["first_name"] = v
  }
  if update.LastName != nil {
    v := strings.TrimSpace(*update.LastName)
    if v == "" {
      return nil, fmt.Errorf("Last name cannot be empty")
    }
    fields["last_name"] = v
  }
  if update.Username != nil {
    v := strings.TrimSpace(*update.Username)
    if len(v) < 3 {
      return nil, fmt.Errorf("Username must be at least 3 characters")
    }
    me, err := ps.GetMe(ctx)
    if err != nil {
      return nil, err
    }
    if v != me.Username {
      taken, err := ps.profileRepo.UsernameExists(ctx, nil, v)
      if err != nil {
        return nil, fmt.Errorf("Failed to check username: %w", err)
      }
      if taken {
        return nil, fmt.Errorf("Username is already in use")
      }
    }
    fields["username"] = v
  }
  if len(fields) == 0 {
    return ps.GetMe(ctx)
  }
  if err := ps.profileRepo.UpdateFields(ctx, nil, rd.UserID, fields); err != nil {
    return nil, fmt.Errorf("Failed to update profile: %w", err)
  }
  return ps.GetMe(ctx)
}

func (ps *profileService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
  username = strings.TrimSpace(username)
  if username == "" {
    return false, fmt.Errorf("Username is required")
  }
  taken, err := ps.profileRepo.UsernameExists(ctx, nil, username)
  if err != nil {
    return false, fmt.Errorf("Failed to check username: %w", err)
  }
  return !taken, nil
}
