package services

import (
  "context"
  "fmt"
  "strings"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/repos"
  "github.com/koclukapp/kocluk-backend/internal/types"
  "github.com/koclukapp/kocluk-backend/internal/utils"
)

// UnassignCoachID is the sentinel a reassign request uses to remove a
// student's pair without inserting a new one.
const UnassignCoachID = "unassign"

type AdminUserUpdate struct {
  FirstName *string `json:"first_name"`
  LastName  *string `json:"last_name"`
  Username  *string `json:"username"`
  Email     *string `json:"email"`
  Role      *string `json:"role"`
}

// BackupSnapshot is the JSON document produced by Backup and consumed by
// Restore. Field order mirrors the foreign-key-safe insertion order.
type BackupSnapshot struct {
  Profiles          []*types.Profile          `json:"profiles"`
  CoachStudentPairs []*types.CoachStudentPair `json:"coach_student_pairs"`
  Messages          []*types.Message          `json:"messages"`
  Tasks             []*types.Task             `json:"tasks"`
  Rewards           []*types.Reward           `json:"rewards"`
}

type AdminService interface {
  ListUsers(ctx context.Context) ([]*types.Profile, error)
  UpdateUser(ctx context.Context, userID uuid.UUID, update AdminUserUpdate) (*types.Profile, error)
  // DeleteUser removes the account and cascades all of its data: tokens,
  // tasks, messages, rewards, pairs, then the profile itself.
  DeleteUser(ctx context.Context, userID uuid.UUID) error
  // ReassignStudent replaces the student's pair. coachID may be the
  // UnassignCoachID sentinel to leave the student without a coach.
  ReassignStudent(ctx context.Context, studentID uuid.UUID, coachID string) error
  UsernameExists(ctx context.Context, username string) (bool, error)
  Backup(ctx context.Context) (*BackupSnapshot, error)
  Restore(ctx context.Context, snapshot *BackupSnapshot) error
  ClearAll(ctx context.Context) error
}

type adminService struct {
  db          *gorm.DB
  log         *logger.Logger
  profileRepo repos.ProfileRepo
  tokenRepo   repos.UserTokenRepo
  pairRepo    repos.PairRepo
  taskRepo    repos.TaskRepo
  rewardRepo  repos.RewardRepo
  messageRepo repos.MessageRepo
}

func NewAdminService(
  db *gorm.DB,
  log *logger.Logger,
  profileRepo repos.ProfileRepo,
  tokenRepo repos.UserTokenRepo,
  pairRepo repos.PairRepo,
  taskRepo repos.TaskRepo,
  rewardRepo repos.RewardRepo,
  messageRepo repos.MessageRepo,
) AdminService {
  serviceLog := log.With("service", "AdminService")
  return &adminService{
    db:          db,
    log:         serviceLog,
    profileRepo: profileRepo,
    tokenRepo:   tokenRepo,
    pairRepo:    pairRepo,
    taskRepo:    taskRepo,
    rewardRepo:  rewardRepo,
    messageRepo: messageRepo,
  }
}

func (as *adminService) ListUsers(ctx context.Context) ([]*types.Profile, error) {
  return as.profileRepo.ListAll(ctx, nil)
}

func (as *adminService) UpdateUser(ctx context.Context, userID uuid.UUID, update AdminUserUpdate) (*types.Profile, error) {
  profiles, err := as.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load user: %w", err)
  }
  if len(profiles) == 0 {
    return nil, fmt.Errorf("User not found")
  }
  current := profiles[0]
  fields := map[string]interface{}{}
  if update.FirstName != nil {
    fields["first_name"] = strings.TrimSpace(*update.FirstName)
  }
  if update.LastName != nil {
    fields["last_name"] = strings.TrimSpace(*update.LastName)
  }
  if update.Email != nil {
    email := strings.ToLower(strings.TrimSpace(*update.Email))
    if vErr := utils.ValidateVar(email, "required,email"); vErr != nil {
      return nil, fmt.Errorf("Invalid email")
    }
    fields["email"] = email
  }
  if update.Role != nil {
    role := strings.ToLower(strings.TrimSpace(*update.Role))
    if role != types.RoleStudent && role != types.RoleCoach && role != types.RoleAdmin {
      return nil, fmt.Errorf("Invalid role")
    }
    fields["role"] = role
  }
  if update.Username != nil {
    username := strings.TrimSpace(*update.Username)
    if username != current.Username {
      taken, tErr := as.profileRepo.UsernameExists(ctx, nil, username)
      if tErr != nil {
        return nil, fmt.Errorf("Failed to check username: %w", tErr)
      }
      if taken {
        return nil, fmt.Errorf("Username is already in use")
      }
    }
    fields["username"] = username
  }
  if err := as.profileRepo.UpdateFields(ctx, nil, userID, fields); err != nil {
    return nil, fmt.Errorf("Failed to update user: %w", err)
  }
  updated, err := as.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil || len(updated) == 0 {
    return nil, fmt.Errorf("Failed to reload user after update")
  }
  return updated[0], nil
}

func (as *adminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := as.tokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{userID}); err != nil {
      return fmt.Errorf("Failed to delete user tokens: %w", err)
    }
    if err := as.taskRepo.DeleteByMemberID(ctx, tx, userID); err != nil {
      return fmt.Errorf("Failed to delete user tasks: %w", err)
    }
    if err := as.messageRepo.DeleteByMemberID(ctx, tx, userID); err != nil {
      return fmt.Errorf("Failed to delete user messages: %w", err)
    }
    if err := as.rewardRepo.DeleteByMemberID(ctx, tx, userID); err != nil {
      return fmt.Errorf("Failed to delete user rewards: %w", err)
    }
    if err := as.pairRepo.DeleteByMemberID(ctx, tx, userID); err != nil {
      return fmt.Errorf("Failed to delete user pairs: %w", err)
    }
    affected, err := as.profileRepo.Delete(ctx, tx, userID)
    if err != nil {
      return fmt.Errorf("Failed to delete profile: %w", err)
    }
    if affected == 0 {
      return fmt.Errorf("User not found")
    }
    return nil
  })
}

func (as *adminService) ReassignStudent(ctx context.Context, studentID uuid.UUID, coachID string) error {
  coachID = strings.TrimSpace(coachID)
  if coachID == "" {
    return fmt.Errorf("A coach id or %q is required", UnassignCoachID)
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    students, err := as.profileRepo.GetByIDs(ctx, tx, []uuid.UUID{studentID})
    if err != nil {
      return fmt.Errorf("Failed to load student: %w", err)
    }
    if len(students) == 0 || students[0].Role != types.RoleStudent {
      return fmt.Errorf("Student not found")
    }
    if _, err := as.pairRepo.DeleteByStudentIDs(ctx, tx, []uuid.UUID{studentID}); err != nil {
      return fmt.Errorf("Failed to remove existing pair: %w", err)
    }
    if coachID == UnassignCoachID {
      return nil
    }
    parsedCoachID, err := uuid.Parse(coachID)
    if err != nil {
      return fmt.Errorf("Invalid coach id: %w", err)
    }
    coaches, err := as.profileRepo.GetByIDs(ctx, tx, []uuid.UUID{parsedCoachID})
    if err != nil {
      return fmt.Errorf("Failed to load coach: %w", err)
    }
    if len(coaches) == 0 || coaches[0].Role != types.RoleCoach {
      return fmt.Errorf("Coach not found")
    }
    pair := &types.CoachStudentPair{
      ID:        uuid.New(),
      CoachID:   parsedCoachID,
      StudentID: studentID,
    }
    if _, err := as.pairRepo.Create(ctx, tx, []*types.CoachStudentPair{pair}); err != nil {
      return fmt.Errorf("Failed to create pair: %w", err)
    }
    return nil
  })
}

func (as *adminService) UsernameExists(ctx context.Context, username string) (bool, error) {
  return as.profileRepo.UsernameExists(ctx, nil, strings.TrimSpace(username))
}

func (as *adminService) Backup(ctx context.Context) (*BackupSnapshot, error) {
  snapshot := &BackupSnapshot{}
  var err error
  if snapshot.Profiles, err = as.profileRepo.ListAll(ctx, nil); err != nil {
    return nil, fmt.Errorf("Failed to snapshot profiles: %w", err)
  }
  if snapshot.CoachStudentPairs, err = as.pairRepo.ListAll(ctx, nil); err != nil {
    return nil, fmt.Errorf("Failed to snapshot pairs: %w", err)
  }
  if snapshot.Messages, err = as.messageRepo.ListAll(ctx, nil); err != nil {
    return nil, fmt.Errorf("Failed to snapshot messages: %w", err)
  }
  if snapshot.Tasks, err = as.taskRepo.ListAll(ctx, nil); err != nil {
    return nil, fmt.Errorf("Failed to snapshot tasks: %w", err)
  }
  if snapshot.Rewards, err = as.rewardRepo.ListAll(ctx, nil); err != nil {
    return nil, fmt.Errorf("Failed to snapshot rewards: %w", err)
  }
  return snapshot, nil
}

// Restore wipes the domain tables in foreign-key order (dependents first)
// and reloads them from the snapshot in the reverse order.
func (as *adminService) Restore(ctx context.Context, snapshot *BackupSnapshot) error {
  if snapshot == nil {
    return fmt.Errorf("A snapshot is required")
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := as.wipeDomainTables(ctx, tx); err != nil {
      return err
    }
    if _, err := as.profileRepo.Create(ctx, tx, snapshot.Profiles); err != nil {
      return fmt.Errorf("Failed to restore profiles: %w", err)
    }
    if _, err := as.pairRepo.Create(ctx, tx, snapshot.CoachStudentPairs); err != nil {
      return fmt.Errorf("Failed to restore pairs: %w", err)
    }
    if _, err := as.messageRepo.Create(ctx, tx, snapshot.Messages); err != nil {
      return fmt.Errorf("Failed to restore messages: %w", err)
    }
    if _, err := as.taskRepo.Create(ctx, tx, snapshot.Tasks); err != nil {
      return fmt.Errorf("Failed to restore tasks: %w", err)
    }
    if _, err := as.rewardRepo.Create(ctx, tx, snapshot.Rewards); err != nil {
      return fmt.Errorf("Failed to restore rewards: %w", err)
    }
    return nil
  })
}

// ClearAll wipes every data table, then deletes each remaining account
// individually so one failing deletion does not abort the batch.
func (as *adminService) ClearAll(ctx context.Context) error {
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    return as.wipeDataTables(ctx, tx)
  }); err != nil {
    return err
  }
  profiles, err := as.profileRepo.ListAll(ctx, nil)
  if err != nil {
    return fmt.Errorf("Failed to list accounts: %w", err)
  }
  for _, profile := range profiles {
    if dErr := as.tokenRepo.DeleteByUserIDs(ctx, nil, []uuid.UUID{profile.ID}); dErr != nil {
      as.log.Warn("Failed to delete account sessions, continuing", "user_id", profile.ID, "error", dErr)
      continue
    }
    if _, dErr := as.profileRepo.Delete(ctx, nil, profile.ID); dErr != nil {
      as.log.Warn("Failed to delete account, continuing", "user_id", profile.ID, "error", dErr)
    }
  }
  return nil
}

// wipeDataTables empties the non-account tables, dependents first so
// foreign keys never dangle.
func (as *adminService) wipeDataTables(ctx context.Context, tx *gorm.DB) error {
  tables := []interface{}{
    &types.Reward{},
    &types.Task{},
    &types.Message{},
    &types.CoachStudentPair{},
  }
  for _, model := range tables {
    if err := tx.WithContext(ctx).Where("1 = 1").Delete(model).Error; err != nil {
      return fmt.Errorf("Failed to wipe table: %w", err)
    }
  }
  return nil
}

func (as *adminService) wipeDomainTables(ctx context.Context, tx *gorm.DB) error {
  if err := as.wipeDataTables(ctx, tx); err != nil {
    return err
  }
  for _, model := range []interface{}{&types.UserToken{}, &types.Profile{}} {
    if err := tx.WithContext(ctx).Where("1 = 1").Delete(model).Error; err != nil {
      return fmt.Errorf("Failed to wipe table: %w", err)
    }
  }
  return nil
}
