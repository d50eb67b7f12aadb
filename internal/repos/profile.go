package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type ProfileRepo interface {
  Create(ctx context.Context, tx *gorm.DB, profiles []*types.Profile) ([]*types.Profile, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Profile, error)
  GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Profile, error)
  EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
  UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
  ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Profile, error)
  ListStudentsWithoutPair(ctx context.Context, tx *gorm.DB) ([]*types.Profile, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
}

type profileRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
  repoLog := baseLog.With("repo", "ProfileRepo")
  return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(ctx context.Context, tx *gorm.DB, profiles []*types.Profile) ([]*types.Profile, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  if len(profiles) == 0 {
    return []*types.Profile{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&profiles).Error; err != nil {
    return nil, err
  }
  return profiles, nil
}

func (pr *profileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Profile, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Profile
  if len(ids) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *profileRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Profile, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Profile
  if len(emails) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("email IN ?", emails).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *profileRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Profile{}).
    Where("email = ?", email).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (pr *profileRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Profile{}).
    Where("username = ?", username).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (pr *profileRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Profile, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Profile
  if err := transaction.WithContext(ctx).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *profileRepo) ListStudentsWithoutPair(ctx context.Context, tx *gorm.DB) ([]*types.Profile, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.Profile
  if err := transaction.WithContext(ctx).
    Where("role = ?", types.RoleStudent).
    Where("id NOT IN (?)", transaction.Model(&types.CoachStudentPair{}).Select("student_id")).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *profileRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  if len(fields) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.Profile{}).
    Where("id = ?", id).
    Updates(fields).Error
}

func (pr *profileRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  res := transaction.WithContext(ctx).
    Where("id = ?", id).
    Delete(&types.Profile{})
  return res.RowsAffected, res.Error
}
