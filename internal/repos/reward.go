package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type RewardRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rewards []*types.Reward) ([]*types.Reward, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Reward, error)
  ListByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.Reward, error)
  ListByCoachIDs(ctx context.Context, tx *gorm.DB, coachIDs []uuid.UUID) ([]*types.Reward, error)
  ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Reward, error)
  // ClaimIf flips is_claimed false -> true for the student's own reward. The
  // flip is one-way: an already claimed reward is never touched again.
  ClaimIf(ctx context.Context, tx *gorm.DB, id, studentID uuid.UUID) (bool, error)
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
  DeleteByMemberID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type rewardRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRewardRepo(db *gorm.DB, baseLog *logger.Logger) RewardRepo {
  repoLog := baseLog.With("repo", "RewardRepo")
  return &rewardRepo{db: db, log: repoLog}
}

func (rr *rewardRepo) Create(ctx context.Context, tx *gorm.DB, rewards []*types.Reward) ([]*types.Reward, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  if len(rewards) == 0 {
    return []*types.Reward{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&rewards).Error; err != nil {
    return nil, err
  }
  return rewards, nil
}

func (rr *rewardRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Reward, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var results []*types.Reward
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

func (rr *rewardRepo) ListByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.Reward, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var results []*types.Reward
  if len(studentIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("student_id IN ?", studentIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (rr *rewardRepo) ListByCoachIDs(ctx context.Context, tx *gorm.DB, coachIDs []uuid.UUID) ([]*types.Reward, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var results []*types.Reward
  if len(coachIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("coach_id IN ?", coachIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (rr *rewardRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Reward, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  var results []*types.Reward
  if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (rr *rewardRepo) ClaimIf(ctx context.Context, tx *gorm.DB, id, studentID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  res := transaction.WithContext(ctx).
    Model(&types.Reward{}).
    Where("id = ? AND student_id = ? AND is_claimed = ?", id, studentID, false).
    Update("is_claimed", true)
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected > 0, nil
}

func (rr *rewardRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  res := transaction.WithContext(ctx).
    Where("id = ?", id).
    Delete(&types.Reward{})
  return res.RowsAffected, res.Error
}

func (rr *rewardRepo) DeleteByMemberID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = rr.db
  }
  return transaction.WithContext(ctx).
    Where("coach_id = ? OR student_id = ?", userID, userID).
    Delete(&types.Reward{}).Error
}
