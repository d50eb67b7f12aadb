package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type PairRepo interface {
  Create(ctx context.Context, tx *gorm.DB, pairs []*types.CoachStudentPair) ([]*types.CoachStudentPair, error)
  GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.CoachStudentPair, error)
  ListByCoachIDs(ctx context.Context, tx *gorm.DB, coachIDs []uuid.UUID) ([]*types.CoachStudentPair, error)
  ListAll(ctx context.Context, tx *gorm.DB) ([]*types.CoachStudentPair, error)
  DeleteByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) (int64, error)
  DeleteByMemberID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type pairRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPairRepo(db *gorm.DB, baseLog *logger.Logger) PairRepo {
  repoLog := baseLog.With("repo", "PairRepo")
  return &pairRepo{db: db, log: repoLog}
}

func (pr *pairRepo) Create(ctx context.Context, tx *gorm.DB, pairs []*types.CoachStudentPair) ([]*types.CoachStudentPair, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  if len(pairs) == 0 {
    return []*types.CoachStudentPair{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&pairs).Error; err != nil {
    return nil, err
  }
  return pairs, nil
}

func (pr *pairRepo) GetByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.CoachStudentPair, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.CoachStudentPair
  if len(studentIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("student_id IN ?", studentIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *pairRepo) ListByCoachIDs(ctx context.Context, tx *gorm.DB, coachIDs []uuid.UUID) ([]*types.CoachStudentPair, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.CoachStudentPair
  if len(coachIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("coach_id IN ?", coachIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *pairRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.CoachStudentPair, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  var results []*types.CoachStudentPair
  if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *pairRepo) DeleteByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  if len(studentIDs) == 0 {
    return 0, nil
  }
  res := transaction.WithContext(ctx).
    Where("student_id IN ?", studentIDs).
    Delete(&types.CoachStudentPair{})
  return res.RowsAffected, res.Error
}

func (pr *pairRepo) DeleteByMemberID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }
  return transaction.WithContext(ctx).
    Where("coach_id = ? OR student_id = ?", userID, userID).
    Delete(&types.CoachStudentPair{}).Error
}
