package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type TaskRepo interface {
  Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Task, error)
  ListByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.Task, error)
  ListByCoachIDs(ctx context.Context, tx *gorm.DB, coachIDs []uuid.UUID) ([]*types.Task, error)
  ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Task, error)
  ListPendingCreatedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Task, error)
  // UpdateStatusIf transitions a single task from one status to another and
  // reports whether the row actually moved. The conditional WHERE makes the
  // transition atomic and idempotent at the storage layer.
  UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to types.TaskStatus) (bool, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
  DeleteByMemberID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type taskRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
  repoLog := baseLog.With("repo", "TaskRepo")
  return &taskRepo{db: db, log: repoLog}
}

func (tr *taskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.Task) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  if len(tasks) == 0 {
    return []*types.Task{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
    return nil, err
  }
  return tasks, nil
}

func (tr *taskRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Task
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

func (tr *taskRepo) ListByStudentIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Task
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

func (tr *taskRepo) ListByCoachIDs(ctx context.Context, tx *gorm.DB, coachIDs []uuid.UUID) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Task
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

func (tr *taskRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Task
  if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (tr *taskRepo) ListPendingCreatedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.Task, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  var results []*types.Task
  if err := transaction.WithContext(ctx).
    Where("status = ? AND created_at <= ?", types.TaskStatusPending, cutoff).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (tr *taskRepo) UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to types.TaskStatus) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  res := transaction.WithContext(ctx).
    Model(&types.Task{}).
    Where("id = ? AND status = ?", id, from).
    Update("status", to)
  if res.Error != nil {
    return false, res.Error
  }
  return res.RowsAffected > 0, nil
}

func (tr *taskRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  if len(fields) == 0 {
    return nil
  }
  return transaction.WithContext(ctx).
    Model(&types.Task{}).
    Where("id = ?", id).
    Updates(fields).Error
}

func (tr *taskRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  res := transaction.WithContext(ctx).
    Where("id = ?", id).
    Delete(&types.Task{})
  return res.RowsAffected, res.Error
}

func (tr *taskRepo) DeleteByMemberID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = tr.db
  }
  return transaction.WithContext(ctx).
    Where("coach_id = ? OR student_id = ?", userID, userID).
    Delete(&types.Task{}).Error
}
