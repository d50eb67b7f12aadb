package services

import (
  "context"
  "fmt"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/repos"
  "github.com/koclukapp/kocluk-backend/internal/requestdata"
  "github.com/koclukapp/kocluk-backend/internal/types"
  "github.com/koclukapp/kocluk-backend/internal/utils"
)

type TaskCreate struct {
  StudentID     uuid.UUID      `json:"student_id"`
  Subject       string         `json:"subject"`
  Topic         string         `json:"topic"`
  Type          types.TaskType `json:"task_type"`
  QuestionCount *int           `json:"question_count"`
  Description   string         `json:"description"`
}

type TaskReview struct {
  Decision     types.TaskStatus `json:"decision"`
  CorrectCount *int             `json:"correct_count"`
  WrongCount   *int             `json:"wrong_count"`
  EmptyCount   *int             `json:"empty_count"`
}

type TaskService interface {
  CreateTask(ctx context.Context, req TaskCreate) (*types.Task, error)
  ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Task, error)
  ListForStudentBySubject(ctx context.Context, studentID uuid.UUID) (map[string][]*types.Task, error)
  SubmitTask(ctx context.Context, taskID uuid.UUID) (*types.Task, error)
  ReviewTask(ctx context.Context, taskID uuid.UUID, review TaskReview) (*types.Task, error)
  DeleteTask(ctx context.Context, taskID uuid.UUID) (int64, error)
  Analytics(ctx context.Context, studentID uuid.UUID, window string) ([]SubjectTopicAggregate, error)
  ReadingSummary(ctx context.Context, studentID uuid.UUID) ([]WeeklyReading, error)
  ExpireOverdueTasks(ctx context.Context) (int, error)
  StartDeadlineSweeper(ctx context.Context)
}

type taskService struct {
  db            *gorm.DB
  log           *logger.Logger
  taskRepo      repos.TaskRepo
  pairs         PairService
  notify        TaskNotifier
  deadline      time.Duration
  sweepInterval time.Duration
}

func NewTaskService(
  db *gorm.DB,
  log *logger.Logger,
  taskRepo repos.TaskRepo,
  pairs PairService,
  notify TaskNotifier,
  deadline time.Duration,
  sweepInterval time.Duration,
) TaskService {
  serviceLog := log.With("service", "TaskService")
  return &taskService{
    db:            db,
    log:           serviceLog,
    taskRepo:      taskRepo,
    pairs:         pairs,
    notify:        notify,
    deadline:      deadline,
    sweepInterval: sweepInterval,
  }
}

func (ts *taskService) CreateTask(ctx context.Context, req TaskCreate) (*types.Task, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  paired, err := ts.pairs.PairedWith(ctx, rd.UserID, req.StudentID)
  if err != nil {
    return nil, err
  }
  if !paired {
    return nil, fmt.Errorf("Student is not assigned to you")
  }
  task := &types.Task{
    ID:            uuid.New(),
    CoachID:       rd.UserID,
    StudentID:     req.StudentID,
    Subject:       req.Subject,
    Topic:         req.Topic,
    Type:          req.Type,
    QuestionCount: req.QuestionCount,
    Description:   req.Description,
    Status:        types.TaskStatusPending,
  }
  if vErr := utils.ValidateStruct(task); vErr != nil {
    return nil, vErr
  }
  if task.Type == types.TaskTypeQuestions {
    if task.QuestionCount == nil || *task.QuestionCount <= 0 {
      return nil, fmt.Errorf("A positive question count is required for question-solving tasks")
    }
  } else {
    task.QuestionCount = nil
  }
  if _, cErr := ts.taskRepo.Create(ctx, nil, []*types.Task{task}); cErr != nil {
    return nil, fmt.Errorf("Failed to create task: %w", cErr)
  }
  if ts.notify != nil {
    ts.notify.TaskCreated(task)
  }
  return task, nil
}

func (ts *taskService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Task, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  if err := ts.authorizeStudentView(ctx, rd, studentID); err != nil {
    return nil, err
  }
  return ts.taskRepo.ListByStudentIDs(ctx, nil, []uuid.UUID{studentID})
}

func (ts *taskService) ListForStudentBySubject(ctx context.Context, studentID uuid.UUID) (map[string][]*types.Task, error) {
  tasks, err := ts.ListForStudent(ctx, studentID)
  if err != nil {
    return nil, err
  }
  return GroupTasksBySubject(tasks), nil
}

func (ts *taskService) SubmitTask(ctx context.Context, taskID uuid.UUID) (*types.Task, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  tasks, err := ts.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{taskID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load task: %w", err)
  }
  if len(tasks) == 0 {
    return nil, fmt.Errorf("Task not found")
  }
  task := tasks[0]
  if task.StudentID != rd.UserID {
    return nil, fmt.Errorf("Task does not belong to you")
  }
  moved, err := ts.taskRepo.UpdateStatusIf(ctx, nil, taskID, types.TaskStatusPending, types.TaskStatusPendingApproval)
  if err != nil {
    return nil, fmt.Errorf("Failed to submit task: %w", err)
  }
  if !moved {
    return nil, fmt.Errorf("Task can only be submitted while pending")
  }
  task.Status = types.TaskStatusPendingApproval
  if ts.notify != nil {
    ts.notify.TaskUpdated(task)
  }
  return task, nil
}

func (ts *taskService) ReviewTask(ctx context.Context, taskID uuid.UUID, review TaskReview) (*types.Task, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  if review.Decision != types.TaskStatusCompleted && review.Decision != types.TaskStatusNotCompleted {
    return nil, fmt.Errorf("Review decision must be completed or not_completed")
  }
  tasks, err := ts.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{taskID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load task: %w", err)
  }
  if len(tasks) == 0 {
    return nil, fmt.Errorf("Task not found")
  }
  task := tasks[0]
  if task.CoachID != rd.UserID {
    return nil, fmt.Errorf("Task was not assigned by you")
  }
  switch task.Status {
  case types.TaskStatusPendingApproval:
    // always reviewable
  case types.TaskStatusPending:
    // non-question tasks support direct approval without the student's
    // submission step
    if task.Type == types.TaskTypeQuestions {
      return nil, fmt.Errorf("Question-solving tasks await the student's submission before review")
    }
  default:
    return nil, fmt.Errorf("Task is already finalized")
  }

  fields := map[string]interface{}{"status": review.Decision}
  if task.Type == types.TaskTypeQuestions && review.Decision == types.TaskStatusCompleted {
    if review.CorrectCount == nil || review.WrongCount == nil || review.EmptyCount == nil {
      return nil, fmt.Errorf("Correct, wrong and empty counts are required to complete a question-solving task")
    }
    if *review.CorrectCount < 0 || *review.WrongCount < 0 || *review.EmptyCount < 0 {
      return nil, fmt.Errorf("Counts cannot be negative")
    }
    if task.QuestionCount == nil {
      return nil, fmt.Errorf("Task has no question count")
    }
    sum := *review.CorrectCount + *review.WrongCount + *review.EmptyCount
    if sum != *task.QuestionCount {
      return nil, fmt.Errorf("Counts must sum to %d, got %d", *task.QuestionCount, sum)
    }
    fields["correct_count"] = *review.CorrectCount
    fields["wrong_count"] = *review.WrongCount
    fields["empty_count"] = *review.EmptyCount
  }
  if review.Decision == types.TaskStatusNotCompleted {
    // rejection clears any previously entered score
    fields["correct_count"] = nil
    fields["wrong_count"] = nil
    fields["empty_count"] = nil
  }
  if uErr := ts.taskRepo.UpdateFields(ctx, nil, taskID, fields); uErr != nil {
    return nil, fmt.Errorf("Failed to review task: %w", uErr)
  }
  updated, err := ts.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{taskID})
  if err != nil || len(updated) == 0 {
    return nil, fmt.Errorf("Failed to reload task after review")
  }
  if ts.notify != nil {
    ts.notify.TaskUpdated(updated[0])
  }
  return updated[0], nil
}

func (ts *taskService) DeleteTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return 0, fmt.Errorf("Not authenticated")
  }
  tasks, err := ts.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{taskID})
  if err != nil {
    return 0, fmt.Errorf("Failed to load task: %w", err)
  }
  if len(tasks) == 0 {
    // deleting an already removed task is a no-op, not an error
    return 0, nil
  }
  task := tasks[0]
  if task.CoachID != rd.UserID {
    return 0, fmt.Errorf("Task was not assigned by you")
  }
  affected, err := ts.taskRepo.Delete(ctx, nil, taskID)
  if err != nil {
    return 0, fmt.Errorf("Failed to delete task: %w", err)
  }
  if affected > 0 && ts.notify != nil {
    ts.notify.TaskDeleted(taskID, task.CoachID, task.StudentID)
  }
  return affected, nil
}

func (ts *taskService) Analytics(ctx context.Context, studentID uuid.UUID, window string) ([]SubjectTopicAggregate, error) {
  tasks, err := ts.ListForStudent(ctx, studentID)
  if err != nil {
    return nil, err
  }
  windowed := FilterTasksByWindow(tasks, window, time.Now())
  return AggregateQuestionResults(windowed), nil
}

func (ts *taskService) ReadingSummary(ctx context.Context, studentID uuid.UUID) ([]WeeklyReading, error) {
  tasks, err := ts.ListForStudent(ctx, studentID)
  if err != nil {
    return nil, err
  }
  return WeeklyReadingTotals(tasks), nil
}

// ExpireOverdueTasks transitions every pending task past its deadline to
// not_completed. The per-task conditional update makes the sweep idempotent:
// a task expires exactly once no matter how many ticks observe it.
func (ts *taskService) ExpireOverdueTasks(ctx context.Context) (int, error) {
  cutoff := time.Now().Add(-ts.deadline)
  overdue, err := ts.taskRepo.ListPendingCreatedBefore(ctx, nil, cutoff)
  if err != nil {
    return 0, fmt.Errorf("Failed to list overdue tasks: %w", err)
  }
  expired := 0
  for _, task := range overdue {
    moved, uErr := ts.taskRepo.UpdateStatusIf(ctx, nil, task.ID, types.TaskStatusPending, types.TaskStatusNotCompleted)
    if uErr != nil {
      ts.log.Warn("Failed to expire task", "task_id", task.ID, "error", uErr)
      continue
    }
    if moved {
      expired++
      task.Status = types.TaskStatusNotCompleted
      if ts.notify != nil {
        ts.notify.TaskUpdated(task)
      }
    }
  }
  return expired, nil
}

// StartDeadlineSweeper runs a single shared ticker evaluating all pending
// deadlines, rather than one timer per task. It stops when ctx is done.
func (ts *taskService) StartDeadlineSweeper(ctx context.Context) {
  go func() {
    ticker := time.NewTicker(ts.sweepInterval)
    defer ticker.Stop()
    for {
      select {
      case <-ctx.Done():
        return
      case <-ticker.C:
        if expired, err := ts.ExpireOverdueTasks(ctx); err != nil {
          ts.log.Warn("Deadline sweep failed", "error", err)
        } else if expired > 0 {
          ts.log.Info("Deadline sweep expired tasks", "count", expired)
        }
      }
    }
  }()
}

func (ts *taskService) authorizeStudentView(ctx context.Context, rd *requestdata.RequestData, studentID uuid.UUID) error {
  if rd.UserID == studentID || rd.Role == types.RoleAdmin {
    return nil
  }
  paired, err := ts.pairs.PairedWith(ctx, rd.UserID, studentID)
  if err != nil {
    return err
  }
  if !paired {
    return fmt.Errorf("Student is not assigned to you")
  }
  return nil
}
