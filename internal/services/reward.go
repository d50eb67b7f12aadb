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

type RewardCreate struct {
  StudentID   uuid.UUID `json:"student_id"`
  Title       string    `json:"title"`
  Description string    `json:"description"`
}

type RewardService interface {
  CreateReward(ctx context.Context, req RewardCreate) (*types.Reward, error)
  ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Reward, error)
  ClaimReward(ctx context.Context, rewardID uuid.UUID) (*types.Reward, error)
  DeleteReward(ctx context.Context, rewardID uuid.UUID) (int64, error)
}

type rewardService struct {
  db         *gorm.DB
  log        *logger.Logger
  rewardRepo repos.RewardRepo
  pairs      PairService
  notify     RewardNotifier
}

func NewRewardService(db *gorm.DB, log *logger.Logger, rewardRepo repos.RewardRepo, pairs PairService, notify RewardNotifier) RewardService {
  serviceLog := log.With("service", "RewardService")
  return &rewardService{db: db, log: serviceLog, rewardRepo: rewardRepo, pairs: pairs, notify: notify}
}

func (rs *rewardService) CreateReward(ctx context.Context, req RewardCreate) (*types.Reward, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  if strings.TrimSpace(req.Title) == "" {
    return nil, fmt.Errorf("A title is required")
  }
  paired, err := rs.pairs.PairedWith(ctx, rd.UserID, req.StudentID)
  if err != nil {
    return nil, err
  }
  if !paired {
    return nil, fmt.Errorf("Student is not assigned to you")
  }
  reward := &types.Reward{
    ID:          uuid.New(),
    CoachID:     rd.UserID,
    StudentID:   req.StudentID,
    Title:       strings.TrimSpace(req.Title),
    Description: strings.TrimSpace(req.Description),
    IsClaimed:   false,
  }
  if _, cErr := rs.rewardRepo.Create(ctx, nil, []*types.Reward{reward}); cErr != nil {
    return nil, fmt.Errorf("Failed to create reward: %w", cErr)
  }
  if rs.notify != nil {
    rs.notify.RewardCreated(reward)
  }
  return reward, nil
}

func (rs *rewardService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Reward, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  if rd.UserID != studentID && rd.Role != types.RoleAdmin {
    paired, err := rs.pairs.PairedWith(ctx, rd.UserID, studentID)
    if err != nil {
      return nil, err
    }
    if !paired {
      return nil, fmt.Errorf("Student is not assigned to you")
    }
  }
  return rs.rewardRepo.ListByStudentIDs(ctx, nil, []uuid.UUID{studentID})
}

func (rs *rewardService) ClaimReward(ctx context.Context, rewardID uuid.UUID) (*types.Reward, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  claimed, err := rs.rewardRepo.ClaimIf(ctx, nil, rewardID, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("Failed to claim reward: %w", err)
  }
  if !claimed {
    return nil, fmt.Errorf("Reward not found or already claimed")
  }
  rewards, err := rs.rewardRepo.GetByIDs(ctx, nil, []uuid.UUID{rewardID})
  if err != nil || len(rewards) == 0 {
    return nil, fmt.Errorf("Failed to reload reward after claim")
  }
  if rs.notify != nil {
    rs.notify.RewardClaimed(rewards[0])
  }
  return rewards[0], nil
}

func (rs *rewardService) DeleteReward(ctx context.Context, rewardID uuid.UUID) (int64, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return 0, fmt.Errorf("Not authenticated")
  }
  rewards, err := rs.rewardRepo.GetByIDs(ctx, nil, []uuid.UUID{rewardID})
  if err != nil {
    return 0, fmt.Errorf("Failed to load reward: %w", err)
  }
  if len(rewards) == 0 {
    return 0, nil
  }
  if rewards[0].CoachID != rd.UserID {
    return 0, fmt.Errorf("Reward was not created by you")
  }
  affected, err := rs.rewardRepo.Delete(ctx, nil, rewardID)
  if err != nil {
    return 0, fmt.Errorf("Failed to delete reward: %w", err)
  }
  return affected, nil
}
