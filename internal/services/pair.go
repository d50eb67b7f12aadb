package services

import (
  "context"
  "fmt"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/koclukapp/kocluk-backend/internal/logger"
  "github.com/koclukapp/kocluk-backend/internal/repos"
  "github.com/koclukapp/kocluk-backend/internal/requestdata"
  "github.com/koclukapp/kocluk-backend/internal/types"
)

type PairService interface {
  ListMyStudents(ctx context.Context) ([]*types.Profile, error)
  ListUnassignedStudents(ctx context.Context) ([]*types.Profile, error)
  ClaimStudent(ctx context.Context, studentID uuid.UUID) (*types.CoachStudentPair, error)
  UnpairStudent(ctx context.Context, studentID uuid.UUID) error
  GetMyCoach(ctx context.Context) (*types.Profile, error)
  // PairedWith reports whether the two users form an active coach-student
  // pair, in either role arrangement.
  PairedWith(ctx context.Context, a, b uuid.UUID) (bool, error)
}

type pairService struct {
  db          *gorm.DB
  log         *logger.Logger
  profileRepo repos.ProfileRepo
  pairRepo    repos.PairRepo
}

func NewPairService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo, pairRepo repos.PairRepo) PairService {
  serviceLog := log.With("service", "PairService")
  return &pairService{db: db, log: serviceLog, profileRepo: profileRepo, pairRepo: pairRepo}
}

func (ps *pairService) ListMyStudents(ctx context.Context) ([]*types.Profile, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  pairs, err := ps.pairRepo.ListByCoachIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil {
    return nil, fmt.Errorf("Failed to list pairs: %w", err)
  }
  studentIDs := make([]uuid.UUID, 0, len(pairs))
  for _, p := range pairs {
    studentIDs = append(studentIDs, p.StudentID)
  }
  students, err := ps.profileRepo.GetByIDs(ctx, nil, studentIDs)
  if err != nil {
    return nil, fmt.Errorf("Failed to load students: %w", err)
  }
  return students, nil
}

func (ps *pairService) ListUnassignedStudents(ctx context.Context) ([]*types.Profile, error) {
  return ps.profileRepo.ListStudentsWithoutPair(ctx, nil)
}

func (ps *pairService) ClaimStudent(ctx context.Context, studentID uuid.UUID) (*types.CoachStudentPair, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  profiles, err := ps.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{studentID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load student: %w", err)
  }
  if len(profiles) == 0 || profiles[0].Role != types.RoleStudent {
    return nil, fmt.Errorf("Student not found")
  }
  var pair *types.CoachStudentPair
  err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    existing, exErr := ps.pairRepo.GetByStudentIDs(ctx, tx, []uuid.UUID{studentID})
    if exErr != nil {
      return fmt.Errorf("Failed to check existing pair: %w", exErr)
    }
    if len(existing) > 0 {
      return fmt.Errorf("Student is already assigned to a coach")
    }
    pair = &types.CoachStudentPair{
      ID:        uuid.New(),
      CoachID:   rd.UserID,
      StudentID: studentID,
    }
    if _, cErr := ps.pairRepo.Create(ctx, tx, []*types.CoachStudentPair{pair}); cErr != nil {
      return fmt.Errorf("Failed to create pair: %w", cErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return pair, nil
}

func (ps *pairService) UnpairStudent(ctx context.Context, studentID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return fmt.Errorf("Not authenticated")
  }
  pairs, err := ps.pairRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{studentID})
  if err != nil {
    return fmt.Errorf("Failed to load pair: %w", err)
  }
  if len(pairs) == 0 {
    return fmt.Errorf("Student is not assigned")
  }
  if pairs[0].CoachID != rd.UserID {
    return fmt.Errorf("Student is not assigned to you")
  }
  if _, err := ps.pairRepo.DeleteByStudentIDs(ctx, nil, []uuid.UUID{studentID}); err != nil {
    return fmt.Errorf("Failed to remove pair: %w", err)
  }
  return nil
}

func (ps *pairService) GetMyCoach(ctx context.Context) (*types.Profile, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Not authenticated")
  }
  pairs, err := ps.pairRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load pair: %w", err)
  }
  if len(pairs) == 0 {
    return nil, nil
  }
  coaches, err := ps.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{pairs[0].CoachID})
  if err != nil {
    return nil, fmt.Errorf("Failed to load coach: %w", err)
  }
  if len(coaches) == 0 {
    return nil, nil
  }
  return coaches[0], nil
}

func (ps *pairService) PairedWith(ctx context.Context, a, b uuid.UUID) (bool, error) {
  pairs, err := ps.pairRepo.GetByStudentIDs(ctx, nil, []uuid.UUID{a, b})
  if err != nil {
    return false, fmt.Errorf("Failed to load pairs: %w", err)
  }
  for _, p := range pairs {
    if (p.StudentID == a && p.CoachID == b) || (p.StudentID == b && p.CoachID == a) {
      return true, nil
    }
  }
  return false, nil
}
