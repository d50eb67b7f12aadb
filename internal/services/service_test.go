package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/koclukapp/kocluk-backend/internal/logger"
	"github.com/koclukapp/kocluk-backend/internal/repos"
	"github.com/koclukapp/kocluk-backend/internal/requestdata"
	"github.com/koclukapp/kocluk-backend/internal/types"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func mustTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	err = db.AutoMigrate(
		&types.Profile{},
		&types.UserToken{},
		&types.CoachStudentPair{},
		&types.Task{},
		&types.Reward{},
		&types.Message{},
	)
	if err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

type testEnv struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	tokenRepo   repos.UserTokenRepo
	pairRepo    repos.PairRepo
	taskRepo    repos.TaskRepo
	rewardRepo  repos.RewardRepo
	messageRepo repos.MessageRepo
	pairs       PairService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := mustTestDB(t)
	log := mustTestLogger(t)
	env := &testEnv{
		db:          db,
		log:         log,
		profileRepo: repos.NewProfileRepo(db, log),
		tokenRepo:   repos.NewUserTokenRepo(db, log),
		pairRepo:    repos.NewPairRepo(db, log),
		taskRepo:    repos.NewTaskRepo(db, log),
		rewardRepo:  repos.NewRewardRepo(db, log),
		messageRepo: repos.NewMessageRepo(db, log),
	}
	env.pairs = NewPairService(db, log, env.profileRepo, env.pairRepo)
	return env
}

func (env *testEnv) mustCreateProfile(t *testing.T, role string) *types.Profile {
	t.Helper()
	id := uuid.New()
	profile := &types.Profile{
		ID:        id,
		Role:      role,
		FirstName: "Test",
		LastName:  "User",
		Username:  "user-" + id.String()[:8],
		Email:     id.String()[:8] + "@example.com",
		Password:  "hashed-password",
	}
	if _, err := env.profileRepo.Create(context.Background(), nil, []*types.Profile{profile}); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func (env *testEnv) mustPair(t *testing.T, coachID, studentID uuid.UUID) *types.CoachStudentPair {
	t.Helper()
	pair := &types.CoachStudentPair{ID: uuid.New(), CoachID: coachID, StudentID: studentID}
	if _, err := env.pairRepo.Create(context.Background(), nil, []*types.CoachStudentPair{pair}); err != nil {
		t.Fatalf("create pair: %v", err)
	}
	return pair
}

func ctxFor(profile *types.Profile) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:    profile.ID,
		SessionID: uuid.New(),
		Role:      profile.Role,
	})
}

func intPtr(v int) *int {
	return &v
}
