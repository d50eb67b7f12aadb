package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/koclukapp/kocluk-backend/internal/types"
)

func newRewardServiceForTest(env *testEnv) RewardService {
	return NewRewardService(env.db, env.log, env.rewardRepo, env.pairs, nil)
}

func TestCreateRewardGuards(t *testing.T) {
	env := newTestEnv(t)
	svc := newRewardServiceForTest(env)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)

	if _, err := svc.CreateReward(ctxFor(coach), RewardCreate{StudentID: student.ID, Title: "cinema"}); err == nil {
		t.Fatalf("rewarding an unpaired student should fail")
	}

	env.mustPair(t, coach.ID, student.ID)
	if _, err := svc.CreateReward(ctxFor(coach), RewardCreate{StudentID: student.ID, Title: "  "}); err == nil {
		t.Fatalf("blank title should fail")
	}

	reward, err := svc.CreateReward(ctxFor(coach), RewardCreate{StudentID: student.ID, Title: " cinema night ", Description: "after exams"})
	if err != nil {
		t.Fatalf("CreateReward: %v", err)
	}
	if reward.Title != "cinema night" {
		t.Fatalf("title should be trimmed, got=%q", reward.Title)
	}
	if reward.IsClaimed {
		t.Fatalf("new reward must start unclaimed")
	}
}

func TestClaimRewardOneWay(t *testing.T) {
	env := newTestEnv(t)
	svc := newRewardServiceForTest(env)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	other := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	reward, err := svc.CreateReward(ctxFor(coach), RewardCreate{StudentID: student.ID, Title: "cinema"})
	if err != nil {
		t.Fatalf("CreateReward: %v", err)
	}

	// only the reward's student can claim it
	if _, err := svc.ClaimReward(ctxFor(other), reward.ID); err == nil {
		t.Fatalf("claiming another student's reward should fail")
	}

	claimed, err := svc.ClaimReward(ctxFor(student), reward.ID)
	if err != nil {
		t.Fatalf("ClaimReward: %v", err)
	}
	if !claimed.IsClaimed {
		t.Fatalf("reward should be claimed")
	}

	// the claimed flag never flips back
	if _, err := svc.ClaimReward(ctxFor(student), reward.ID); err == nil {
		t.Fatalf("double claim should fail")
	}

	if _, err := svc.ClaimReward(ctxFor(student), uuid.New()); err == nil {
		t.Fatalf("claiming a missing reward should fail")
	}
}

func TestDeleteReward(t *testing.T) {
	env := newTestEnv(t)
	svc := newRewardServiceForTest(env)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	reward, err := svc.CreateReward(ctxFor(coach), RewardCreate{StudentID: student.ID, Title: "cinema"})
	if err != nil {
		t.Fatalf("CreateReward: %v", err)
	}

	if _, err := svc.DeleteReward(ctxFor(student), reward.ID); err == nil {
		t.Fatalf("student deleting a reward should fail")
	}

	affected, err := svc.DeleteReward(ctxFor(coach), reward.ID)
	if err != nil {
		t.Fatalf("DeleteReward: %v", err)
	}
	if affected != 1 {
		t.Fatalf("delete affected: want=1 got=%d", affected)
	}

	// deleting a missing reward is a no-op
	affected, err = svc.DeleteReward(ctxFor(coach), reward.ID)
	if err != nil {
		t.Fatalf("second DeleteReward: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second delete affected: want=0 got=%d", affected)
	}
}

func TestListRewardsAuthorization(t *testing.T) {
	env := newTestEnv(t)
	svc := newRewardServiceForTest(env)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	stranger := env.mustCreateProfile(t, types.RoleCoach)
	env.mustPair(t, coach.ID, student.ID)

	if _, err := svc.ListForStudent(ctxFor(student), student.ID); err != nil {
		t.Fatalf("student listing own rewards: %v", err)
	}
	if _, err := svc.ListForStudent(ctxFor(coach), student.ID); err != nil {
		t.Fatalf("paired coach listing rewards: %v", err)
	}
	if _, err := svc.ListForStudent(ctxFor(stranger), student.ID); err == nil {
		t.Fatalf("unpaired coach must not list the student's rewards")
	}
}
