package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/koclukapp/kocluk-backend/internal/types"
)

func newTaskServiceForTest(env *testEnv, deadline time.Duration) TaskService {
	return NewTaskService(env.db, env.log, env.taskRepo, env.pairs, nil, deadline, time.Minute)
}

func TestCreateTaskRequiresPairing(t *testing.T) {
	env := newTestEnv(t)
	svc := newTaskServiceForTest(env, 24*time.Hour)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)

	_, err := svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID: student.ID,
		Subject:   "math",
		Type:      types.TaskTypeExplanation,
	})
	if err == nil {
		t.Fatalf("creating a task for an unpaired student should fail")
	}

	env.mustPair(t, coach.ID, student.ID)
	task, err := svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID: student.ID,
		Subject:   "math",
		Topic:     "derivatives",
		Type:      types.TaskTypeExplanation,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != types.TaskStatusPending {
		t.Fatalf("new task status: want=%s got=%s", types.TaskStatusPending, task.Status)
	}
}

func TestCreateTaskQuestionCountRules(t *testing.T) {
	env := newTestEnv(t)
	svc := newTaskServiceForTest(env, 24*time.Hour)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	_, err := svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID: student.ID,
		Subject:   "math",
		Type:      types.TaskTypeQuestions,
	})
	if err == nil {
		t.Fatalf("question-solving task without question count should fail")
	}

	_, err = svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID:     student.ID,
		Subject:       "math",
		Type:          types.TaskTypeQuestions,
		QuestionCount: intPtr(0),
	})
	if err == nil {
		t.Fatalf("question-solving task with zero question count should fail")
	}

	// a question count on a non-question task is dropped, not an error
	task, err := svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID:     student.ID,
		Subject:       "literature",
		Topic:         "120",
		Type:          types.TaskTypeReading,
		QuestionCount: intPtr(40),
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.QuestionCount != nil {
		t.Fatalf("reading task should not keep a question count")
	}
}

func TestTaskSubmitAndReviewFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := newTaskServiceForTest(env, 24*time.Hour)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	task, err := svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID:     student.ID,
		Subject:       "math",
		Topic:         "algebra",
		Type:          types.TaskTypeQuestions,
		QuestionCount: intPtr(20),
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	// the coach cannot review a question task before the student submits
	_, err = svc.ReviewTask(ctxFor(coach), task.ID, TaskReview{Decision: types.TaskStatusCompleted})
	if err == nil {
		t.Fatalf("reviewing a pending question task should fail")
	}

	// only the assigned student can submit
	other := env.mustCreateProfile(t, types.RoleStudent)
	if _, err = svc.SubmitTask(ctxFor(other), task.ID); err == nil {
		t.Fatalf("submitting someone else's task should fail")
	}

	submitted, err := svc.SubmitTask(ctxFor(student), task.ID)
	if err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}
	if submitted.Status != types.TaskStatusPendingApproval {
		t.Fatalf("submitted status: want=%s got=%s", types.TaskStatusPendingApproval, submitted.Status)
	}

	// re-submitting is rejected: the transition already happened
	if _, err = svc.SubmitTask(ctxFor(student), task.ID); err == nil {
		t.Fatalf("double submit should fail")
	}

	// counts that do not sum to the question count are rejected without mutation
	_, err = svc.ReviewTask(ctxFor(coach), task.ID, TaskReview{
		Decision:     types.TaskStatusCompleted,
		CorrectCount: intPtr(10),
		WrongCount:   intPtr(5),
		EmptyCount:   intPtr(2),
	})
	if err == nil {
		t.Fatalf("counts summing to 17 of 20 should be rejected")
	}
	unchanged, err := env.taskRepo.GetByIDs(context.Background(), nil, []uuid.UUID{task.ID})
	if err != nil || len(unchanged) != 1 {
		t.Fatalf("reload task: %v", err)
	}
	if unchanged[0].Status != types.TaskStatusPendingApproval || unchanged[0].CorrectCount != nil {
		t.Fatalf("rejected review must not mutate the task, got %+v", unchanged[0])
	}

	reviewed, err := svc.ReviewTask(ctxFor(coach), task.ID, TaskReview{
		Decision:     types.TaskStatusCompleted,
		CorrectCount: intPtr(15),
		WrongCount:   intPtr(3),
		EmptyCount:   intPtr(2),
	})
	if err != nil {
		t.Fatalf("ReviewTask: %v", err)
	}
	if reviewed.Status != types.TaskStatusCompleted {
		t.Fatalf("reviewed status: want=%s got=%s", types.TaskStatusCompleted, reviewed.Status)
	}
	if reviewed.CorrectCount == nil || *reviewed.CorrectCount != 15 {
		t.Fatalf("correct count not persisted: %+v", reviewed)
	}

	// a finalized task cannot be reviewed again
	if _, err = svc.ReviewTask(ctxFor(coach), task.ID, TaskReview{Decision: types.TaskStatusNotCompleted}); err == nil {
		t.Fatalf("reviewing a finalized task should fail")
	}
}

func TestReviewRejectClearsCounts(t *testing.T) {
	env := newTestEnv(t)
	svc := newTaskServiceForTest(env, 24*time.Hour)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	task, err := svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID:     student.ID,
		Subject:       "math",
		Type:          types.TaskTypeQuestions,
		QuestionCount: intPtr(10),
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err = svc.SubmitTask(ctxFor(student), task.ID); err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}

	rejected, err := svc.ReviewTask(ctxFor(coach), task.ID, TaskReview{
		Decision:     types.TaskStatusNotCompleted,
		CorrectCount: intPtr(5),
		WrongCount:   intPtr(5),
		EmptyCount:   intPtr(0),
	})
	if err != nil {
		t.Fatalf("ReviewTask: %v", err)
	}
	if rejected.Status != types.TaskStatusNotCompleted {
		t.Fatalf("status: want=%s got=%s", types.TaskStatusNotCompleted, rejected.Status)
	}
	if rejected.CorrectCount != nil || rejected.WrongCount != nil || rejected.EmptyCount != nil {
		t.Fatalf("rejection must clear counts, got %+v", rejected)
	}
}

func TestReviewNonQuestionTaskDirectly(t *testing.T) {
	env := newTestEnv(t)
	svc := newTaskServiceForTest(env, 24*time.Hour)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	task, err := svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID: student.ID,
		Subject:   "history",
		Type:      types.TaskTypeExplanation,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	// explanation tasks can be approved straight from pending
	reviewed, err := svc.ReviewTask(ctxFor(coach), task.ID, TaskReview{Decision: types.TaskStatusCompleted})
	if err != nil {
		t.Fatalf("ReviewTask: %v", err)
	}
	if reviewed.Status != types.TaskStatusCompleted {
		t.Fatalf("status: want=%s got=%s", types.TaskStatusCompleted, reviewed.Status)
	}
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	svc := newTaskServiceForTest(env, 24*time.Hour)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	task, err := svc.CreateTask(ctxFor(coach), TaskCreate{
		StudentID: student.ID,
		Subject:   "math",
		Type:      types.TaskTypeExplanation,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	// only the assigning coach may delete
	if _, err = svc.DeleteTask(ctxFor(student), task.ID); err == nil {
		t.Fatalf("student deleting a task should fail")
	}

	affected, err := svc.DeleteTask(ctxFor(coach), task.ID)
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if affected != 1 {
		t.Fatalf("delete affected: want=1 got=%d", affected)
	}

	// deleting again is a silent no-op
	affected, err = svc.DeleteTask(ctxFor(coach), task.ID)
	if err != nil {
		t.Fatalf("second DeleteTask: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second delete affected: want=0 got=%d", affected)
	}
}

func TestExpireOverdueTasksIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := newTaskServiceForTest(env, 24*time.Hour)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	ctx := context.Background()
	overdue := &types.Task{
		ID:        uuid.New(),
		CoachID:   coach.ID,
		StudentID: student.ID,
		Subject:   "math",
		Type:      types.TaskTypeExplanation,
		Status:    types.TaskStatusPending,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	fresh := &types.Task{
		ID:        uuid.New(),
		CoachID:   coach.ID,
		StudentID: student.ID,
		Subject:   "math",
		Type:      types.TaskTypeExplanation,
		Status:    types.TaskStatusPending,
		CreatedAt: time.Now(),
	}
	submitted := &types.Task{
		ID:        uuid.New(),
		CoachID:   coach.ID,
		StudentID: student.ID,
		Subject:   "math",
		Type:      types.TaskTypeExplanation,
		Status:    types.TaskStatusPendingApproval,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	if _, err := env.taskRepo.Create(ctx, nil, []*types.Task{overdue, fresh, submitted}); err != nil {
		t.Fatalf("create tasks: %v", err)
	}

	expired, err := svc.ExpireOverdueTasks(ctx)
	if err != nil {
		t.Fatalf("ExpireOverdueTasks: %v", err)
	}
	if expired != 1 {
		t.Fatalf("first sweep: want=1 expired got=%d", expired)
	}

	// a second sweep over the same data expires nothing
	expired, err = svc.ExpireOverdueTasks(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if expired != 0 {
		t.Fatalf("second sweep: want=0 expired got=%d", expired)
	}

	reloaded, err := env.taskRepo.GetByIDs(ctx, nil, []uuid.UUID{overdue.ID, fresh.ID, submitted.ID})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	byID := map[uuid.UUID]types.TaskStatus{}
	for _, task := range reloaded {
		byID[task.ID] = task.Status
	}
	if byID[overdue.ID] != types.TaskStatusNotCompleted {
		t.Fatalf("overdue pending task should expire, got=%s", byID[overdue.ID])
	}
	if byID[fresh.ID] != types.TaskStatusPending {
		t.Fatalf("fresh task must stay pending, got=%s", byID[fresh.ID])
	}
	if byID[submitted.ID] != types.TaskStatusPendingApproval {
		t.Fatalf("submitted task must not expire, got=%s", byID[submitted.ID])
	}
}

func TestListForStudentAuthorization(t *testing.T) {
	env := newTestEnv(t)
	svc := newTaskServiceForTest(env, 24*time.Hour)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	stranger := env.mustCreateProfile(t, types.RoleCoach)
	admin := env.mustCreateProfile(t, types.RoleAdmin)
	env.mustPair(t, coach.ID, student.ID)

	if _, err := svc.ListForStudent(ctxFor(student), student.ID); err != nil {
		t.Fatalf("student listing own tasks: %v", err)
	}
	if _, err := svc.ListForStudent(ctxFor(coach), student.ID); err != nil {
		t.Fatalf("paired coach listing tasks: %v", err)
	}
	if _, err := svc.ListForStudent(ctxFor(admin), student.ID); err != nil {
		t.Fatalf("admin listing tasks: %v", err)
	}
	if _, err := svc.ListForStudent(ctxFor(stranger), student.ID); err == nil {
		t.Fatalf("unpaired coach must not list the student's tasks")
	}
}
