package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/koclukapp/kocluk-backend/internal/requestdata"
	"github.com/koclukapp/kocluk-backend/internal/types"
)

func newProfileServiceForTest(env *testEnv) ProfileService {
	return NewProfileService(env.db, env.log, env.profileRepo)
}

func TestGetMe(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileServiceForTest(env)
	user := env.mustCreateProfile(t, types.RoleStudent)

	me, err := svc.GetMe(ctxFor(user))
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if me.ID != user.ID {
		t.Fatalf("GetMe returned wrong profile")
	}

	if _, err := svc.GetMe(context.Background()); err == nil {
		t.Fatalf("GetMe without request data should fail")
	}

	ghost := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: uuid.New()})
	if _, err := svc.GetMe(ghost); err == nil {
		t.Fatalf("GetMe for a deleted account should fail")
	}
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileServiceForTest(env)
	user := env.mustCreateProfile(t, types.RoleStudent)
	taken := env.mustCreateProfile(t, types.RoleStudent)
	ctx := ctxFor(user)

	newFirst := "  Ayşe  "
	me, err := svc.UpdateMe(ctx, ProfileUpdate{FirstName: &newFirst})
	if err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}
	if me.FirstName != "Ayşe" {
		t.Fatalf("first name should be trimmed, got=%q", me.FirstName)
	}

	short := "ab"
	if _, err := svc.UpdateMe(ctx, ProfileUpdate{Username: &short}); err == nil {
		t.Fatalf("short username should fail")
	}
	if _, err := svc.UpdateMe(ctx, ProfileUpdate{Username: &taken.Username}); err == nil {
		t.Fatalf("taken username should fail")
	}
	// keeping your own username is not a conflict
	if _, err := svc.UpdateMe(ctx, ProfileUpdate{Username: &user.Username}); err != nil {
		t.Fatalf("re-saving own username: %v", err)
	}

	// an empty update just returns the current profile
	me, err = svc.UpdateMe(ctx, ProfileUpdate{})
	if err != nil {
		t.Fatalf("empty UpdateMe: %v", err)
	}
	if me.ID != user.ID {
		t.Fatalf("empty update returned wrong profile")
	}
}

func TestUsernameAvailable(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileServiceForTest(env)
	user := env.mustCreateProfile(t, types.RoleStudent)
	ctx := ctxFor(user)

	available, err := svc.UsernameAvailable(ctx, user.Username)
	if err != nil {
		t.Fatalf("UsernameAvailable: %v", err)
	}
	if available {
		t.Fatalf("existing username should not be available")
	}

	available, err = svc.UsernameAvailable(ctx, "fresh-name")
	if err != nil {
		t.Fatalf("UsernameAvailable: %v", err)
	}
	if !available {
		t.Fatalf("fresh username should be available")
	}

	if _, err := svc.UsernameAvailable(ctx, "   "); err == nil {
		t.Fatalf("blank username should fail")
	}
}
