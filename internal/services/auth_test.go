package services

import (
	"context"
	"testing"
	"time"

	"github.com/koclukapp/kocluk-backend/internal/requestdata"
	"github.com/koclukapp/kocluk-backend/internal/types"
)

func newAuthServiceForTest(env *testEnv) AuthService {
	return NewAuthService(env.db, env.log, env.profileRepo, env.tokenRepo, "test-secret", time.Hour, 24*time.Hour)
}

func registerProfile(t *testing.T, svc AuthService, email, username, role string) *types.Profile {
	t.Helper()
	profile := &types.Profile{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Username:  username,
		Password:  "secret123",
		Role:      role,
	}
	if err := svc.RegisterUser(context.Background(), profile); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	return profile
}

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthServiceForTest(env)
	ctx := context.Background()

	profile := registerProfile(t, svc, "Ali@Example.com", "ali42", "")
	if profile.Role != types.RoleStudent {
		t.Fatalf("default role: want=%s got=%s", types.RoleStudent, profile.Role)
	}
	if profile.Email != "ali@example.com" {
		t.Fatalf("email should be lowercased, got=%s", profile.Email)
	}
	if profile.Password == "secret123" {
		t.Fatalf("password must be hashed before storage")
	}

	// duplicate email (case-insensitive) is rejected
	dup := &types.Profile{
		Email: "ALI@example.com", FirstName: "A", LastName: "B",
		Username: "someone-else", Password: "secret123",
	}
	if err := svc.RegisterUser(ctx, dup); err == nil {
		t.Fatalf("duplicate email should fail")
	}

	// duplicate username is rejected
	dup = &types.Profile{
		Email: "other@example.com", FirstName: "A", LastName: "B",
		Username: "ali42", Password: "secret123",
	}
	if err := svc.RegisterUser(ctx, dup); err == nil {
		t.Fatalf("duplicate username should fail")
	}

	// admin accounts cannot self-register
	admin := &types.Profile{
		Email: "root@example.com", FirstName: "A", LastName: "B",
		Username: "root", Password: "secret123", Role: types.RoleAdmin,
	}
	if err := svc.RegisterUser(ctx, admin); err == nil {
		t.Fatalf("admin self-registration should fail")
	}

	// validation catches short usernames and bad emails
	bad := &types.Profile{
		Email: "not-an-email", FirstName: "A", LastName: "B",
		Username: "ab", Password: "secret123",
	}
	if err := svc.RegisterUser(ctx, bad); err == nil {
		t.Fatalf("invalid profile should fail validation")
	}
}

func TestLoginAndTokenResolution(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthServiceForTest(env)
	ctx := context.Background()
	registerProfile(t, svc, "coach@example.com", "coach1", types.RoleCoach)

	if _, _, err := svc.LoginUser(ctx, "coach@example.com", "wrong"); err == nil {
		t.Fatalf("wrong password should fail")
	}
	if _, _, err := svc.LoginUser(ctx, "nobody@example.com", "secret123"); err == nil {
		t.Fatalf("unknown email should fail")
	}

	access, refresh, err := svc.LoginUser(ctx, "coach@example.com", "secret123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("login should yield both tokens")
	}

	// a second login from another device does not invalidate the first
	access2, _, err := svc.LoginUser(ctx, "coach@example.com", "secret123")
	if err != nil {
		t.Fatalf("second LoginUser: %v", err)
	}
	if access2 == access {
		t.Fatalf("each login should mint a distinct access token")
	}

	authedCtx, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil {
		t.Fatalf("request data missing after token resolution")
	}
	if rd.Role != types.RoleCoach {
		t.Fatalf("role from profile row: want=%s got=%s", types.RoleCoach, rd.Role)
	}
	if rd.RefreshToken != refresh {
		t.Fatalf("request data should carry the session's refresh token")
	}

	if _, err := svc.SetContextFromToken(ctx, "garbage.token.here"); err == nil {
		t.Fatalf("malformed token should fail")
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthServiceForTest(env)
	ctx := context.Background()
	registerProfile(t, svc, "s@example.com", "student1", "")

	access, refresh, err := svc.LoginUser(ctx, "s@example.com", "secret123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	authedCtx, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	newAccess, newRefresh, err := svc.RefreshUser(authedCtx)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if newAccess == access || newRefresh == refresh {
		t.Fatalf("refresh must rotate both tokens")
	}

	// the old refresh token was consumed
	if _, _, err := svc.RefreshUser(authedCtx); err == nil {
		t.Fatalf("re-using a rotated refresh token should fail")
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthServiceForTest(env)
	ctx := context.Background()
	registerProfile(t, svc, "s@example.com", "student1", "")

	access, _, err := svc.LoginUser(ctx, "s@example.com", "secret123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	authedCtx, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if err := svc.LogoutUser(authedCtx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, access); err == nil {
		t.Fatalf("token should no longer resolve after logout")
	}
}
