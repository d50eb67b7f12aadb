package services

import (
	"testing"

	"github.com/koclukapp/kocluk-backend/internal/types"
)

func newMessageServiceForTest(env *testEnv) MessageService {
	return NewMessageService(env.db, env.log, env.messageRepo, env.pairs, nil)
}

func TestSendMessageGuards(t *testing.T) {
	env := newTestEnv(t)
	svc := newMessageServiceForTest(env)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	stranger := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	if _, err := svc.SendMessage(ctxFor(coach), student.ID, "   "); err == nil {
		t.Fatalf("blank content should fail")
	}
	if _, err := svc.SendMessage(ctxFor(coach), coach.ID, "hi me"); err == nil {
		t.Fatalf("self-messaging should fail")
	}
	if _, err := svc.SendMessage(ctxFor(coach), stranger.ID, "hello"); err == nil {
		t.Fatalf("messaging an unpaired user should fail")
	}

	msg, err := svc.SendMessage(ctxFor(coach), student.ID, "  solve page 10  ")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.Content != "solve page 10" {
		t.Fatalf("content should be trimmed, got=%q", msg.Content)
	}
	if msg.IsRead {
		t.Fatalf("new message must start unread")
	}
}

func TestConversationOrderingAndReadReceipts(t *testing.T) {
	env := newTestEnv(t)
	svc := newMessageServiceForTest(env)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	env.mustPair(t, coach.ID, student.ID)

	if _, err := svc.SendMessage(ctxFor(coach), student.ID, "first"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := svc.SendMessage(ctxFor(student), coach.ID, "second"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := svc.SendMessage(ctxFor(coach), student.ID, "third"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	unread, err := svc.UnreadCount(ctxFor(student))
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 2 {
		t.Fatalf("student unread: want=2 got=%d", unread)
	}

	messages, err := svc.GetConversation(ctxFor(student), coach.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("conversation length: want=3 got=%d", len(messages))
	}
	if messages[0].Content != "first" || messages[1].Content != "second" || messages[2].Content != "third" {
		t.Fatalf("conversation should be in ascending created order, got %q %q %q",
			messages[0].Content, messages[1].Content, messages[2].Content)
	}

	// fetching marks only the coach's messages to the student as read
	for _, m := range messages {
		if m.ReceiverID == student.ID && !m.IsRead {
			t.Fatalf("message to the student should be marked read")
		}
		if m.ReceiverID == coach.ID && m.IsRead {
			t.Fatalf("the student's own outgoing message must stay unread")
		}
	}

	unread, err = svc.UnreadCount(ctxFor(student))
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 0 {
		t.Fatalf("student unread after fetch: want=0 got=%d", unread)
	}

	// the coach still has the student's reply unread
	unread, err = svc.UnreadCount(ctxFor(coach))
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 1 {
		t.Fatalf("coach unread: want=1 got=%d", unread)
	}
}

func TestConversationAuthorization(t *testing.T) {
	env := newTestEnv(t)
	svc := newMessageServiceForTest(env)
	coach := env.mustCreateProfile(t, types.RoleCoach)
	student := env.mustCreateProfile(t, types.RoleStudent)
	stranger := env.mustCreateProfile(t, types.RoleCoach)
	admin := env.mustCreateProfile(t, types.RoleAdmin)
	env.mustPair(t, coach.ID, student.ID)

	if _, err := svc.GetConversation(ctxFor(stranger), student.ID); err == nil {
		t.Fatalf("unpaired user must not read the conversation")
	}
	if _, err := svc.GetConversation(ctxFor(admin), student.ID); err != nil {
		t.Fatalf("admin conversation access: %v", err)
	}
}
