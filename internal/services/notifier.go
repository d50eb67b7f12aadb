package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/koclukapp/kocluk-backend/internal/sse"
	"github.com/koclukapp/kocluk-backend/internal/types"
)

// MessageNotifier pushes conversation events. New messages go out on the
// conversation channel (keyed by the sorted participant pair, so both sides
// share one channel) and unread-count changes on the receiver's user channel.
// Events carry the persisted message id so clients can reconcile optimistic
// entries and drop duplicates.
type MessageNotifier interface {
	MessageCreated(msg *types.Message)
	MessagesRead(readerID, counterpartID uuid.UUID, count int64)
	UnreadCount(userID uuid.UUID, count int64)
}

type messageNotifier struct {
	emit SSEEmitter
}

func NewMessageNotifier(emit SSEEmitter) MessageNotifier {
	return &messageNotifier{emit: emit}
}

func (n *messageNotifier) MessageCreated(msg *types.Message) {
	if n == nil || n.emit == nil || msg == nil {
		return
	}
	n.emit.Emit(context.Background(), sse.SSEMessage{
		Channel: sse.ConversationChannel(msg.SenderID, msg.ReceiverID),
		Event:   sse.SSEEventMessageCreated,
		Data:    map[string]any{"message": msg},
	})
}

func (n *messageNotifier) MessagesRead(readerID, counterpartID uuid.UUID, count int64) {
	if n == nil || n.emit == nil || count == 0 {
		return
	}
	n.emit.Emit(context.Background(), sse.SSEMessage{
		Channel: sse.ConversationChannel(readerID, counterpartID),
		Event:   sse.SSEEventMessagesRead,
		Data: map[string]any{
			"reader_id":      readerID,
			"counterpart_id": counterpartID,
			"count":          count,
		},
	})
}

func (n *messageNotifier) UnreadCount(userID uuid.UUID, count int64) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   sse.SSEEventUnreadCount,
		Data:    map[string]any{"count": count},
	})
}

// TaskNotifier pushes task lifecycle events to both sides of the pair.
type TaskNotifier interface {
	TaskCreated(task *types.Task)
	TaskUpdated(task *types.Task)
	TaskDeleted(taskID uuid.UUID, coachID, studentID uuid.UUID)
}

type taskNotifier struct {
	emit SSEEmitter
}

func NewTaskNotifier(emit SSEEmitter) TaskNotifier {
	return &taskNotifier{emit: emit}
}

func (n *taskNotifier) emitBoth(event sse.SSEEvent, coachID, studentID uuid.UUID, data map[string]any) {
	if n == nil || n.emit == nil {
		return
	}
	for _, userID := range []uuid.UUID{coachID, studentID} {
		if userID == uuid.Nil {
			continue
		}
		n.emit.Emit(context.Background(), sse.SSEMessage{
			Channel: sse.UserChannel(userID),
			Event:   event,
			Data:    data,
		})
	}
}

func (n *taskNotifier) TaskCreated(task *types.Task) {
	if task == nil {
		return
	}
	n.emitBoth(sse.SSEEventTaskCreated, task.CoachID, task.StudentID, map[string]any{"task": task})
}

func (n *taskNotifier) TaskUpdated(task *types.Task) {
	if task == nil {
		return
	}
	n.emitBoth(sse.SSEEventTaskUpdated, task.CoachID, task.StudentID, map[string]any{"task": task})
}

func (n *taskNotifier) TaskDeleted(taskID uuid.UUID, coachID, studentID uuid.UUID) {
	n.emitBoth(sse.SSEEventTaskDeleted, coachID, studentID, map[string]any{"task_id": taskID})
}

// RewardNotifier pushes reward events to both sides of the pair.
type RewardNotifier interface {
	RewardCreated(reward *types.Reward)
	RewardClaimed(reward *types.Reward)
}

type rewardNotifier struct {
	emit SSEEmitter
}

func NewRewardNotifier(emit SSEEmitter) RewardNotifier {
	return &rewardNotifier{emit: emit}
}

func (n *rewardNotifier) emitBoth(event sse.SSEEvent, reward *types.Reward) {
	if n == nil || n.emit == nil || reward == nil {
		return
	}
	for _, userID := range []uuid.UUID{reward.CoachID, reward.StudentID} {
		if userID == uuid.Nil {
			continue
		}
		n.emit.Emit(context.Background(), sse.SSEMessage{
			Channel: sse.UserChannel(userID),
			Event:   event,
			Data:    map[string]any{"reward": reward},
		})
	}
}

func (n *rewardNotifier) RewardCreated(reward *types.Reward) {
	n.emitBoth(sse.SSEEventRewardCreated, reward)
}

func (n *rewardNotifier) RewardClaimed(reward *types.Reward) {
	n.emitBoth(sse.SSEEventRewardClaimed, reward)
}
