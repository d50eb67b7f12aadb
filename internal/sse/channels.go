package sse

import (
	"fmt"

	"github.com/google/uuid"
)

// UserChannel is the per-user channel carrying events that are not scoped to
// a single conversation (unread counts, task and reward updates).
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// ConversationChannel derives the channel name from the sorted pair of
// participant ids, so both sides land on the same channel and a conversation
// has at most one logical channel.
func ConversationChannel(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("chat:%s:%s", lo, hi)
}
