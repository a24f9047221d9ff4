package meetings

import (
	"fmt"
	"sort"
	"time"

	sync_constants "Cineverse/constants/sync"
	"Cineverse/models/postgres"
	"Cineverse/services/store"
)

// Transcript is the append-only chat log of a meeting. Entries are never
// edited or deleted once written.
type Transcript struct {
	store store.Store
}

func NewTranscript(st store.Store) *Transcript {
	return &Transcript{store: st}
}

// Append writes one transcript entry.
func (t *Transcript) Append(meetingID, userID, userName, body, kind string) (*postgres.ChatMessage, error) {
	message := &postgres.ChatMessage{
		MeetingID:   meetingID,
		UserID:      userID,
		UserName:    userName,
		Message:     body,
		MessageType: kind,
		CreatedAt:   time.Now(),
	}
	if err := t.store.InsertChatMessage(message); err != nil {
		return nil, fmt.Errorf("error appending chat message: %w", err)
	}
	return message, nil
}

// AppendSystem writes a system notice authored by the reserved sentinel
// identity.
func (t *Transcript) AppendSystem(meetingID, body string) error {
	_, err := t.Append(meetingID, sync_constants.SystemUserID,
		sync_constants.SystemUserName, body, postgres.MessageTypeSystem)
	return err
}

// ListSince returns the transcript ordered by creation time, ties broken
// by id. The zero cursor returns everything.
func (t *Transcript) ListSince(meetingID string, cursor time.Time) ([]*postgres.ChatMessage, error) {
	messages, err := t.store.ListChatMessages(meetingID)
	if err != nil {
		return nil, fmt.Errorf("error listing chat messages: %w", err)
	}
	var out []*postgres.ChatMessage
	for _, m := range messages {
		if cursor.IsZero() || m.CreatedAt.After(cursor) {
			out = append(out, m)
		}
	}
	SortMessages(out)
	return out, nil
}

// SortMessages orders transcript entries by created_at ascending, id as
// tiebreak.
func SortMessages(messages []*postgres.ChatMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
