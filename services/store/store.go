package store

import (
	"errors"
	"time"

	"Cineverse/models/postgres"
)

// Logical tables the synchronization engine operates on.
type Table string

const (
	TableMeetings     Table = "meetings"
	TableParticipants Table = "meeting_participants"
	TableChatMessages Table = "chat_messages"
)

// ErrNotFound is returned by lookups when no row matches. Callers must be
// able to tell it apart from transport failures, only the latter are
// worth retrying.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned by inserts that would violate a uniqueness
// constraint (meeting code, participant per meeting and user).
var ErrDuplicate = errors.New("duplicate record")

// Store is the backing-store contract the synchronization services are
// written against: typed CRUD on the three meeting tables plus a
// change-notification feed per (table, meeting). Feed delivery is
// at-least-once and unordered, consumers have to fold events idempotently.
type Store interface {
	InsertMeeting(m *postgres.Meeting) error
	GetMeetingByCode(code string, now time.Time) (*postgres.Meeting, error)
	GetMeetingByID(id string) (*postgres.Meeting, error)
	UpdateMeetingPlayback(meetingID string, isPlaying bool, videoTime float64, updatedAt time.Time) error
	DeleteMeeting(meetingID string) error

	InsertParticipant(p *postgres.Participant) error
	GetParticipant(meetingID, userID string) (*postgres.Participant, error)
	ListParticipants(meetingID string) ([]*postgres.Participant, error)
	UpdateParticipantMedia(participantID string, videoEnabled, audioEnabled *bool) (*postgres.Participant, error)
	DeleteParticipant(meetingID, userID string) error
	CountParticipants(meetingID string) (int64, error)

	InsertChatMessage(m *postgres.ChatMessage) error
	ListChatMessages(meetingID string) ([]*postgres.ChatMessage, error)

	// Subscribe starts a change feed for one table scoped to one meeting.
	// The subscription keeps delivering until Unsubscribe is called.
	Subscribe(table Table, meetingID string) (*Subscription, error)
}
