package store

import (
	"testing"
	"time"

	"Cineverse/models/postgres"

	"github.com/stretchr/testify/assert"
)

func testMeeting(code string) *postgres.Meeting {
	now := time.Now()
	return &postgres.Meeting{
		Code:      code,
		HostID:    "host-1",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
}

func TestMemoryStoreMeetings(t *testing.T) {
	t.Run("Lookup by code is case-insensitive", func(t *testing.T) {
		s := NewMemoryStore()
		m := testMeeting("ABC123")
		assert.NoError(t, s.InsertMeeting(m))

		found, err := s.GetMeetingByCode("ABC123", time.Now())
		assert.NoError(t, err)
		assert.Equal(t, m.ID, found.ID)
	})

	t.Run("Expired meetings look absent", func(t *testing.T) {
		s := NewMemoryStore()
		m := testMeeting("DEAD00")
		m.ExpiresAt = time.Now().Add(-time.Minute)
		assert.NoError(t, s.InsertMeeting(m))

		_, err := s.GetMeetingByCode("DEAD00", time.Now())
		assert.ErrorIs(t, err, ErrNotFound)

		// Same row is still reachable by id
		_, err = s.GetMeetingByID(m.ID)
		assert.NoError(t, err)
	})

	t.Run("Duplicate code insert is rejected", func(t *testing.T) {
		s := NewMemoryStore()
		assert.NoError(t, s.InsertMeeting(testMeeting("AAAAAA")))
		assert.ErrorIs(t, s.InsertMeeting(testMeeting("aaaaaa")), ErrDuplicate)
	})

	t.Run("Deleting an absent meeting is a no-op", func(t *testing.T) {
		s := NewMemoryStore()
		assert.NoError(t, s.DeleteMeeting("does-not-exist"))
	})
}

func TestMemoryStoreParticipants(t *testing.T) {
	t.Run("Per-meeting user uniqueness", func(t *testing.T) {
		s := NewMemoryStore()
		p := &postgres.Participant{MeetingID: "m1", UserID: "u1", UserName: "Ana"}
		assert.NoError(t, s.InsertParticipant(p))

		dup := &postgres.Participant{MeetingID: "m1", UserID: "u1", UserName: "Ana"}
		assert.ErrorIs(t, s.InsertParticipant(dup), ErrDuplicate)

		// Same user in a different meeting is fine
		other := &postgres.Participant{MeetingID: "m2", UserID: "u1", UserName: "Ana"}
		assert.NoError(t, s.InsertParticipant(other))
	})

	t.Run("Media update only touches non-nil fields", func(t *testing.T) {
		s := NewMemoryStore()
		p := &postgres.Participant{MeetingID: "m1", UserID: "u1", VideoEnabled: true, AudioEnabled: true}
		assert.NoError(t, s.InsertParticipant(p))

		off := false
		updated, err := s.UpdateParticipantMedia(p.ID, &off, nil)
		assert.NoError(t, err)
		assert.False(t, updated.VideoEnabled)
		assert.True(t, updated.AudioEnabled)
	})

	t.Run("Count tracks inserts and deletes", func(t *testing.T) {
		s := NewMemoryStore()
		assert.NoError(t, s.InsertParticipant(&postgres.Participant{MeetingID: "m1", UserID: "u1"}))
		assert.NoError(t, s.InsertParticipant(&postgres.Participant{MeetingID: "m1", UserID: "u2"}))

		count, err := s.CountParticipants("m1")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)

		assert.NoError(t, s.DeleteParticipant("m1", "u1"))
		count, err = s.CountParticipants("m1")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestMemoryStoreFeed(t *testing.T) {
	t.Run("Subscribed scope receives matching events only", func(t *testing.T) {
		s := NewMemoryStore()
		m := testMeeting("FEED01")
		assert.NoError(t, s.InsertMeeting(m))

		sub, err := s.Subscribe(TableParticipants, m.ID)
		assert.NoError(t, err)
		defer sub.Unsubscribe()

		// An event for another meeting must not leak in
		assert.NoError(t, s.InsertParticipant(&postgres.Participant{MeetingID: "other", UserID: "ux"}))
		assert.NoError(t, s.InsertParticipant(&postgres.Participant{MeetingID: m.ID, UserID: "u1"}))

		select {
		case ev := <-sub.Events():
			assert.Equal(t, TableParticipants, ev.Table)
			assert.Equal(t, OpInsert, ev.Op)
			assert.Equal(t, "u1", ev.Participant.UserID)
		case <-time.After(time.Second):
			t.Fatal("expected a participant insert event")
		}

		select {
		case ev, ok := <-sub.Events():
			if ok {
				t.Fatalf("unexpected extra event: %+v", ev)
			}
		default:
		}
	})

	t.Run("No delivery after unsubscribe", func(t *testing.T) {
		s := NewMemoryStore()
		m := testMeeting("FEED02")
		assert.NoError(t, s.InsertMeeting(m))

		sub, err := s.Subscribe(TableChatMessages, m.ID)
		assert.NoError(t, err)
		sub.Unsubscribe()

		assert.NoError(t, s.InsertChatMessage(&postgres.ChatMessage{MeetingID: m.ID, Message: "late"}))

		_, ok := <-sub.Events()
		assert.False(t, ok, "channel should be closed with nothing buffered")
	})

	t.Run("Unsubscribe twice is safe", func(t *testing.T) {
		s := NewMemoryStore()
		sub, err := s.Subscribe(TableMeetings, "m1")
		assert.NoError(t, err)
		sub.Unsubscribe()
		sub.Unsubscribe()
	})
}
