package meetings

import (
	"errors"
	"fmt"
	"log"
	"time"

	"Cineverse/models/postgres"
	"Cineverse/services/store"
)

// Membership manages the participant roster of a meeting: joins, media
// flags and leaves. Exactly one participant per meeting is host, assigned
// at creation and never reassigned; a host that leaves early simply leaves
// the meeting hostless until it empties or expires.
type Membership struct {
	store      store.Store
	transcript *Transcript
}

func NewMembership(st store.Store, transcript *Transcript) *Membership {
	return &Membership{store: st, transcript: transcript}
}

// Join adds a user to a meeting. Joining a meeting the user is already in
// (a reload, a second tab) returns the existing row untouched: no
// duplicate participant, no repeated join notice, no role or media reset.
func (m *Membership) Join(meetingID, userID, userName string) (*postgres.Participant, error) {
	existing, err := m.store.GetParticipant(meetingID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("error checking existing participant: %w", err)
	}

	now := time.Now()
	participant := &postgres.Participant{
		MeetingID:    meetingID,
		UserID:       userID,
		UserName:     userName,
		IsHost:       false,
		VideoEnabled: true,
		AudioEnabled: true,
		JoinedAt:     now,
		LastSeenAt:   now,
	}
	if err := m.store.InsertParticipant(participant); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Two tabs raced the same join; the row that won is the one
			// we wanted anyway.
			return m.store.GetParticipant(meetingID, userID)
		}
		return nil, fmt.Errorf("error joining meeting: %w", err)
	}

	if err := m.transcript.AppendSystem(meetingID, fmt.Sprintf("%s joined the meeting", userName)); err != nil {
		log.Printf("[MEMBERSHIP-ERROR] Error writing join notice for %s: %v", userName, err)
	}

	log.Printf("[MEMBERSHIP] %s joined meeting %s", userName, meetingID)
	return participant, nil
}

// CreateHostParticipant inserts the host row during meeting creation. The
// host joining is implicit in creating the meeting, so no join notice is
// written.
func (m *Membership) CreateHostParticipant(meetingID, userID, userName string) (*postgres.Participant, error) {
	now := time.Now()
	host := &postgres.Participant{
		MeetingID:    meetingID,
		UserID:       userID,
		UserName:     userName,
		IsHost:       true,
		VideoEnabled: true,
		AudioEnabled: true,
		JoinedAt:     now,
		LastSeenAt:   now,
	}
	if err := m.store.InsertParticipant(host); err != nil {
		return nil, fmt.Errorf("error creating host participant: %w", err)
	}
	return host, nil
}

// UpdateMedia partially updates a participant's media flags. Nil fields
// are left untouched; writing the same value back is a valid no-op.
func (m *Membership) UpdateMedia(participantID string, videoEnabled, audioEnabled *bool) (*postgres.Participant, error) {
	updated, err := m.store.UpdateParticipantMedia(participantID, videoEnabled, audioEnabled)
	if err != nil {
		return nil, fmt.Errorf("error updating media flags: %w", err)
	}
	return updated, nil
}

// Leave removes a user from a meeting. The leave notice is written before
// the row is deleted so the display name is still obtainable, and the
// empty-meeting check runs after the deletion so the leaver does not count
// themselves. Leaving a meeting the user is not in is a no-op.
func (m *Membership) Leave(meetingID, userID string) error {
	participant, err := m.store.GetParticipant(meetingID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error looking up leaving participant: %w", err)
	}

	if err := m.transcript.AppendSystem(meetingID, fmt.Sprintf("%s left the meeting", participant.UserName)); err != nil {
		log.Printf("[MEMBERSHIP-ERROR] Error writing leave notice for %s: %v", participant.UserName, err)
	}

	if err := m.store.DeleteParticipant(meetingID, userID); err != nil {
		return fmt.Errorf("error leaving meeting: %w", err)
	}

	remaining, err := m.store.CountParticipants(meetingID)
	if err != nil {
		return fmt.Errorf("error counting remaining participants: %w", err)
	}
	if remaining == 0 {
		log.Printf("[MEMBERSHIP] Meeting %s is empty, deleting", meetingID)
		if err := m.store.DeleteMeeting(meetingID); err != nil {
			return fmt.Errorf("error deleting empty meeting: %w", err)
		}
	}

	log.Printf("[MEMBERSHIP] %s left meeting %s", participant.UserName, meetingID)
	return nil
}
