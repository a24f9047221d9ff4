package store

import (
	"strings"
	"sync"
	"time"

	"Cineverse/models/postgres"

	"github.com/google/uuid"
)

const subscriptionBuffer = 64

// MemoryStore is an in-process Store used by the test suite and as a
// single-node dev mode. Writes fan change events out to every matching
// subscription, so it exercises the same at-least-once feed contract as
// the Postgres/Redis implementation.
type MemoryStore struct {
	mu           sync.RWMutex
	meetings     map[string]postgres.Meeting
	participants map[string]postgres.Participant
	messages     map[string]postgres.ChatMessage

	subMu sync.RWMutex
	subs  map[*Subscription]subScope
}

type subScope struct {
	table     Table
	meetingID string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		meetings:     make(map[string]postgres.Meeting),
		participants: make(map[string]postgres.Participant),
		messages:     make(map[string]postgres.ChatMessage),
		subs:         make(map[*Subscription]subScope),
	}
}

func (s *MemoryStore) publish(table Table, meetingID string, ev ChangeEvent) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for sub, scope := range s.subs {
		if scope.table == table && scope.meetingID == meetingID {
			sub.deliver(ev)
		}
	}
}

func (s *MemoryStore) Subscribe(table Table, meetingID string) (*Subscription, error) {
	var sub *Subscription
	sub = newSubscription(subscriptionBuffer, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, sub)
	})
	s.subMu.Lock()
	s.subs[sub] = subScope{table: table, meetingID: meetingID}
	s.subMu.Unlock()
	return sub, nil
}

func (s *MemoryStore) InsertMeeting(m *postgres.Meeting) error {
	s.mu.Lock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for _, existing := range s.meetings {
		if strings.EqualFold(existing.Code, m.Code) {
			s.mu.Unlock()
			return ErrDuplicate
		}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = m.CreatedAt
	s.meetings[m.ID] = *m
	s.mu.Unlock()

	record := *m
	s.publish(TableMeetings, m.ID, ChangeEvent{Table: TableMeetings, Op: OpInsert, Meeting: &record})
	return nil
}

func (s *MemoryStore) GetMeetingByCode(code string, now time.Time) (*postgres.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.meetings {
		if strings.EqualFold(m.Code, code) && m.ExpiresAt.After(now) {
			record := m
			return &record, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetMeetingByID(id string) (*postgres.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	if !ok {
		return nil, ErrNotFound
	}
	record := m
	return &record, nil
}

func (s *MemoryStore) UpdateMeetingPlayback(meetingID string, isPlaying bool, videoTime float64, updatedAt time.Time) error {
	s.mu.Lock()
	m, ok := s.meetings[meetingID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	m.IsPlaying = isPlaying
	m.VideoTime = videoTime
	m.UpdatedAt = updatedAt
	s.meetings[meetingID] = m
	s.mu.Unlock()

	record := m
	s.publish(TableMeetings, meetingID, ChangeEvent{Table: TableMeetings, Op: OpUpdate, Meeting: &record})
	return nil
}

func (s *MemoryStore) DeleteMeeting(meetingID string) error {
	s.mu.Lock()
	m, ok := s.meetings[meetingID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.meetings, meetingID)
	s.mu.Unlock()

	record := m
	s.publish(TableMeetings, meetingID, ChangeEvent{Table: TableMeetings, Op: OpDelete, Meeting: &record})
	return nil
}

func (s *MemoryStore) InsertParticipant(p *postgres.Participant) error {
	s.mu.Lock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for _, existing := range s.participants {
		if existing.MeetingID == p.MeetingID && existing.UserID == p.UserID {
			s.mu.Unlock()
			return ErrDuplicate
		}
	}
	now := time.Now()
	if p.JoinedAt.IsZero() {
		p.JoinedAt = now
	}
	if p.LastSeenAt.IsZero() {
		p.LastSeenAt = now
	}
	s.participants[p.ID] = *p
	s.mu.Unlock()

	record := *p
	s.publish(TableParticipants, p.MeetingID, ChangeEvent{Table: TableParticipants, Op: OpInsert, Participant: &record})
	return nil
}

func (s *MemoryStore) GetParticipant(meetingID, userID string) (*postgres.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.participants {
		if p.MeetingID == meetingID && p.UserID == userID {
			record := p
			return &record, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListParticipants(meetingID string) ([]*postgres.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*postgres.Participant
	for _, p := range s.participants {
		if p.MeetingID == meetingID {
			record := p
			out = append(out, &record)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateParticipantMedia(participantID string, videoEnabled, audioEnabled *bool) (*postgres.Participant, error) {
	s.mu.Lock()
	p, ok := s.participants[participantID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if videoEnabled != nil {
		p.VideoEnabled = *videoEnabled
	}
	if audioEnabled != nil {
		p.AudioEnabled = *audioEnabled
	}
	s.participants[participantID] = p
	s.mu.Unlock()

	record := p
	s.publish(TableParticipants, p.MeetingID, ChangeEvent{Table: TableParticipants, Op: OpUpdate, Participant: &record})
	return &record, nil
}

func (s *MemoryStore) DeleteParticipant(meetingID, userID string) error {
	s.mu.Lock()
	var deleted *postgres.Participant
	for id, p := range s.participants {
		if p.MeetingID == meetingID && p.UserID == userID {
			record := p
			deleted = &record
			delete(s.participants, id)
			break
		}
	}
	s.mu.Unlock()

	if deleted != nil {
		s.publish(TableParticipants, meetingID, ChangeEvent{Table: TableParticipants, Op: OpDelete, Participant: deleted})
	}
	return nil
}

func (s *MemoryStore) CountParticipants(meetingID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, p := range s.participants {
		if p.MeetingID == meetingID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) InsertChatMessage(m *postgres.ChatMessage) error {
	s.mu.Lock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.messages[m.ID] = *m
	s.mu.Unlock()

	record := *m
	s.publish(TableChatMessages, m.MeetingID, ChangeEvent{Table: TableChatMessages, Op: OpInsert, ChatMessage: &record})
	return nil
}

func (s *MemoryStore) ListChatMessages(meetingID string) ([]*postgres.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*postgres.ChatMessage
	for _, m := range s.messages {
		if m.MeetingID == meetingID {
			record := m
			out = append(out, &record)
		}
	}
	return out, nil
}
