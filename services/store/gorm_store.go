package store

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"Cineverse/models/postgres"
	redis_service "Cineverse/services/redis"

	"gorm.io/gorm"
)

// GormStore is the production Store: rows live in PostgreSQL, change
// events are fanned out through Redis pub/sub after each successful write.
// A nil redis client disables the feed (REST-only deployments and tests).
type GormStore struct {
	db    *gorm.DB
	redis *redis_service.RedisClient
}

func NewGormStore(db *gorm.DB, redisClient *redis_service.RedisClient) *GormStore {
	return &GormStore{db: db, redis: redisClient}
}

func (s *GormStore) publish(table Table, meetingID string, ev ChangeEvent) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[STORE-ERROR] Error marshaling change event: %v", err)
		return
	}
	// The write already committed; a lost notification only delays
	// convergence until the next bulk load.
	if err := s.redis.PublishChange(string(table), meetingID, payload); err != nil {
		log.Printf("[STORE-ERROR] Error publishing change event: %v", err)
	}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint") {
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) Subscribe(table Table, meetingID string) (*Subscription, error) {
	if s.redis == nil {
		return nil, errors.New("change feed unavailable: no redis connection")
	}
	pubsub := s.redis.SubscribeChanges(string(table), meetingID)
	sub := newSubscription(subscriptionBuffer, func() {
		pubsub.Close()
	})
	go func() {
		for msg := range pubsub.Channel() {
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[FEED-ERROR] Dropping malformed change event: %v", err)
				continue
			}
			sub.deliver(ev)
		}
	}()
	return sub, nil
}

func (s *GormStore) InsertMeeting(m *postgres.Meeting) error {
	if err := s.db.Create(m).Error; err != nil {
		return translateError(err)
	}
	record := *m
	s.publish(TableMeetings, m.ID, ChangeEvent{Table: TableMeetings, Op: OpInsert, Meeting: &record})
	return nil
}

func (s *GormStore) GetMeetingByCode(code string, now time.Time) (*postgres.Meeting, error) {
	var m postgres.Meeting
	err := s.db.Where("code = ? AND expires_at > ?", code, now).First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

func (s *GormStore) GetMeetingByID(id string) (*postgres.Meeting, error) {
	var m postgres.Meeting
	err := s.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

func (s *GormStore) UpdateMeetingPlayback(meetingID string, isPlaying bool, videoTime float64, updatedAt time.Time) error {
	err := s.db.Model(&postgres.Meeting{}).
		Where("id = ?", meetingID).
		Updates(map[string]interface{}{
			"is_playing": isPlaying,
			"video_time": videoTime,
			"updated_at": updatedAt,
		}).Error
	if err != nil {
		return translateError(err)
	}
	m, err := s.GetMeetingByID(meetingID)
	if err != nil {
		return translateError(err)
	}
	s.publish(TableMeetings, meetingID, ChangeEvent{Table: TableMeetings, Op: OpUpdate, Meeting: m})
	return nil
}

func (s *GormStore) DeleteMeeting(meetingID string) error {
	m, err := s.GetMeetingByID(meetingID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.db.Where("id = ?", meetingID).Delete(&postgres.Meeting{}).Error; err != nil {
		return translateError(err)
	}
	s.publish(TableMeetings, meetingID, ChangeEvent{Table: TableMeetings, Op: OpDelete, Meeting: m})
	return nil
}

func (s *GormStore) InsertParticipant(p *postgres.Participant) error {
	if err := s.db.Create(p).Error; err != nil {
		return translateError(err)
	}
	record := *p
	s.publish(TableParticipants, p.MeetingID, ChangeEvent{Table: TableParticipants, Op: OpInsert, Participant: &record})
	return nil
}

func (s *GormStore) GetParticipant(meetingID, userID string) (*postgres.Participant, error) {
	var p postgres.Participant
	err := s.db.Where("meeting_id = ? AND user_id = ?", meetingID, userID).First(&p).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

func (s *GormStore) ListParticipants(meetingID string) ([]*postgres.Participant, error) {
	var participants []*postgres.Participant
	err := s.db.Where("meeting_id = ?", meetingID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, translateError(err)
	}
	return participants, nil
}

func (s *GormStore) UpdateParticipantMedia(participantID string, videoEnabled, audioEnabled *bool) (*postgres.Participant, error) {
	updates := map[string]interface{}{}
	if videoEnabled != nil {
		updates["video_enabled"] = *videoEnabled
	}
	if audioEnabled != nil {
		updates["audio_enabled"] = *audioEnabled
	}
	if len(updates) > 0 {
		err := s.db.Model(&postgres.Participant{}).
			Where("id = ?", participantID).
			Updates(updates).Error
		if err != nil {
			return nil, translateError(err)
		}
	}
	var p postgres.Participant
	if err := s.db.Where("id = ?", participantID).First(&p).Error; err != nil {
		return nil, translateError(err)
	}
	record := p
	s.publish(TableParticipants, p.MeetingID, ChangeEvent{Table: TableParticipants, Op: OpUpdate, Participant: &record})
	return &record, nil
}

func (s *GormStore) DeleteParticipant(meetingID, userID string) error {
	p, err := s.GetParticipant(meetingID, userID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	err = s.db.Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		Delete(&postgres.Participant{}).Error
	if err != nil {
		return translateError(err)
	}
	s.publish(TableParticipants, meetingID, ChangeEvent{Table: TableParticipants, Op: OpDelete, Participant: p})
	return nil
}

func (s *GormStore) CountParticipants(meetingID string) (int64, error) {
	var count int64
	err := s.db.Model(&postgres.Participant{}).
		Where("meeting_id = ?", meetingID).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (s *GormStore) InsertChatMessage(m *postgres.ChatMessage) error {
	if err := s.db.Create(m).Error; err != nil {
		return translateError(err)
	}
	record := *m
	s.publish(TableChatMessages, m.MeetingID, ChangeEvent{Table: TableChatMessages, Op: OpInsert, ChatMessage: &record})
	return nil
}

func (s *GormStore) ListChatMessages(meetingID string) ([]*postgres.ChatMessage, error) {
	var messages []*postgres.ChatMessage
	err := s.db.Where("meeting_id = ?", meetingID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, translateError(err)
	}
	return messages, nil
}
