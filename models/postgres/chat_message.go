package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message kinds stored in chat_messages.message_type
const (
	MessageTypeUser   = "message"
	MessageTypeSystem = "system"
)

/*
 * 'ChatMessage' is one entry of a meeting's chat transcript. Entries are
 * append-only, there is no edit or delete path. System notices (join/leave)
 * are authored by the reserved system user
 */
type ChatMessage struct {
	ID          string    `gorm:"primaryKey;size:36;not null" json:"id"`
	MeetingID   string    `gorm:"size:36;not null;index:idx_chat_messages_meeting" json:"meeting_id"`
	UserID      string    `gorm:"size:36;not null" json:"user_id"`
	UserName    string    `gorm:"size:100;not null" json:"user_name"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	MessageType string    `gorm:"size:10;default:'message'" json:"message_type"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_chat_messages_created" json:"created_at"`

	// Relationship with the meeting
	Meeting Meeting `gorm:"foreignKey:MeetingID" json:"-"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
