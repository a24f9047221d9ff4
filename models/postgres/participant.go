package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * 'Participant' represents one user inside a meeting. It contains a
 * reference to Meeting. A user can only appear once per meeting
 */
type Participant struct {
	ID           string    `gorm:"primaryKey;size:36;not null" json:"id"`
	MeetingID    string    `gorm:"size:36;not null;uniqueIndex:idx_participants_meeting_user;index:idx_participants_meeting" json:"meeting_id"`
	UserID       string    `gorm:"size:36;not null;uniqueIndex:idx_participants_meeting_user" json:"user_id"`
	UserName     string    `gorm:"size:100;not null" json:"user_name"`
	IsHost       bool      `gorm:"default:false" json:"is_host"`
	VideoEnabled bool      `gorm:"default:true" json:"video_enabled"`
	AudioEnabled bool      `gorm:"default:true" json:"audio_enabled"`
	JoinedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"joined_at"`
	LastSeenAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"last_seen_at"`

	// Relationship with the meeting
	Meeting Meeting `gorm:"foreignKey:MeetingID" json:"-"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
