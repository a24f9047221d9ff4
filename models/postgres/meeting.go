package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * 'Meeting' defines the structure of a Cineverse watch party. It contains
 * references to Participant and ChatMessage
 */
type Meeting struct {
	ID             string    `gorm:"primaryKey;size:36;not null" json:"id"`
	Code           string    `gorm:"size:10;not null;uniqueIndex:idx_meetings_code" json:"meeting_code"`
	HostID         string    `gorm:"size:36;not null;index:idx_meetings_host" json:"host_id"`
	MovieID        string    `gorm:"size:50" json:"movie_id"`
	MovieTitle     string    `gorm:"size:255" json:"movie_title"`
	MovieThumbnail string    `gorm:"size:512" json:"movie_thumbnail"`
	IsPlaying      bool      `gorm:"default:false" json:"is_playing"`
	VideoTime      float64   `gorm:"default:0" json:"video_time"` // seconds
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ExpiresAt      time.Time `gorm:"not null;index:idx_meetings_expires" json:"expires_at"`
	// Set on every playback write, last write wins between concurrent hosts
	UpdatedAt time.Time `json:"updated_at"`

	// Relationship with the people in the meeting and its chat transcript
	Participants []*Participant `gorm:"foreignKey:MeetingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ChatMessages []*ChatMessage `gorm:"foreignKey:MeetingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (m *Meeting) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
