package meetings

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	sync_constants "Cineverse/constants/sync"
	"Cineverse/models/postgres"
	"Cineverse/services/store"
)

// MovieRef is the optional movie attached to a meeting at creation time.
type MovieRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// Directory resolves human-typed meeting codes to meeting rows and
// allocates codes for new meetings.
type Directory struct {
	store   store.Store
	members *Membership
	now     func() time.Time
}

func NewDirectory(st store.Store, members *Membership) *Directory {
	return &Directory{store: st, members: members, now: time.Now}
}

// generateMeetingCode returns a random fixed-length code. Uniqueness is
// enforced by the insert, not pre-checked: a collision fails the create
// and the caller re-invokes for a fresh code.
func generateMeetingCode() string {
	b := make([]byte, sync_constants.MeetingCodeLength)
	for i := range b {
		b[i] = sync_constants.MeetingCodeAlphabet[rand.Intn(len(sync_constants.MeetingCodeAlphabet))]
	}
	return string(b)
}

// CreateMeeting inserts the meeting row and then the host participant as a
// second, non-transactional step. If the second step fails the meeting row
// is removed with a compensating delete.
func (d *Directory) CreateMeeting(hostUserID string, hostName string, movie *MovieRef) (string, error) {
	code := generateMeetingCode()
	now := d.now()

	meeting := &postgres.Meeting{
		Code:      code,
		HostID:    hostUserID,
		IsPlaying: false,
		VideoTime: 0,
		CreatedAt: now,
		ExpiresAt: now.Add(sync_constants.MeetingTTL),
	}
	if movie != nil {
		meeting.MovieID = movie.ID
		meeting.MovieTitle = movie.Title
		meeting.MovieThumbnail = movie.Thumbnail
	}

	if err := d.store.InsertMeeting(meeting); err != nil {
		return "", fmt.Errorf("error creating meeting: %w", err)
	}

	if _, err := d.members.CreateHostParticipant(meeting.ID, hostUserID, hostName); err != nil {
		log.Printf("[MEETING-ERROR] Host participant insert failed for meeting %s: %v", meeting.ID, err)
		if delErr := d.store.DeleteMeeting(meeting.ID); delErr != nil {
			log.Printf("[MEETING-ERROR] Compensating delete failed for meeting %s: %v", meeting.ID, delErr)
			return "", &PartialCreateError{MeetingID: meeting.ID, CleanupFailed: true, Cause: err}
		}
		return "", &PartialCreateError{MeetingID: meeting.ID, Cause: err}
	}

	log.Printf("[MEETING] Meeting %s created with code %s by %s", meeting.ID, code, hostUserID)
	return code, nil
}

// ResolveMeeting looks a meeting up by code, case-insensitively, filtering
// out expired rows.
func (d *Directory) ResolveMeeting(code string) (*postgres.Meeting, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	meeting, err := d.store.GetMeetingByCode(normalized, d.now())
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("error resolving meeting code %s: %w", normalized, err)
	}
	return meeting, nil
}
