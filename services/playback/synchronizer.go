package playback

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	sync_constants "Cineverse/constants/sync"
	"Cineverse/models/postgres"
	"Cineverse/services/store"
)

// State of one client's synchronizer.
type State int

const (
	// StateIdle: not attached to a meeting yet, or detached after leaving.
	StateIdle State = iota
	// StateFollowing: non-host, the local element is slaved to the
	// authoritative tuple on the meeting row.
	StateFollowing
	// StateDriving: host, local actions are pushed to the meeting row.
	StateDriving
)

// Playback actions a host can issue.
type Action string

const (
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
	ActionSeek  Action = "seek"
)

// ErrNotDriving is returned when a non-host tries to issue a playback
// action. Follower controls are display-only by contract.
var ErrNotDriving = errors.New("playback actions are host-only")

// MediaElement is the local video element the synchronizer reconciles or
// reads from. On the server side this is a proxy that relays commands to
// the browser's element over the realtime connection.
type MediaElement interface {
	Position() time.Duration
	IsPlaying() bool
	Play()
	Pause()
	SeekTo(position time.Duration)
}

// Synchronizer keeps one client's media element and the authoritative
// playback tuple of a meeting converged. Hosts drive (writes flow out),
// everyone else follows (writes flow in). The role is fixed for the
// lifetime of a joined meeting.
type Synchronizer struct {
	store store.Store
	media MediaElement

	mu        sync.Mutex
	state     State
	meetingID string
	lastWrite time.Time

	now func() time.Time
}

func NewSynchronizer(st store.Store, media MediaElement) *Synchronizer {
	return &Synchronizer{
		store: st,
		media: media,
		state: StateIdle,
		now:   time.Now,
	}
}

// Activate transitions Idle -> Driving/Following once the meeting row and
// the self participant are both known.
func (s *Synchronizer) Activate(meetingID string, isHost bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetingID = meetingID
	if isHost {
		s.state = StateDriving
	} else {
		s.state = StateFollowing
	}
	s.lastWrite = time.Time{}
}

// Deactivate returns to Idle. Called on leave and when the self
// participant disappears from the roster.
func (s *Synchronizer) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.meetingID = ""
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleAction pushes an explicit play/pause/seek to the meeting row,
// bypassing the throttle window. A failed write is surfaced, not retried;
// the next action will try again.
func (s *Synchronizer) HandleAction(action Action, position time.Duration) error {
	s.mu.Lock()
	if s.state != StateDriving {
		s.mu.Unlock()
		return ErrNotDriving
	}
	meetingID := s.meetingID
	s.mu.Unlock()

	var isPlaying bool
	switch action {
	case ActionPlay:
		isPlaying = true
	case ActionPause:
		isPlaying = false
	case ActionSeek:
		isPlaying = s.media.IsPlaying()
	default:
		return fmt.Errorf("unknown playback action %q", action)
	}

	return s.write(meetingID, isPlaying, position)
}

// Tick is called on periodic position reports while the host's element is
// playing. Writes are throttled so steady playback does not flood the
// store; explicit actions are not affected.
func (s *Synchronizer) Tick(position time.Duration) error {
	s.mu.Lock()
	if s.state != StateDriving {
		s.mu.Unlock()
		return nil
	}
	if s.now().Sub(s.lastWrite) < sync_constants.SyncInterval {
		s.mu.Unlock()
		return nil
	}
	meetingID := s.meetingID
	s.mu.Unlock()

	return s.write(meetingID, s.media.IsPlaying(), position)
}

func (s *Synchronizer) write(meetingID string, isPlaying bool, position time.Duration) error {
	now := s.now()
	if err := s.store.UpdateMeetingPlayback(meetingID, isPlaying, position.Seconds(), now); err != nil {
		log.Printf("[PLAYBACK-ERROR] Error writing playback state for meeting %s: %v", meetingID, err)
		return fmt.Errorf("error syncing playback: %w", err)
	}
	s.mu.Lock()
	s.lastWrite = now
	s.mu.Unlock()
	return nil
}

// Reconcile applies a fresh authoritative tuple to the local element.
// Position is only corrected when drift exceeds the tolerance, but
// play/pause is reconciled on every update, independently of drift.
// Driving and Idle synchronizers ignore updates (the host's element is
// the source, not a replica).
func (s *Synchronizer) Reconcile(meeting *postgres.Meeting) {
	s.mu.Lock()
	if s.state != StateFollowing || meeting == nil || meeting.ID != s.meetingID {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	authoritative := time.Duration(meeting.VideoTime * float64(time.Second))
	drift := s.media.Position() - authoritative
	if drift < 0 {
		drift = -drift
	}
	if drift > sync_constants.DriftTolerance {
		s.media.SeekTo(authoritative)
	}

	if meeting.IsPlaying && !s.media.IsPlaying() {
		s.media.Play()
	} else if !meeting.IsPlaying && s.media.IsPlaying() {
		s.media.Pause()
	}
}
