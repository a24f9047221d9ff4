package meetingview_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"Cineverse/models/postgres"
	"Cineverse/services/meetings"
	"Cineverse/services/meetingview"
	"Cineverse/services/playback"
	"Cineverse/services/store"

	"github.com/stretchr/testify/assert"
)

type recordingElement struct {
	mu       sync.Mutex
	position time.Duration
	playing  bool
}

func (r *recordingElement) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position
}

func (r *recordingElement) IsPlaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

func (r *recordingElement) Play() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = true
}

func (r *recordingElement) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
}

func (r *recordingElement) SeekTo(p time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = p
}

// Two clients share one meeting end to end: create, join by code, chat,
// and a host seek that lands on the follower's element.
func TestTwoClientSession(t *testing.T) {
	st := store.NewMemoryStore()
	transcript := meetings.NewTranscript(st)
	membership := meetings.NewMembership(st, transcript)
	directory := meetings.NewDirectory(st, membership)

	// Client A creates the meeting
	code, err := directory.CreateMeeting("user-a", "Ana", &meetings.MovieRef{ID: "7", Title: "Arrival"})
	assert.NoError(t, err)

	meeting, err := directory.ResolveMeeting(code)
	assert.NoError(t, err)

	hostElement := &recordingElement{}
	hostSync := playback.NewSynchronizer(st, hostElement)
	hostView, err := meetingview.Open(st, meeting.ID, "user-a", meetingview.Callbacks{
		OnMeetingChanged: func(m *postgres.Meeting) { hostSync.Reconcile(m) },
	})
	assert.NoError(t, err)
	defer hostView.Close()
	hostSync.Activate(meeting.ID, true)

	// Client B resolves the code typed in lowercase and joins
	resolved, err := directory.ResolveMeeting(strings.ToLower(code))
	assert.NoError(t, err)
	assert.Equal(t, meeting.ID, resolved.ID)

	_, err = membership.Join(resolved.ID, "user-b", "Bruno")
	assert.NoError(t, err)

	followerElement := &recordingElement{}
	followerSync := playback.NewSynchronizer(st, followerElement)
	followerView, err := meetingview.Open(st, resolved.ID, "user-b", meetingview.Callbacks{
		OnMeetingChanged: func(m *postgres.Meeting) { followerSync.Reconcile(m) },
	})
	assert.NoError(t, err)
	defer followerView.Close()
	followerSync.Activate(resolved.ID, false)

	// Both rosters converge on two participants
	assert.Eventually(t, func() bool {
		return len(hostView.GetSnapshot().Participants) == 2 &&
			len(followerView.GetSnapshot().Participants) == 2
	}, time.Second, 10*time.Millisecond)

	assert.True(t, hostView.GetSnapshot().Self.IsHost)
	assert.False(t, followerView.GetSnapshot().Self.IsHost)

	// Bruno's join notice reaches the host transcript
	assert.Eventually(t, func() bool {
		for _, m := range hostView.GetSnapshot().ChatMessages {
			if m.MessageType == postgres.MessageTypeSystem && m.Message == "Bruno joined the meeting" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	// A chat message from A shows up for B
	_, err = transcript.Append(meeting.ID, "user-a", "Ana", "hello", postgres.MessageTypeUser)
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		for _, m := range followerView.GetSnapshot().ChatMessages {
			if m.MessageType == postgres.MessageTypeUser && m.Message == "hello" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	// The host seeks, the follower's element converges on 42s
	assert.NoError(t, hostSync.HandleAction(playback.ActionSeek, 42*time.Second))

	assert.Eventually(t, func() bool {
		return followerElement.Position() == 42*time.Second
	}, time.Second, 10*time.Millisecond)

	// Host playing, follower element follows suit
	assert.NoError(t, hostSync.HandleAction(playback.ActionPlay, 42*time.Second))
	assert.Eventually(t, followerElement.IsPlaying, time.Second, 10*time.Millisecond)

	// B leaves, A sees the roster shrink and the leave notice
	assert.NoError(t, membership.Leave(meeting.ID, "user-b"))

	assert.Eventually(t, func() bool {
		snap := hostView.GetSnapshot()
		if len(snap.Participants) != 1 {
			return false
		}
		for _, m := range snap.ChatMessages {
			if m.Message == "Bruno left the meeting" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}
