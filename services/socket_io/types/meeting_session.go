package socketio_types

import (
	"sync"
	"time"

	"Cineverse/services/meetingview"
	"Cineverse/services/playback"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// MeetingSession bundles everything one connected client holds while
// joined to a meeting: its view (the local snapshot reconciler), its
// playback synchronizer and the proxy for the browser's video element.
// It is created on join_meeting and torn down on leave or disconnect.
type MeetingSession struct {
	MeetingID string
	Code      string
	View      *meetingview.View
	Sync      *playback.Synchronizer
	Element   *RemoteElement
}

// Teardown releases the feed subscriptions and stops playback
// reconciliation. Safe to call more than once.
func (ms *MeetingSession) Teardown() {
	if ms.Sync != nil {
		ms.Sync.Deactivate()
	}
	if ms.View != nil {
		ms.View.Close()
	}
}

// RemoteElement implements playback.MediaElement for a video element that
// lives in the user's browser. Position and play state are whatever the
// client last reported; corrective commands are emitted back over the
// socket for the browser element to execute.
type RemoteElement struct {
	client *socket.Socket

	mu       sync.RWMutex
	position time.Duration
	playing  bool
}

func NewRemoteElement(client *socket.Socket) *RemoteElement {
	return &RemoteElement{client: client}
}

// UpdateFromClient refreshes the last reported element state.
func (e *RemoteElement) UpdateFromClient(positionSeconds float64, playing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = time.Duration(positionSeconds * float64(time.Second))
	e.playing = playing
}

func (e *RemoteElement) Position() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position
}

func (e *RemoteElement) IsPlaying() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.playing
}

func (e *RemoteElement) Play() {
	e.mu.Lock()
	e.playing = true
	e.mu.Unlock()
	e.client.Emit("video_sync", gin.H{"action": "play"})
}

func (e *RemoteElement) Pause() {
	e.mu.Lock()
	e.playing = false
	e.mu.Unlock()
	e.client.Emit("video_sync", gin.H{"action": "pause"})
}

func (e *RemoteElement) SeekTo(position time.Duration) {
	e.mu.Lock()
	e.position = position
	e.mu.Unlock()
	e.client.Emit("video_sync", gin.H{"action": "seek", "position": position.Seconds()})
}
