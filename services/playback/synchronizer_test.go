package playback

import (
	"testing"
	"time"

	"Cineverse/models/postgres"
	"Cineverse/services/store"

	"github.com/stretchr/testify/assert"
)

// fakeElement records the commands the synchronizer issues to it.
type fakeElement struct {
	position time.Duration
	playing  bool

	playCalls  int
	pauseCalls int
	seeks      []time.Duration
}

func (f *fakeElement) Position() time.Duration { return f.position }
func (f *fakeElement) IsPlaying() bool         { return f.playing }
func (f *fakeElement) Play()                   { f.playing = true; f.playCalls++ }
func (f *fakeElement) Pause()                  { f.playing = false; f.pauseCalls++ }
func (f *fakeElement) SeekTo(p time.Duration)  { f.position = p; f.seeks = append(f.seeks, p) }

func newSyncedMeeting(t *testing.T, st *store.MemoryStore) *postgres.Meeting {
	t.Helper()
	now := time.Now()
	m := &postgres.Meeting{
		Code:      "SYNC01",
		HostID:    "host",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	assert.NoError(t, st.InsertMeeting(m))
	return m
}

func TestHandleAction(t *testing.T) {
	t.Run("Follower actions are rejected without a write", func(t *testing.T) {
		st := store.NewMemoryStore()
		m := newSyncedMeeting(t, st)

		s := NewSynchronizer(st, &fakeElement{})
		s.Activate(m.ID, false)

		assert.ErrorIs(t, s.HandleAction(ActionPlay, 10*time.Second), ErrNotDriving)

		stored, err := st.GetMeetingByID(m.ID)
		assert.NoError(t, err)
		assert.False(t, stored.IsPlaying)
		assert.Equal(t, float64(0), stored.VideoTime)
	})

	t.Run("Host play writes immediately", func(t *testing.T) {
		st := store.NewMemoryStore()
		m := newSyncedMeeting(t, st)

		s := NewSynchronizer(st, &fakeElement{})
		s.Activate(m.ID, true)

		assert.NoError(t, s.HandleAction(ActionPlay, 10*time.Second))

		stored, err := st.GetMeetingByID(m.ID)
		assert.NoError(t, err)
		assert.True(t, stored.IsPlaying)
		assert.Equal(t, float64(10), stored.VideoTime)
	})

	t.Run("Seek keeps the current play state", func(t *testing.T) {
		st := store.NewMemoryStore()
		m := newSyncedMeeting(t, st)

		element := &fakeElement{playing: true}
		s := NewSynchronizer(st, element)
		s.Activate(m.ID, true)

		assert.NoError(t, s.HandleAction(ActionSeek, 42*time.Second))

		stored, err := st.GetMeetingByID(m.ID)
		assert.NoError(t, err)
		assert.True(t, stored.IsPlaying, "seek must not flip playing state")
		assert.Equal(t, float64(42), stored.VideoTime)
	})

	t.Run("Unknown action", func(t *testing.T) {
		st := store.NewMemoryStore()
		m := newSyncedMeeting(t, st)
		s := NewSynchronizer(st, &fakeElement{})
		s.Activate(m.ID, true)

		assert.Error(t, s.HandleAction(Action("rewind"), 0))
	})
}

func TestTickThrottle(t *testing.T) {
	st := store.NewMemoryStore()
	m := newSyncedMeeting(t, st)

	element := &fakeElement{playing: true}
	s := NewSynchronizer(st, element)
	s.Activate(m.ID, true)

	clock := time.Now()
	s.now = func() time.Time { return clock }

	assert.NoError(t, s.Tick(5*time.Second))
	stored, _ := st.GetMeetingByID(m.ID)
	assert.Equal(t, float64(5), stored.VideoTime)

	// Within the throttle window nothing is written
	clock = clock.Add(2 * time.Second)
	assert.NoError(t, s.Tick(7*time.Second))
	stored, _ = st.GetMeetingByID(m.ID)
	assert.Equal(t, float64(5), stored.VideoTime)

	// Explicit actions bypass the window
	assert.NoError(t, s.HandleAction(ActionSeek, 30*time.Second))
	stored, _ = st.GetMeetingByID(m.ID)
	assert.Equal(t, float64(30), stored.VideoTime)

	// Past the window the next report is written again
	clock = clock.Add(6 * time.Second)
	assert.NoError(t, s.Tick(36*time.Second))
	stored, _ = st.GetMeetingByID(m.ID)
	assert.Equal(t, float64(36), stored.VideoTime)
}

func TestTickIgnoredWhileFollowing(t *testing.T) {
	st := store.NewMemoryStore()
	m := newSyncedMeeting(t, st)

	s := NewSynchronizer(st, &fakeElement{})
	s.Activate(m.ID, false)

	assert.NoError(t, s.Tick(10*time.Second))
	stored, _ := st.GetMeetingByID(m.ID)
	assert.Equal(t, float64(0), stored.VideoTime)
}

func TestReconcile(t *testing.T) {
	meeting := func(id string, playing bool, videoTime float64) *postgres.Meeting {
		return &postgres.Meeting{ID: id, IsPlaying: playing, VideoTime: videoTime}
	}

	t.Run("Drift inside the tolerance is left alone", func(t *testing.T) {
		element := &fakeElement{position: 99 * time.Second, playing: true}
		s := NewSynchronizer(store.NewMemoryStore(), element)
		s.Activate("m1", false)

		s.Reconcile(meeting("m1", true, 100))

		assert.Empty(t, element.seeks)
		assert.Equal(t, 99*time.Second, element.position)
	})

	t.Run("Drift beyond the tolerance snaps to the authoritative position", func(t *testing.T) {
		element := &fakeElement{position: 90 * time.Second, playing: true}
		s := NewSynchronizer(store.NewMemoryStore(), element)
		s.Activate("m1", false)

		s.Reconcile(meeting("m1", true, 100))

		assert.Equal(t, []time.Duration{100 * time.Second}, element.seeks)
	})

	t.Run("Play state is reconciled independently of drift", func(t *testing.T) {
		element := &fakeElement{position: 100 * time.Second, playing: true}
		s := NewSynchronizer(store.NewMemoryStore(), element)
		s.Activate("m1", false)

		s.Reconcile(meeting("m1", false, 100))

		assert.Empty(t, element.seeks)
		assert.Equal(t, 1, element.pauseCalls)
		assert.False(t, element.playing)

		s.Reconcile(meeting("m1", true, 100))
		assert.Equal(t, 1, element.playCalls)
		assert.True(t, element.playing)
	})

	t.Run("Driving synchronizers ignore updates", func(t *testing.T) {
		element := &fakeElement{position: 0, playing: false}
		s := NewSynchronizer(store.NewMemoryStore(), element)
		s.Activate("m1", true)

		s.Reconcile(meeting("m1", true, 100))

		assert.Empty(t, element.seeks)
		assert.False(t, element.playing)
	})

	t.Run("Updates for another meeting are ignored", func(t *testing.T) {
		element := &fakeElement{position: 0, playing: false}
		s := NewSynchronizer(store.NewMemoryStore(), element)
		s.Activate("m1", false)

		s.Reconcile(meeting("m2", true, 100))

		assert.Empty(t, element.seeks)
		assert.False(t, element.playing)
	})
}
