package meetingview

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"Cineverse/models/postgres"
	"Cineverse/services/store"
)

// Snapshot is one client's consistent local projection of a meeting:
// meeting row, roster, transcript and the participant row matching the
// viewer's own user id. Nil Self means the viewer is not (or no longer)
// joined.
type Snapshot struct {
	Meeting      *postgres.Meeting        `json:"meeting"`
	Participants []*postgres.Participant  `json:"participants"`
	ChatMessages []*postgres.ChatMessage  `json:"chat_messages"`
	Self         *postgres.Participant    `json:"self"`
}

// Callbacks a View fires toward its consumer (the realtime connection, a
// test). All of them stop firing once Close has run.
type Callbacks struct {
	// OnSnapshot fires after every applied change event and after the
	// initial load.
	OnSnapshot func(Snapshot)
	// OnMeetingChanged fires when the meeting row itself changed (nil on
	// meeting deletion). This is what playback reconciliation hangs off.
	OnMeetingChanged func(*postgres.Meeting)
	// OnSelfGone fires once when the viewer's own participant row
	// transitions from present to absent (left elsewhere, or removed).
	OnSelfGone func()
}

// View folds an unordered, at-least-once stream of change events over an
// initial bulk load into one meeting snapshot. Every fold is idempotent:
// duplicated and reordered deliveries converge to the same state.
type View struct {
	st     store.Store
	userID string

	mu           sync.Mutex
	closed       bool
	meeting      *postgres.Meeting
	participants []*postgres.Participant
	messages     []*postgres.ChatMessage
	self         *postgres.Participant

	callbacks Callbacks
	subs      []*store.Subscription
}

// Open bulk-loads the meeting and starts the three change feeds. The
// subscriptions are taken before the load so nothing slips between them;
// events replayed across that window fold away harmlessly.
func Open(st store.Store, meetingID, userID string, callbacks Callbacks) (*View, error) {
	v := &View{
		st:        st,
		userID:    userID,
		callbacks: callbacks,
	}

	for _, table := range []store.Table{store.TableMeetings, store.TableParticipants, store.TableChatMessages} {
		sub, err := st.Subscribe(table, meetingID)
		if err != nil {
			v.Close()
			return nil, fmt.Errorf("error subscribing to %s feed: %w", table, err)
		}
		v.subs = append(v.subs, sub)
	}

	meeting, err := st.GetMeetingByID(meetingID)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("error loading meeting: %w", err)
	}
	participants, err := st.ListParticipants(meetingID)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("error loading participants: %w", err)
	}
	messages, err := st.ListChatMessages(meetingID)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("error loading chat messages: %w", err)
	}

	v.mu.Lock()
	v.meeting = meeting
	v.participants = participants
	v.messages = messages
	sortMessages(v.messages)
	v.recomputeSelf()
	snapshot := v.snapshotLocked()
	v.mu.Unlock()

	for _, sub := range v.subs {
		go v.consume(sub)
	}

	if v.callbacks.OnSnapshot != nil {
		v.callbacks.OnSnapshot(snapshot)
	}
	return v, nil
}

// Close tears the view down: all three subscriptions are released and any
// event still in flight is dropped instead of reviving the view. No
// callback fires after Close returns.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	subs := v.subs
	v.subs = nil
	v.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// GetSnapshot returns the current projection.
func (v *View) GetSnapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) consume(sub *store.Subscription) {
	for ev := range sub.Events() {
		v.apply(ev)
	}
}

// apply folds one change event into the snapshot. Malformed or duplicate
// events degrade to no-ops, they never fail the view.
func (v *View) apply(ev store.ChangeEvent) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}

	changed := false
	var meetingChanged bool
	switch ev.Table {
	case store.TableMeetings:
		changed = v.applyMeeting(ev)
		meetingChanged = changed
	case store.TableParticipants:
		changed = v.applyParticipant(ev)
	case store.TableChatMessages:
		changed = v.applyChatMessage(ev)
	default:
		log.Printf("[VIEW] Ignoring change event for unknown table %q", ev.Table)
	}

	if !changed {
		v.mu.Unlock()
		return
	}

	hadSelf := v.self != nil
	v.recomputeSelf()
	selfGone := hadSelf && v.self == nil

	// Callbacks fire under the lock: once Close has acquired it, nothing
	// fires anymore. Callbacks must not call back into the view.
	if meetingChanged && v.callbacks.OnMeetingChanged != nil {
		v.callbacks.OnMeetingChanged(v.meeting)
	}
	if selfGone && v.callbacks.OnSelfGone != nil {
		v.callbacks.OnSelfGone()
	}
	if v.callbacks.OnSnapshot != nil {
		v.callbacks.OnSnapshot(v.snapshotLocked())
	}
	v.mu.Unlock()
}

func (v *View) applyMeeting(ev store.ChangeEvent) bool {
	if ev.Meeting == nil {
		return false
	}
	switch ev.Op {
	case store.OpInsert, store.OpUpdate:
		// Insert-after-update reordering collapses to the same replace.
		v.meeting = ev.Meeting
		return true
	case store.OpDelete:
		if v.meeting == nil {
			return false
		}
		v.meeting = nil
		return true
	}
	return false
}

func (v *View) applyParticipant(ev store.ChangeEvent) bool {
	p := ev.Participant
	if p == nil {
		return false
	}
	switch ev.Op {
	case store.OpInsert:
		for _, existing := range v.participants {
			if existing.ID == p.ID {
				// Duplicate delivery.
				return false
			}
		}
		v.participants = append(v.participants, p)
		return true
	case store.OpUpdate:
		for i, existing := range v.participants {
			if existing.ID == p.ID {
				v.participants[i] = p
				return true
			}
		}
		// Update observed before its insert: treat as implicit insert.
		v.participants = append(v.participants, p)
		return true
	case store.OpDelete:
		for i, existing := range v.participants {
			if existing.ID == p.ID {
				v.participants = append(v.participants[:i], v.participants[i+1:]...)
				return true
			}
		}
		return false
	}
	return false
}

func (v *View) applyChatMessage(ev store.ChangeEvent) bool {
	m := ev.ChatMessage
	if m == nil {
		return false
	}
	switch ev.Op {
	case store.OpInsert:
		for _, existing := range v.messages {
			if existing.ID == m.ID {
				return false
			}
		}
		v.messages = append(v.messages, m)
		sortMessages(v.messages)
		return true
	case store.OpUpdate:
		// Transcript entries are immutable, but the fold contract still
		// holds: replace in place, implicit insert when absent.
		for i, existing := range v.messages {
			if existing.ID == m.ID {
				v.messages[i] = m
				return true
			}
		}
		v.messages = append(v.messages, m)
		sortMessages(v.messages)
		return true
	case store.OpDelete:
		for i, existing := range v.messages {
			if existing.ID == m.ID {
				v.messages = append(v.messages[:i], v.messages[i+1:]...)
				return true
			}
		}
		return false
	}
	return false
}

func (v *View) recomputeSelf() {
	v.self = nil
	for _, p := range v.participants {
		if p.UserID == v.userID {
			v.self = p
			return
		}
	}
}

func (v *View) snapshotLocked() Snapshot {
	participants := make([]*postgres.Participant, len(v.participants))
	copy(participants, v.participants)
	messages := make([]*postgres.ChatMessage, len(v.messages))
	copy(messages, v.messages)
	return Snapshot{
		Meeting:      v.meeting,
		Participants: participants,
		ChatMessages: messages,
		Self:         v.self,
	}
}

func sortMessages(messages []*postgres.ChatMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
