package meetings

import (
	"testing"
	"time"

	"Cineverse/models/postgres"
	"Cineverse/services/store"

	"github.com/stretchr/testify/assert"
)

func TestTranscriptOrdering(t *testing.T) {
	st := store.NewMemoryStore()
	transcript := NewTranscript(st)

	base := time.Now()
	// Inserted out of order on purpose
	for _, m := range []*postgres.ChatMessage{
		{ID: "b", MeetingID: "m1", Message: "second", CreatedAt: base.Add(2 * time.Second)},
		{ID: "c", MeetingID: "m1", Message: "tied", CreatedAt: base.Add(2 * time.Second)},
		{ID: "a", MeetingID: "m1", Message: "first", CreatedAt: base.Add(time.Second)},
	} {
		assert.NoError(t, st.InsertChatMessage(m))
	}

	all, err := transcript.ListSince("m1", time.Time{})
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID, "equal timestamps break ties by id")
	assert.Equal(t, "c", all[2].ID)

	since, err := transcript.ListSince("m1", base.Add(time.Second))
	assert.NoError(t, err)
	assert.Len(t, since, 2)
	assert.Equal(t, "b", since[0].ID)
}

func TestTranscriptAppend(t *testing.T) {
	st := store.NewMemoryStore()
	transcript := NewTranscript(st)

	msg, err := transcript.Append("m1", "user-1", "Ana", "hello", postgres.MessageTypeUser)
	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, postgres.MessageTypeUser, msg.MessageType)

	assert.NoError(t, transcript.AppendSystem("m1", "Ana joined the meeting"))

	all, err := transcript.ListSince("m1", time.Time{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}
