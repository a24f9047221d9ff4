package handlers

import (
	"log"

	"Cineverse/models/postgres"
	"Cineverse/services/meetings"
	socketio_types "Cineverse/services/socket_io/types"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// Send a chat message to the meeting the user is in. The message reaches
// every participant (including the sender) through the chat change feed,
// not through a direct room broadcast, so all clients converge on the
// same transcript regardless of which server instance they sit on.
func HandleSendMessage(transcript *meetings.Transcript, sio *socketio_types.SocketServer,
	client *socket.Socket, userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing message"})
			return
		}
		body, ok := args[0].(string)
		if !ok || body == "" {
			client.Emit("error", gin.H{"error": "Invalid message"})
			return
		}

		session, exists := sio.GetMeetingSession(userID)
		if !exists {
			client.Emit("error", gin.H{"error": "You must join a meeting before sending messages"})
			return
		}

		// The participant row carries the display name we joined with.
		snapshot := session.View.GetSnapshot()
		if snapshot.Self == nil {
			client.Emit("error", gin.H{"error": "You are no longer in this meeting"})
			return
		}

		if _, err := transcript.Append(session.MeetingID, userID, snapshot.Self.UserName,
			body, postgres.MessageTypeUser); err != nil {
			// A failed send is surfaced locally, the meeting view stays up.
			log.Printf("[CHAT-ERROR] Error sending message in meeting %s: %v", session.MeetingID, err)
			client.Emit("error", gin.H{"error": "Could not send message"})
			return
		}
	}
}
