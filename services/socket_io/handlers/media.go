package handlers

import (
	"log"

	"Cineverse/services/meetings"
	socketio_types "Cineverse/services/socket_io/types"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// Update the user's own media flags. Only the supplied fields change;
// everyone else observes the update through the participants change feed.
func HandleUpdateMedia(membership *meetings.Membership, sio *socketio_types.SocketServer,
	client *socket.Socket, userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing media flags"})
			return
		}
		payload, ok := args[0].(map[string]interface{})
		if !ok {
			client.Emit("error", gin.H{"error": "Invalid media flags"})
			return
		}

		session, exists := sio.GetMeetingSession(userID)
		if !exists {
			client.Emit("error", gin.H{"error": "You must join a meeting first"})
			return
		}
		snapshot := session.View.GetSnapshot()
		if snapshot.Self == nil {
			client.Emit("error", gin.H{"error": "You are no longer in this meeting"})
			return
		}

		var videoEnabled, audioEnabled *bool
		if v, ok := payload["video_enabled"].(bool); ok {
			videoEnabled = &v
		}
		if a, ok := payload["audio_enabled"].(bool); ok {
			audioEnabled = &a
		}

		if _, err := membership.UpdateMedia(snapshot.Self.ID, videoEnabled, audioEnabled); err != nil {
			log.Printf("[MEDIA-ERROR] Error updating media flags for %s: %v", userID, err)
			client.Emit("error", gin.H{"error": "Could not update media flags"})
		}
	}
}
