package handlers

import (
	"log"
	"time"

	"Cineverse/services/playback"
	socketio_types "Cineverse/services/socket_io/types"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// Explicit play/pause/seek from the client's player controls. Host-only:
// follower controls are display-only and any attempt is rejected without
// touching the authoritative row.
func HandlePlaybackAction(sio *socketio_types.SocketServer, client *socket.Socket,
	userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing playback action"})
			return
		}
		payload, ok := args[0].(map[string]interface{})
		if !ok {
			client.Emit("error", gin.H{"error": "Invalid playback action"})
			return
		}

		session, exists := sio.GetMeetingSession(userID)
		if !exists {
			client.Emit("error", gin.H{"error": "You must join a meeting first"})
			return
		}

		action, _ := payload["action"].(string)
		positionSeconds, _ := payload["position"].(float64)
		position := time.Duration(positionSeconds * float64(time.Second))

		err := session.Sync.HandleAction(playback.Action(action), position)
		if err == playback.ErrNotDriving {
			client.Emit("error", gin.H{"error": "Not authorized: only the host controls playback"})
			return
		}
		if err != nil {
			// Not retried here; the host's next action writes again.
			log.Printf("[PLAYBACK-ERROR] Error handling %s for %s: %v", action, userID, err)
			client.Emit("error", gin.H{"error": "Could not sync playback"})
		}
	}
}

// Periodic position report from the client's video element. Keeps the
// remote element proxy fresh for drift checks and, for the host, feeds
// the throttled periodic write.
func HandleTimeUpdate(sio *socketio_types.SocketServer, client *socket.Socket,
	userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		payload, ok := args[0].(map[string]interface{})
		if !ok {
			return
		}

		session, exists := sio.GetMeetingSession(userID)
		if !exists {
			return
		}

		positionSeconds, _ := payload["position"].(float64)
		isPlaying, _ := payload["is_playing"].(bool)
		session.Element.UpdateFromClient(positionSeconds, isPlaying)

		if err := session.Sync.Tick(time.Duration(positionSeconds * float64(time.Second))); err != nil {
			log.Printf("[PLAYBACK-ERROR] Error on periodic sync for %s: %v", userID, err)
		}
	}
}
