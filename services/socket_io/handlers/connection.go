package handlers

import (
	"log"

	"Cineverse/services/meetings"
	socketio_types "Cineverse/services/socket_io/types"
)

// Function to handle socket.io client disconnections. A vanished
// connection is treated like a leave: the meeting session is torn down and
// the participant row removed, which in turn cleans up the meeting if the
// leaver was the last one in it.
func HandleDisconnecting(userID string, sio *socketio_types.SocketServer,
	membership *meetings.Membership) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] HandleDisconnecting started - User: %s", userID)

		if session, exists := sio.RemoveMeetingSession(userID); exists {
			session.Teardown()
			if err := membership.Leave(session.MeetingID, userID); err != nil {
				log.Printf("[DISCONNECT-ERROR] Error leaving meeting %s: %v", session.MeetingID, err)
			} else {
				log.Printf("[DISCONNECT] User %s removed from meeting %s", userID, session.MeetingID)
			}
		}

		// Finally remove connection from map
		sio.RemoveConnection(userID)
		log.Printf("[DISCONNECT-DONE] User disconnected: %s", userID)
	}
}
