package handlers

import (
	"log"

	"Cineverse/services/meetings"
	"Cineverse/services/meetingview"
	"Cineverse/services/playback"
	socketio_types "Cineverse/services/socket_io/types"
	"Cineverse/services/store"
	"Cineverse/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// Function to handle the act of joining a meeting by code. Resolves the
// code, records the participant row, then opens the client's meeting view:
// the three change feeds start flowing and every fold is pushed to the
// browser as a fresh snapshot. The playback synchronizer is activated in
// the role matching the participant row.
func HandleJoinMeeting(st store.Store, directory *meetings.Directory, membership *meetings.Membership,
	sio *socketio_types.SocketServer, client *socket.Socket, db *gorm.DB, userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[JOIN] HandleJoinMeeting started - User: %s, Socket ID: %s", userID, client.Id())

		if len(args) < 1 {
			log.Printf("[JOIN-ERROR] Missing meeting code for user %s", userID)
			client.Emit("error", gin.H{"error": "Missing meeting code"})
			return
		}

		code, ok := args[0].(string)
		if !ok {
			client.Emit("error", gin.H{"error": "Invalid meeting code"})
			return
		}

		meeting, err := directory.ResolveMeeting(code)
		if err != nil {
			if err == meetings.ErrMeetingNotFound {
				client.Emit("error", gin.H{"error": "Meeting not found or expired"})
			} else {
				log.Printf("[JOIN-ERROR] Error resolving meeting %s: %v", code, err)
				client.Emit("error", gin.H{"error": "Store unavailable"})
			}
			return
		}

		// A connection holds at most one meeting session; joining a new
		// meeting implicitly leaves the old one.
		if old, exists := sio.RemoveMeetingSession(userID); exists {
			old.Teardown()
			if err := membership.Leave(old.MeetingID, userID); err != nil {
				log.Printf("[JOIN-ERROR] Error leaving previous meeting %s: %v", old.MeetingID, err)
			}
			client.Leave(socket.Room(old.MeetingID))
		}

		participant, err := membership.Join(meeting.ID, userID, utils.DisplayName(db, userID))
		if err != nil {
			log.Printf("[JOIN-ERROR] Error joining meeting %s: %v", meeting.ID, err)
			client.Emit("error", gin.H{"error": "Could not join meeting"})
			return
		}

		element := socketio_types.NewRemoteElement(client)
		synchronizer := playback.NewSynchronizer(st, element)

		view, err := meetingview.Open(st, meeting.ID, userID, meetingview.Callbacks{
			OnSnapshot: func(snapshot meetingview.Snapshot) {
				client.Emit("meeting_update", snapshot)
			},
			OnMeetingChanged: synchronizer.Reconcile,
			OnSelfGone: func() {
				// Removed elsewhere (another tab left, meeting emptied):
				// stop driving or following immediately.
				synchronizer.Deactivate()
				client.Emit("meeting_closed", gin.H{"meeting_id": meeting.ID})
			},
		})
		if err != nil {
			log.Printf("[JOIN-ERROR] Error opening meeting view for %s: %v", userID, err)
			client.Emit("error", gin.H{"error": "Could not open meeting view"})
			return
		}

		synchronizer.Activate(meeting.ID, participant.IsHost)

		sio.SetMeetingSession(userID, &socketio_types.MeetingSession{
			MeetingID: meeting.ID,
			Code:      meeting.Code,
			View:      view,
			Sync:      synchronizer,
			Element:   element,
		})

		client.Join(socket.Room(meeting.ID))
		client.Emit("meeting_joined", gin.H{
			"meeting":     meeting,
			"participant": participant,
		})
		log.Printf("[JOIN-SUCCESS] User %s joined meeting %s (%s)", userID, meeting.ID, meeting.Code)
	}
}

// Exit a meeting voluntarily.
func HandleLeaveMeeting(membership *meetings.Membership, sio *socketio_types.SocketServer,
	client *socket.Socket, userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[LEAVE] HandleLeaveMeeting started - User: %s", userID)

		session, exists := sio.RemoveMeetingSession(userID)
		if !exists {
			client.Emit("error", gin.H{"error": "You are not in a meeting"})
			return
		}

		// Teardown first so the leaver's own delete events are not folded
		// into a view that is going away.
		session.Teardown()

		if err := membership.Leave(session.MeetingID, userID); err != nil {
			log.Printf("[LEAVE-ERROR] Error leaving meeting %s: %v", session.MeetingID, err)
			client.Emit("error", gin.H{"error": "Could not leave meeting"})
			return
		}

		client.Leave(socket.Room(session.MeetingID))
		client.Emit("meeting_left", gin.H{"meeting_id": session.MeetingID})
		log.Printf("[LEAVE-SUCCESS] User %s left meeting %s", userID, session.MeetingID)
	}
}
