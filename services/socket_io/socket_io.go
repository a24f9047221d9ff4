package socket_io

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Cineverse/services/meetings"
	"Cineverse/services/socket_io/handlers"
	socketio_types "Cineverse/services/socket_io/types"
	socketio_utils "Cineverse/services/socket_io/utils"
	"Cineverse/services/store"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// Start mounts the socket.io endpoint on the gin router and registers the
// per-connection meeting events.
func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, st store.Store,
	directory *meetings.Directory, membership *meetings.Membership, transcript *meetings.Transcript) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.UserConnections = make(map[string]*socket.Socket)
	sio.MeetingSessions = make(map[string]*socketio_types.MeetingSession)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, userID, email := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		// Add connection to map
		(*socketio_types.SocketServer)(sio).AddConnection(userID, client)

		fmt.Println("An individual just connected!: ", userID, email)

		// Join a watch party by its shareable code
		client.On("join_meeting", handlers.HandleJoinMeeting(st, directory, membership,
			(*socketio_types.SocketServer)(sio), client, db, userID))

		// Exit a meeting voluntarily
		client.On("leave_meeting", handlers.HandleLeaveMeeting(membership,
			(*socketio_types.SocketServer)(sio), client, userID))

		// Chat message to the joined meeting
		client.On("send_message", handlers.HandleSendMessage(transcript,
			(*socketio_types.SocketServer)(sio), client, userID))

		// Toggle own camera / microphone flags
		client.On("update_media", handlers.HandleUpdateMedia(membership,
			(*socketio_types.SocketServer)(sio), client, userID))

		// Host play/pause/seek
		client.On("playback_action", handlers.HandlePlaybackAction(
			(*socketio_types.SocketServer)(sio), client, userID))

		// Periodic position report from the video element
		client.On("time_update", handlers.HandleTimeUpdate(
			(*socketio_types.SocketServer)(sio), client, userID))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(userID,
			(*socketio_types.SocketServer)(sio), membership))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
