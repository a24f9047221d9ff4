package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer is a struct that contains the socket.io server, a map of
// socket connections and the per-user meeting session each connection has
// open. It is used to handle socket.io connections.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track user id -> socket connections
	UserConnections map[string]*socket.Socket
	// Map to track user id -> joined meeting session
	MeetingSessions map[string]*MeetingSession
	mutex           sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		UserConnections: make(map[string]*socket.Socket),
		MeetingSessions: make(map[string]*MeetingSession),
	}
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(userID string, socket *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[userID] = socket
}

func (s *SocketServer) RemoveConnection(userID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, userID)
}

func (s *SocketServer) GetConnection(userID string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	socket, exists := s.UserConnections[userID]
	return socket, exists
}

// SetMeetingSession records the meeting session a connected user has open.
// A user has at most one.
func (s *SocketServer) SetMeetingSession(userID string, session *MeetingSession) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.MeetingSessions[userID] = session
}

func (s *SocketServer) GetMeetingSession(userID string) (*MeetingSession, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	session, exists := s.MeetingSessions[userID]
	return session, exists
}

func (s *SocketServer) RemoveMeetingSession(userID string) (*MeetingSession, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	session, exists := s.MeetingSessions[userID]
	delete(s.MeetingSessions, userID)
	return session, exists
}
