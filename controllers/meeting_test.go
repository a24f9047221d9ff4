package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Cineverse/middleware"
	"Cineverse/models/postgres"
	"Cineverse/services/meetings"
	"Cineverse/services/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockGormDB opens a GORM handle over an sqlmock connection.
func mockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func setupMeetingRouter(t *testing.T) (*gin.Engine, *store.MemoryStore, *meetings.Directory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	transcript := meetings.NewTranscript(st)
	membership := meetings.NewMembership(st, transcript)
	directory := meetings.NewDirectory(st, membership)

	router := gin.New()
	router.GET("/meetings/:code", GetMeetingInfo(directory, st))
	return router, st, directory
}

func TestGetMeetingInfo(t *testing.T) {
	router, st, directory := setupMeetingRouter(t)

	code, err := directory.CreateMeeting("user-1", "Ana", &meetings.MovieRef{Title: "Dune"})
	assert.NoError(t, err)
	meeting, err := st.GetMeetingByCode(code, time.Now())
	assert.NoError(t, err)

	t.Run("Known code", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/meetings/"+code, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Meeting          postgres.Meeting `json:"meeting"`
			ParticipantCount int64            `json:"participant_count"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, meeting.ID, response.Meeting.ID)
		assert.Equal(t, "Dune", response.Meeting.MovieTitle)
		assert.Equal(t, int64(1), response.ParticipantCount)
	})

	t.Run("Unknown code", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/meetings/NOPE99", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateMeetingRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	st := store.NewMemoryStore()
	transcript := meetings.NewTranscript(st)
	membership := meetings.NewMembership(st, transcript)
	directory := meetings.NewDirectory(st, membership)

	router := gin.New()
	router.POST("/auth/meetings", CreateMeeting(directory, nil))

	t.Run("Missing token", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/auth/meetings", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/auth/meetings", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestJoinMeetingEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	st := store.NewMemoryStore()
	transcript := meetings.NewTranscript(st)
	membership := meetings.NewMembership(st, transcript)
	directory := meetings.NewDirectory(st, membership)

	gormDB, mock := mockGormDB(t)
	mock.ExpectQuery(`SELECT "full_name" FROM "users" WHERE id = \$1`).
		WithArgs("joining-user").
		WillReturnRows(sqlmock.NewRows([]string{"full_name"}).AddRow("Bruno"))

	router := gin.New()
	router.POST("/auth/meetings/:code/join", JoinMeeting(directory, membership, gormDB))

	code, err := directory.CreateMeeting("host-user", "Ana", nil)
	assert.NoError(t, err)

	token, err := middleware.GenerateToken("joining-user")
	assert.NoError(t, err)

	req, _ := http.NewRequest("POST", "/auth/meetings/"+code+"/join", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Participant postgres.Participant `json:"participant"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "joining-user", response.Participant.UserID)
	assert.Equal(t, "Bruno", response.Participant.UserName)
	assert.False(t, response.Participant.IsHost)

	meeting, err := st.GetMeetingByCode(code, time.Now())
	assert.NoError(t, err)
	count, err := st.CountParticipants(meeting.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
