package controllers

import (
	"errors"
	"net/http"
	"time"

	"Cineverse/middleware"
	"Cineverse/services/meetings"
	"Cineverse/services/store"
	"Cineverse/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateMeetingRequest is the JSON body accepted by CreateMeeting.
type CreateMeetingRequest struct {
	MovieID        string `json:"movie_id"`
	MovieTitle     string `json:"movie_title"`
	MovieThumbnail string `json:"movie_thumbnail"`
}

// @Summary Creates a watch party meeting
// @Description Creates a meeting hosted by the caller and returns its join code
// @Tags meetings
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param body body controllers.CreateMeetingRequest false "Movie being watched"
// @Success 200 {object} object{code=string}
// @Failure 401 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/meetings [post]
// @Security ApiKeyAuth
func CreateMeeting(directory *meetings.Directory, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		var req CreateMeetingRequest
		// Body is optional, a meeting can exist before a movie is picked
		_ = c.ShouldBindJSON(&req)

		var movie *meetings.MovieRef
		if req.MovieID != "" || req.MovieTitle != "" {
			movie = &meetings.MovieRef{
				ID:        req.MovieID,
				Title:     req.MovieTitle,
				Thumbnail: req.MovieThumbnail,
			}
		}

		code, err := directory.CreateMeeting(userID, utils.DisplayName(db, userID), movie)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create meeting"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"code": code})
	}
}

// @Summary Looks a meeting up by code
// @Description Returns meeting info for a join code, expired meetings are treated as absent
// @Tags meetings
// @Produce json
// @Param code path string true "Six character meeting code"
// @Success 200 {object} object{meeting=postgres.Meeting,participant_count=int64}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /meetings/{code} [get]
func GetMeetingInfo(directory *meetings.Directory, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		meeting, err := directory.ResolveMeeting(c.Param("code"))
		if err != nil {
			if errors.Is(err, meetings.ErrMeetingNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not look the meeting up"})
			return
		}

		count, err := st.CountParticipants(meeting.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not look the meeting up"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"meeting": meeting, "participant_count": count})
	}
}

// @Summary Joins a meeting over REST
// @Description Registers the caller as a participant of the meeting with the given code
// @Tags meetings
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param code path string true "Six character meeting code"
// @Success 200 {object} object{meeting=postgres.Meeting,participant=postgres.Participant}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/meetings/{code}/join [post]
// @Security ApiKeyAuth
func JoinMeeting(directory *meetings.Directory, membership *meetings.Membership, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.JWT_decoder(c)
		if err != nil {
			return
		}

		meeting, err := directory.ResolveMeeting(c.Param("code"))
		if err != nil {
			if errors.Is(err, meetings.ErrMeetingNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not look the meeting up"})
			return
		}

		participant, err := membership.Join(meeting.ID, userID, utils.DisplayName(db, userID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not join the meeting"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"meeting": meeting, "participant": participant})
	}
}

// @Summary Lists a meeting's chat messages
// @Description Returns the meeting transcript in chronological order
// @Tags meetings
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param code path string true "Six character meeting code"
// @Success 200 {object} object{messages=[]postgres.ChatMessage}
// @Failure 401 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/meetings/{code}/messages [get]
// @Security ApiKeyAuth
func GetMeetingMessages(directory *meetings.Directory, transcript *meetings.Transcript) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.JWT_decoder(c); err != nil {
			return
		}

		meeting, err := directory.ResolveMeeting(c.Param("code"))
		if err != nil {
			if errors.Is(err, meetings.ErrMeetingNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not look the meeting up"})
			return
		}

		messages, err := transcript.ListSince(meeting.ID, time.Time{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read the transcript"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"messages": messages})
	}
}
