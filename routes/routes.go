package routes

import (
	"Cineverse/controllers"
	"Cineverse/middleware"
	"Cineverse/services/meetings"
	"Cineverse/services/store"
	utils "Cineverse/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, st store.Store,
	directory *meetings.Directory, membership *meetings.Membership, transcript *meetings.Transcript) {

	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/login", controllers.Login(db))

	api.POST("/signup", controllers.SignUp(db))

	// Meeting lookup by code is public so that a join screen can validate
	// a code before the user signs in
	api.GET("/meetings/:code", controllers.GetMeetingInfo(directory, st))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.GET("/me", controllers.GetUserPrivateInfo(db))

		authentication.POST("/meetings", controllers.CreateMeeting(directory, db))

		authentication.POST("/meetings/:code/join", controllers.JoinMeeting(directory, membership, db))

		authentication.GET("/meetings/:code/messages", controllers.GetMeetingMessages(directory, transcript))
	}
}
