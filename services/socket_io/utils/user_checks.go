package socketio_utils

import (
	"fmt"
	"log"

	"Cineverse/middleware"
	"Cineverse/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// Function that verifies a socket.io client connection using JWT authentication.
// It extracts the user id from the JWT token and checks the account exists.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (success bool, userID, email string) {
	// Checks if we have auth data in the connection
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		fmt.Println("No auth data provided in handshake!")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		return false, "", ""
	}

	userID, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		log.Printf("[CONN-ERROR] Invalid token on connection: %v", err)
		client.Emit("error", gin.H{"error": "Authentication failed: invalid token"})
		return false, "", ""
	}

	user, err := utils.UserExists(db, userID)
	if err != nil {
		log.Printf("[CONN-ERROR] Unknown user %s: %v", userID, err)
		client.Emit("error", gin.H{"error": "Authentication failed: unknown user"})
		return false, "", ""
	}

	return true, user.ID, user.Email
}
