package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/skilltrack/internal/app/controllers"
	"github.com/yigit/skilltrack/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	actionController *controllers.ActionController,
	rosterController *controllers.RosterController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// Command endpoint. The session is optional here: login is public and every other command
	// answers an anonymous caller with a redirect to the login page.
	router.POST("/action", authMiddleware.LoadSession(), actionController.Dispatch)

	// Live roster feed for the trainer of a class
	router.GET("/ws/classes/:id", authMiddleware.SessionRequired(), rosterController.Watch)

	// Health check endpoint (public)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
}
