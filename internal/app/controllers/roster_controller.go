package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/skilltrack/internal/app/services"
	"github.com/yigit/skilltrack/internal/middleware"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/websocket"
)

// RosterController streams roster changes of a class to its trainer
type RosterController struct {
	classes *services.ClassService
	hub     *websocket.Hub
}

// NewRosterController creates a new RosterController
func NewRosterController(classes *services.ClassService, hub *websocket.Hub) *RosterController {
	return &RosterController{
		classes: classes,
		hub:     hub,
	}
}

// Watch upgrades to a websocket carrying roster events of the class in the :id path parameter.
// Only the class's trainer may watch.
func (rc *RosterController) Watch(c *gin.Context) {
	classID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || classID <= 0 {
		middleware.HandleAPIError(c, apperrors.NewValidationError("id", "class id must be a positive integer"))
		return
	}

	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewAuthenticationError(apperrors.ErrSessionInvalid))
		return
	}

	if _, _, err := rc.classes.GetClassDetail(c.Request.Context(), p, classID); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	if err := rc.hub.ServeClassRoster(c.Writer, c.Request, classID, p.UserID); err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Int64("classID", classID).Msg("Roster subscription failed")
	}
}
