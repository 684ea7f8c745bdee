// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/models/dto"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
	"github.com/yigit/skilltrack/internal/middleware"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

// CommandFunc runs one command. p is nil for anonymous callers of public commands.
type CommandFunc func(c *gin.Context, p *models.Principal) (*dto.Response, error)

type command struct {
	run    CommandFunc
	public bool
}

// ActionController dispatches POST /action?command=<name> to the registered command
type ActionController struct {
	commands map[string]command
}

// NewActionController registers every command the transport accepts
func NewActionController(auth *AuthController, classes *ClassController, attendance *AttendanceController) *ActionController {
	a := &ActionController{commands: make(map[string]command)}

	a.public("login", auth.Login)
	a.private("logout", auth.Logout)

	a.private("get_upcoming", classes.GetUpcoming)
	a.private("get_class", classes.GetClass)
	a.private("create_class", classes.CreateClass)
	a.private("cancel_class", classes.CancelClass)

	a.private("join_class", attendance.JoinClass)
	a.private("leave_class", attendance.LeaveClass)
	a.private("update_attendee", attendance.UpdateAttendee)
	a.private("get_my_skills", attendance.GetMySkills)
	return a
}

func (a *ActionController) public(name string, fn CommandFunc) {
	a.commands[name] = command{run: fn, public: true}
}

func (a *ActionController) private(name string, fn CommandFunc) {
	a.commands[name] = command{run: fn}
}

// Dispatch runs the command named by the "command" query parameter. Every outcome, including
// failures, is written as a list of result items.
func (a *ActionController) Dispatch(c *gin.Context) {
	name := c.Query("command")
	if name == "" {
		c.JSON(http.StatusBadRequest, dto.NewResponse().Message(enums.CodeMissingCommand, "command is required"))
		return
	}
	cmd, ok := a.commands[name]
	if !ok {
		c.JSON(http.StatusBadRequest, dto.NewResponse().Message(enums.CodeUnknownCommand, "command not recognised"))
		return
	}

	var principal *models.Principal
	if p, ok := middleware.PrincipalFrom(c); ok {
		principal = &p
	}
	if !cmd.public && principal == nil {
		middleware.HandleAPIError(c, apperrors.NewAuthenticationError(apperrors.ErrSessionInvalid))
		return
	}

	resp, err := cmd.run(c, principal)
	if err != nil {
		log.Ctx(c.Request.Context()).Debug().Err(err).Str("command", name).Msg("Command refused")
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
