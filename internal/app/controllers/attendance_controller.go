package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/models/dto"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
	"github.com/yigit/skilltrack/internal/app/services"
	"github.com/yigit/skilltrack/internal/middleware"
)

// AttendanceController handles enrolment, trainer verdicts and the skill summary
type AttendanceController struct {
	attendance *services.AttendanceService
	summary    *services.SkillSummaryService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendance *services.AttendanceService, summary *services.SkillSummaryService) *AttendanceController {
	return &AttendanceController{
		attendance: attendance,
		summary:    summary,
	}
}

// JoinClass enrols the caller and returns the class as they now see it
func (ac *AttendanceController) JoinClass(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	var req dto.ClassRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		return nil, err
	}

	view, err := ac.attendance.Join(c.Request.Context(), *p, req.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewResponse().Message(enums.CodeOK, "joined class").Class(classItem(view)), nil
}

// LeaveClass withdraws the caller from a class that has not started
func (ac *AttendanceController) LeaveClass(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	var req dto.ClassRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		return nil, err
	}

	view, err := ac.attendance.Leave(c.Request.Context(), *p, req.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewResponse().Message(enums.CodeOK, "left class").Class(classItem(view)), nil
}

// UpdateAttendee records pass, fail or remove for one attendee row
func (ac *AttendanceController) UpdateAttendee(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	var req dto.UpdateAttendeeRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		return nil, err
	}

	view, err := ac.attendance.SetAttendeeOutcome(c.Request.Context(), *p, req.ID, models.Outcome(req.State))
	if err != nil {
		return nil, err
	}
	return dto.NewResponse().Message(enums.CodeOK, "attendee updated").Attendee(attendeeItem(view)), nil
}

// GetMySkills lists the caller's standing in every skill
func (ac *AttendanceController) GetMySkills(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	rows, err := ac.summary.GetMySkills(c.Request.Context(), *p)
	if err != nil {
		return nil, err
	}

	resp := dto.NewResponse().Message(enums.CodeOK, "skills fetched")
	for _, r := range rows {
		resp.Skill(skillItem(r))
	}
	return resp, nil
}
