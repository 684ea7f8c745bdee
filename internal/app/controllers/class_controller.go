package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/models/dto"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
	"github.com/yigit/skilltrack/internal/app/services"
	"github.com/yigit/skilltrack/internal/middleware"
)

// ClassController handles the class listing and scheduling commands
type ClassController struct {
	classes *services.ClassService
}

// NewClassController creates a new ClassController
func NewClassController(classes *services.ClassService) *ClassController {
	return &ClassController{classes: classes}
}

// GetUpcoming lists every class that has not started yet
func (cc *ClassController) GetUpcoming(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	views, err := cc.classes.GetUpcoming(c.Request.Context(), *p)
	if err != nil {
		return nil, err
	}

	resp := dto.NewResponse().Message(enums.CodeOK, "upcoming classes")
	for _, v := range views {
		resp.Class(classItem(v))
	}
	return resp, nil
}

// GetClass returns a class and its attendees to the class's trainer
func (cc *ClassController) GetClass(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	var req dto.ClassRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		return nil, err
	}

	view, attendees, err := cc.classes.GetClassDetail(c.Request.Context(), *p, req.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewResponse().Message(enums.CodeOK, "class fetched").Class(classItem(view))
	for _, a := range attendees {
		resp.Attendee(attendeeItem(a))
	}
	return resp, nil
}

// CreateClass schedules a class and redirects to its page
func (cc *ClassController) CreateClass(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	var req dto.CreateClassRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		return nil, err
	}

	id, err := cc.classes.CreateClass(c.Request.Context(), *p, services.NewClass{
		SkillID:  req.SkillID,
		Capacity: *req.Max,
		Year:     *req.Year,
		Month:    *req.Month,
		Day:      *req.Day,
		Hour:     *req.Hour,
		Minute:   *req.Minute,
		Note:     req.Note,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewResponse().
		Message(enums.CodeOK, "class created").
		Redirect("/class/" + strconv.FormatInt(id, 10)), nil
}

// CancelClass cancels a class and returns it with the attendee rows the cancellation changed
func (cc *ClassController) CancelClass(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	var req dto.ClassRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		return nil, err
	}

	result, err := cc.classes.CancelClass(c.Request.Context(), *p, req.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewResponse().Message(enums.CodeOK, "class cancelled").Class(classItem(result.Class))
	for _, a := range result.Changed {
		resp.Attendee(attendeeItem(a))
	}
	return resp, nil
}
