package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/models/dto"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
	"github.com/yigit/skilltrack/internal/app/services"
	"github.com/yigit/skilltrack/internal/middleware"
)

// Pages the client is sent to after login and logout
const (
	HomePage   = "/index.html"
	LogoutPage = "/logout.html"
)

// CookieConfig names the session cookies
type CookieConfig struct {
	UserCookie  string
	MagicCookie string
	// MaxAge of the cookies; zero makes them session cookies
	MaxAge time.Duration
	Secure bool
}

// AuthController handles login and logout
type AuthController struct {
	sessions *services.SessionService
	cookies  CookieConfig
}

// NewAuthController creates a new AuthController
func NewAuthController(sessions *services.SessionService, cookies CookieConfig) *AuthController {
	return &AuthController{
		sessions: sessions,
		cookies:  cookies,
	}
}

// Login checks the credentials, sets the session cookies and redirects to the home page
func (a *AuthController) Login(c *gin.Context, _ *models.Principal) (*dto.Response, error) {
	var req dto.LoginRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		return nil, err
	}

	p, err := a.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	maxAge := int(a.cookies.MaxAge / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.cookies.UserCookie, strconv.FormatInt(p.UserID, 10), maxAge, "/", "", a.cookies.Secure, true)
	c.SetCookie(a.cookies.MagicCookie, p.Token, maxAge, "/", "", a.cookies.Secure, true)

	return dto.NewResponse().
		Message(enums.CodeOK, "login successful").
		Redirect(HomePage), nil
}

// Logout ends the caller's session and clears the cookies
func (a *AuthController) Logout(c *gin.Context, p *models.Principal) (*dto.Response, error) {
	if _, err := a.sessions.Logout(c.Request.Context(), p.UserID, p.Token); err != nil {
		return nil, err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.cookies.UserCookie, "", -1, "/", "", a.cookies.Secure, true)
	c.SetCookie(a.cookies.MagicCookie, "", -1, "/", "", a.cookies.Secure, true)

	return dto.NewResponse().
		Message(enums.CodeOK, "logout successful").
		Redirect(LogoutPage), nil
}
