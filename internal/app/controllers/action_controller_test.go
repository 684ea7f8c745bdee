package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/skilltrack/internal/app/controllers"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/repositories/memstore"
	"github.com/yigit/skilltrack/internal/app/routes"
	"github.com/yigit/skilltrack/internal/app/services"
	"github.com/yigit/skilltrack/internal/middleware"
	"github.com/yigit/skilltrack/internal/pkg/auth"
	"github.com/yigit/skilltrack/internal/pkg/clock"
	"github.com/yigit/skilltrack/internal/pkg/websocket"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type item map[string]interface{}

type env struct {
	router   *gin.Engine
	clock    *clock.Mock
	registry *services.RegistryService
	classes  *services.ClassService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = 4

	store := memstore.New()
	clk := clock.NewMock(baseTime)
	log := zerolog.Nop()

	sessions := services.NewSessionService(store, clk, 0, log)
	registry := services.NewRegistryService(store, clk, log)
	classes := services.NewClassService(store, clk, services.ClassOptions{Location: time.UTC}, nil, log)
	attendance := services.NewAttendanceService(store, clk, nil, log)
	summary := services.NewSkillSummaryService(store, clk, log)

	action := controllers.NewActionController(
		controllers.NewAuthController(sessions, controllers.CookieConfig{UserCookie: "u_cookie", MagicCookie: "m_cookie"}),
		controllers.NewClassController(classes),
		controllers.NewAttendanceController(attendance, summary),
	)
	roster := controllers.NewRosterController(classes, websocket.NewHub(log))

	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	routes.SetupRouter(router, action, roster, middleware.NewAuthMiddleware(sessions, "u_cookie", "m_cookie"))

	return &env{router: router, clock: clk, registry: registry, classes: classes}
}

func (e *env) do(t *testing.T, command string, body interface{}, cookies []*http.Cookie) (*httptest.ResponseRecorder, []item) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/action?command="+command, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var items []item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items), rec.Body.String())
	return rec, items
}

func (e *env) user(t *testing.T, name, login string) int64 {
	t.Helper()
	id, err := e.registry.CreateUser(context.Background(), name, login, "secret-"+login)
	require.NoError(t, err)
	return id
}

func (e *env) login(t *testing.T, login string) []*http.Cookie {
	t.Helper()
	rec, items := e.do(t, "login", gin.H{"username": login, "password": "secret-" + login}, nil)
	require.Equal(t, http.StatusOK, rec.Code, items)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	return cookies
}

func codeOf(it item) int {
	return int(it["code"].(float64))
}

func TestDispatch_CommandErrors(t *testing.T) {
	e := newEnv(t)

	rec, items := e.do(t, "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, items, 1)
	assert.Equal(t, 902, codeOf(items[0]))

	rec, items = e.do(t, "drop_tables", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, items, 1)
	assert.Equal(t, 901, codeOf(items[0]))
}

func TestDispatch_AnonymousCallerIsRedirectedToLogin(t *testing.T) {
	e := newEnv(t)

	for _, command := range []string{"get_upcoming", "join_class", "get_my_skills", "logout"} {
		rec, items := e.do(t, command, gin.H{"id": 1}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, command)
		require.Len(t, items, 2, command)
		assert.Equal(t, 200, codeOf(items[0]))
		assert.Equal(t, "redirect", items[1]["type"])
		assert.Equal(t, "/login.html", items[1]["where"])
	}

	forged := []*http.Cookie{{Name: "u_cookie", Value: "1"}, {Name: "m_cookie", Value: "12345678901234567890"}}
	rec, _ := e.do(t, "get_upcoming", nil, forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	aliceID := e.user(t, "Alice", "alice")

	rec, items := e.do(t, "login", gin.H{"username": "alice", "password": "secret-alice"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, items, 2)
	assert.Equal(t, 0, codeOf(items[0]))
	assert.Equal(t, "/index.html", items[1]["where"])

	cookies := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c.Value
		assert.True(t, c.HttpOnly)
	}
	assert.Equal(t, strconv.FormatInt(aliceID, 10), cookies["u_cookie"])
	assert.Len(t, cookies["m_cookie"], auth.MagicDigits)

	rec, items = e.do(t, "login", gin.H{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Len(t, items, 1)
	assert.Equal(t, 201, codeOf(items[0]))

	rec, items = e.do(t, "login", gin.H{"username": "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, items, 1)
	assert.Equal(t, 101, codeOf(items[0]))
	assert.Equal(t, "password", items[0]["field"])

	rec, items = e.do(t, "login", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 101, codeOf(items[0]))
}

func TestLogout_InvalidatesCookies(t *testing.T) {
	e := newEnv(t)
	e.user(t, "Alice", "alice")
	cookies := e.login(t, "alice")

	rec, items := e.do(t, "logout", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/logout.html", items[len(items)-1]["where"])
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}

	rec, _ = e.do(t, "get_upcoming", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnrolmentFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	boxing, err := e.registry.CreateSkill(ctx, "Boxing")
	require.NoError(t, err)
	tomID := e.user(t, "Tom", "tom")
	require.NoError(t, e.registry.GrantTrainer(ctx, tomID, boxing))
	e.user(t, "Alice", "alice")

	tom := e.login(t, "tom")
	alice := e.login(t, "alice")

	rec, items := e.do(t, "create_class", gin.H{
		"id": boxing, "note": "bring gloves", "max": 2,
		"year": 2026, "month": 3, "day": 11, "hour": 9, "minute": 30,
	}, tom)
	require.Equal(t, http.StatusOK, rec.Code, items)
	require.Len(t, items, 2)
	assert.Equal(t, "/class/1", items[1]["where"])

	rec, items = e.do(t, "get_upcoming", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, items, 2)
	class := items[1]
	assert.Equal(t, "class", class["type"])
	assert.Equal(t, "Boxing", class["name"])
	assert.Equal(t, "Tom", class["trainer"])
	assert.Equal(t, float64(time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC).Unix()), class["when"])
	assert.Equal(t, "join", class["action"])

	rec, items = e.do(t, "join_class", gin.H{"id": 1}, alice)
	require.Equal(t, http.StatusOK, rec.Code, items)
	assert.Equal(t, "leave", items[1]["action"])
	assert.Equal(t, float64(1), items[1]["size"])

	rec, items = e.do(t, "join_class", gin.H{"id": 1}, alice)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.Len(t, items, 1)
	assert.Equal(t, 203, codeOf(items[0]))

	rec, items = e.do(t, "get_class", gin.H{"id": 1}, tom)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, items, 3)
	assert.Equal(t, "cancel", items[1]["action"])
	assert.Equal(t, "attendee", items[2]["type"])
	assert.Equal(t, "Alice", items[2]["name"])
	assert.Equal(t, "remove", items[2]["action"])

	rec, items = e.do(t, "get_class", gin.H{"id": 1}, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 202, codeOf(items[0]))

	rec, items = e.do(t, "update_attendee", gin.H{"id": 1, "state": "promote"}, tom)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 102, codeOf(items[0]))
	assert.Equal(t, "state", items[0]["field"])

	rec, items = e.do(t, "update_attendee", gin.H{"id": 1, "state": "pass"}, tom)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 203, codeOf(items[0]))

	e.clock.Advance(24 * time.Hour)
	rec, items = e.do(t, "update_attendee", gin.H{"id": 1, "state": "pass"}, tom)
	require.Equal(t, http.StatusOK, rec.Code, items)
	assert.Equal(t, "passed", items[1]["action"])

	rec, items = e.do(t, "get_my_skills", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, items, 2)
	assert.Equal(t, "skill", items[1]["type"])
	assert.Equal(t, "passed", items[1]["state"])
	assert.Equal(t, float64(time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC).Unix()), items[1]["gained"])
}

func TestCreateClass_ReportsEveryInvalidField(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	boxing, err := e.registry.CreateSkill(ctx, "Boxing")
	require.NoError(t, err)
	tomID := e.user(t, "Tom", "tom")
	require.NoError(t, e.registry.GrantTrainer(ctx, tomID, boxing))
	tom := e.login(t, "tom")

	rec, items := e.do(t, "create_class", gin.H{
		"id": boxing, "max": 0,
		"year": 2026, "month": 2, "day": 30, "hour": 25, "minute": 0,
	}, tom)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var fields []string
	for _, it := range items {
		assert.Equal(t, 102, codeOf(it))
		fields = append(fields, it["field"].(string))
	}
	assert.ElementsMatch(t, []string{"max", "day", "hour"}, fields)

	rec, items = e.do(t, "create_class", gin.H{"id": boxing, "max": 3}, tom)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, items, 5, "every missing calendar field is reported")
	for _, it := range items {
		assert.Equal(t, 101, codeOf(it))
	}
}

func TestCancelClass_ReturnsChangedAttendees(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	boxing, err := e.registry.CreateSkill(ctx, "Boxing")
	require.NoError(t, err)
	tomID := e.user(t, "Tom", "tom")
	require.NoError(t, e.registry.GrantTrainer(ctx, tomID, boxing))
	e.user(t, "Alice", "alice")

	_, err = e.classes.CreateClass(ctx, models.Principal{UserID: tomID}, services.NewClass{
		SkillID: boxing, Capacity: 4, Year: 2026, Month: 3, Day: 12, Hour: 10,
	})
	require.NoError(t, err)

	tom := e.login(t, "tom")
	alice := e.login(t, "alice")
	rec, _ := e.do(t, "join_class", gin.H{"id": 1}, alice)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, items := e.do(t, "cancel_class", gin.H{"id": 1}, tom)
	require.Equal(t, http.StatusOK, rec.Code, items)
	require.Len(t, items, 3)
	assert.Equal(t, "cancelled", items[1]["action"])
	assert.Equal(t, float64(0), items[1]["max"])
	assert.Equal(t, "cancelled", items[2]["action"])

	rec, items = e.do(t, "get_upcoming", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", items[1]["action"])
}
