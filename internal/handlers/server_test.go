package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"abacus_backend/database"
	"abacus_backend/internal/auth"
	"abacus_backend/internal/events"
	"abacus_backend/internal/handlers"
	"abacus_backend/internal/middleware"
	"abacus_backend/internal/models"
	"abacus_backend/internal/pkg/email"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/routes"
	"abacus_backend/internal/services"
	"abacus_backend/internal/storage"
	"abacus_backend/internal/validator"
	"abacus_backend/ws"
)

const testJWTSecret = "test-secret"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	files, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	manager := ws.NewManager()
	publisher := events.NewHubPublisher(manager)
	mail := email.NewMockSender()

	userRepo := repositories.NewUserRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	calendarRepo := repositories.NewCalendarRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	activityRepo := repositories.NewActivityRepository(db)

	activitySvc := services.NewActivityService(activityRepo)
	notificationSvc := services.NewNotificationService(notificationRepo, publisher)
	authSvc := services.NewAuthService(userRepo, activitySvc, mail, services.AuthConfig{
		JWTSecret: testJWTSecret,
		TokenTTL:  time.Hour,
	})
	userSvc := services.NewUserService(userRepo, activitySvc, mail)
	brandSvc := services.NewBrandService(brandRepo, userRepo, activitySvc)
	calendarSvc := services.NewCalendarService(calendarRepo, brandRepo, taskRepo, activitySvc)
	taskSvc := services.NewTaskService(taskRepo, brandRepo, userRepo, notificationSvc, activitySvc, files)

	base := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		Auth:         handlers.NewAuthHandler(base, authSvc),
		User:         handlers.NewUserHandler(base, userSvc),
		Brand:        handlers.NewBrandHandler(base, brandSvc, calendarSvc),
		Calendar:     handlers.NewCalendarHandler(base, calendarSvc),
		Task:         handlers.NewTaskHandler(base, taskSvc, 1<<20, []string{"image/png"}),
		Notification: handlers.NewNotificationHandler(base, notificationSvc),
		Activity:     handlers.NewActivityHandler(base, activitySvc),
		WS:           handlers.NewWSHandler(base, manager, testJWTSecret),
	}

	router := gin.New()
	routes.RegisterRoutes(router, appHandlers, middleware.AuthMiddleware(testJWTSecret))

	return &testServer{router: router, db: db}
}

func (s *testServer) createUser(t *testing.T, emailAddr string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:        emailAddr,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

func (s *testServer) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, time.Hour, user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      "ana@abacus.com",
		"password":   "secret123",
		"first_name": "Ana",
		"last_name":  "Petrova",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ana@abacus.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)

	w = srv.do(t, http.MethodGet, "/api/v1/auth/me", loginResp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "ana@abacus.com", me.Email)
	assert.Equal(t, string(models.UserRoleClientViewer), me.Role)
}

func TestMeWithoutTokenIsUnauthorized(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidationError(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "not-an-email",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))
}

func TestActivityRouteRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)
	writer := srv.createUser(t, "writer@abacus.com", models.UserRoleWriter)
	admin := srv.createUser(t, "admin@abacus.com", models.UserRoleAdmin)

	w := srv.do(t, http.MethodGet, "/api/v1/activity", srv.tokenFor(t, writer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/activity", srv.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestBrandCreateForbiddenForWriter(t *testing.T) {
	srv := newTestServer(t)
	writer := srv.createUser(t, "writer@abacus.com", models.UserRoleWriter)
	admin := srv.createUser(t, "admin@abacus.com", models.UserRoleAdmin)

	w := srv.do(t, http.MethodPost, "/api/v1/brands", srv.tokenFor(t, writer), gin.H{
		"name": "Acme",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	w = srv.do(t, http.MethodPost, "/api/v1/brands", srv.tokenFor(t, admin), gin.H{
		"name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestTaskNotFoundIsHiddenOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	writer := srv.createUser(t, "writer@abacus.com", models.UserRoleWriter)

	w := srv.do(t, http.MethodGet, "/api/v1/tasks/does-not-exist", srv.tokenFor(t, writer), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestWSStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	writer := srv.createUser(t, "writer@abacus.com", models.UserRoleWriter)

	w := srv.do(t, http.MethodGet, "/api/v1/ws/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/ws/stats", srv.tokenFor(t, writer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Connections int `json:"connections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Connections)
}
