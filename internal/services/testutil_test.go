package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"abacus_backend/database"
	"abacus_backend/internal/auth"
	"abacus_backend/internal/events"
	"abacus_backend/internal/models"
	"abacus_backend/internal/pkg/email"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/storage"
)

// recordPublisher captures published events in memory.
type recordPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func (p *recordPublisher) ofType(eventType string) []events.Event {
	var out []events.Event
	for _, e := range p.all() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	db        *gorm.DB
	publisher *recordPublisher
	mail      *email.MockSender

	userRepo         repositories.UserRepository
	brandRepo        repositories.BrandRepository
	calendarRepo     repositories.CalendarRepository
	taskRepo         repositories.TaskRepository
	notificationRepo repositories.NotificationRepository
	activityRepo     repositories.ActivityRepository

	activity     ActivityService
	notification NotificationService
	authSvc      AuthService
	users        UserService
	brands       BrandService
	calendars    CalendarService
	tasks        TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	files, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	env := &testEnv{
		db:        db,
		publisher: &recordPublisher{},
		mail:      email.NewMockSender(),
	}

	env.userRepo = repositories.NewUserRepository(db)
	env.brandRepo = repositories.NewBrandRepository(db)
	env.calendarRepo = repositories.NewCalendarRepository(db)
	env.taskRepo = repositories.NewTaskRepository(db)
	env.notificationRepo = repositories.NewNotificationRepository(db)
	env.activityRepo = repositories.NewActivityRepository(db)

	env.activity = NewActivityService(env.activityRepo)
	env.notification = NewNotificationService(env.notificationRepo, env.publisher)
	env.authSvc = NewAuthService(env.userRepo, env.activity, env.mail, AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
	env.users = NewUserService(env.userRepo, env.activity, env.mail)
	env.brands = NewBrandService(env.brandRepo, env.userRepo, env.activity)
	env.calendars = NewCalendarService(env.calendarRepo, env.brandRepo, env.taskRepo, env.activity)
	env.tasks = NewTaskService(env.taskRepo, env.brandRepo, env.userRepo, env.notification, env.activity, files)

	return env
}

func (e *testEnv) createUser(t *testing.T, emailAddr string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:        emailAddr,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.userRepo.Create(user))
	return user
}

func (e *testEnv) createBrand(t *testing.T, name string) *models.Brand {
	t.Helper()
	brand := &models.Brand{Name: name, IsActive: true}
	require.NoError(t, e.brandRepo.Create(brand))
	return brand
}

func actorFor(user *models.User) auth.Actor {
	return auth.Actor{UserID: user.ID, Role: user.Role}
}
