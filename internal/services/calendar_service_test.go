package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abacus_backend/internal/models"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/services/dto"
	"abacus_backend/pkg/apperrors"
)

func TestCalendarCreateEnsureSemantics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	first, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID,
		Month:   3,
		Year:    2024,
	})
	require.NoError(t, err)

	// Same (brand, month, year) returns the existing calendar.
	second, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID,
		Month:   3,
		Year:    2024,
		Scopes: []dto.ScopeItem{
			{ContentType: models.ContentTypeReel, Quantity: 5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, second.Scopes, 1)
	assert.Equal(t, 5, second.Scopes[0].Quantity)

	var count int64
	require.NoError(t, env.db.Model(&models.Calendar{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCalendarCreateRequiresManagerRole(t *testing.T) {
	env := newTestEnv(t)
	writer := env.createUser(t, "writer@abacus.com", models.UserRoleWriter)
	brand := env.createBrand(t, "Acme")

	_, err := env.calendars.Create(context.Background(), actorFor(writer), dto.CreateCalendarRequest{
		BrandID: brand.ID,
		Month:   3,
		Year:    2024,
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestScopeUpsertLastWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 4, Year: 2024,
	})
	require.NoError(t, err)

	_, err = env.calendars.UpsertScope(ctx, actorFor(manager), calendar.ID, dto.UpsertScopeRequest{
		ContentType: models.ContentTypeStory, Quantity: 2,
	})
	require.NoError(t, err)
	scope, err := env.calendars.UpsertScope(ctx, actorFor(manager), calendar.ID, dto.UpsertScopeRequest{
		ContentType: models.ContentTypeStory, Quantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, scope.Quantity)

	var count int64
	require.NoError(t, env.db.Model(&models.CalendarScope{}).
		Where("calendar_id = ?", calendar.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGenerateTasksDatesAndNaming(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 3, Year: 2024,
	})
	require.NoError(t, err)

	resp, err := env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{
			{ContentType: models.ContentTypeReel, Quantity: 3, StartDate: "2024-03-01"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 3, resp.Count)
	require.Len(t, resp.Tasks, 3)

	wantPosting := []string{"2024-03-01", "2024-03-04", "2024-03-07"}
	wantDue := []string{"2024-02-28", "2024-03-02", "2024-03-05"}
	for i, task := range resp.Tasks {
		assert.Equal(t, wantPosting[i], task.PostingDate.Format("2006-01-02"))
		assert.Equal(t, wantDue[i], task.DueDate.Format("2006-01-02"))
		assert.Equal(t, models.TaskStatusTodo, task.Status)
		assert.Equal(t, models.TaskPriorityMedium, task.Priority)
		require.NotNil(t, task.ContentType)
		assert.Equal(t, models.ContentTypeReel, *task.ContentType)
	}
	assert.Equal(t, "REEL #1", resp.Tasks[0].Title)
	assert.Equal(t, "REEL #3", resp.Tasks[2].Title)
	assert.Equal(t, "Create reel for Acme", resp.Tasks[0].Description)
}

func TestGenerateTasksHumanizesFirstUnderscoreOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 5, Year: 2024,
	})
	require.NoError(t, err)

	resp, err := env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{
			{ContentType: models.ContentTypeBlogPost, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "BLOG POST #1", resp.Tasks[0].Title)
	assert.Equal(t, "Create blog post for Acme", resp.Tasks[0].Description)

	// No explicit start date: generation begins on the first of the month.
	assert.Equal(t, "2024-05-01", resp.Tasks[0].PostingDate.Format("2006-01-02"))
}

func TestGenerateTasksIsAdditive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 3, Year: 2024,
	})
	require.NoError(t, err)

	req := dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{{ContentType: models.ContentTypeReel, Quantity: 3}},
	}
	_, err = env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, req)
	require.NoError(t, err)
	_, err = env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, req)
	require.NoError(t, err)

	count, err := env.taskRepo.CountByCalendar(calendar.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestGenerateTasksWritesOneAuditRowPerRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 3, Year: 2024,
	})
	require.NoError(t, err)

	_, err = env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{
			{ContentType: models.ContentTypeReel, Quantity: 3},
			{ContentType: models.ContentTypeStory, Quantity: 2},
		},
	})
	require.NoError(t, err)

	var entries []models.ActivityLog
	require.NoError(t, env.db.
		Where("action = ? AND entity = ?", "GENERATE", "CalendarTasks").
		Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, calendar.ID, entries[0].EntityID)
	assert.EqualValues(t, 5, entries[0].Metadata["count"])

	scopes, ok := entries[0].Metadata["scopes"].([]interface{})
	require.True(t, ok)
	require.Len(t, scopes, 2)
	first, ok := scopes[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "REEL", first["content_type"])
	assert.EqualValues(t, 3, first["quantity"])
}

func TestCalendarDeleteRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	admin := env.createUser(t, "admin@abacus.com", models.UserRoleAdmin)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 6, Year: 2024,
	})
	require.NoError(t, err)

	err = env.calendars.Delete(ctx, actorFor(manager), calendar.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	require.NoError(t, env.calendars.Delete(ctx, actorFor(admin), calendar.ID))
}

func TestGenerateTasksInvalidStartDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 3, Year: 2024,
	})
	require.NoError(t, err)

	_, err = env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{{ContentType: models.ContentTypeReel, Quantity: 1, StartDate: "03/01/2024"}},
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestGenerateTasksPostingDatesAreUTC(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 12, Year: 2024,
	})
	require.NoError(t, err)

	resp, err := env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{{ContentType: models.ContentTypeStatic, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, time.UTC, resp.Tasks[0].PostingDate.Location())
}

func TestCalendarListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	acme := env.createBrand(t, "Acme")
	globex := env.createBrand(t, "Globex")

	for _, c := range []struct {
		brandID string
		month   int
		year    int
	}{
		{acme.ID, 3, 2024},
		{acme.ID, 4, 2024},
		{globex.ID, 3, 2024},
	} {
		_, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
			BrandID: c.brandID, Month: c.month, Year: c.year,
		})
		require.NoError(t, err)
	}

	all, err := env.calendars.List(ctx, actorFor(manager), dto.ListCalendarsRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	acmeOnly, err := env.calendars.List(ctx, actorFor(manager), dto.ListCalendarsRequest{BrandID: acme.ID})
	require.NoError(t, err)
	assert.Len(t, acmeOnly, 2)

	march, err := env.calendars.List(ctx, actorFor(manager), dto.ListCalendarsRequest{Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.Len(t, march, 2)
}

func TestGenerateTasksPerScopeStartDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 3, Year: 2024,
	})
	require.NoError(t, err)

	// Each scope item schedules from its own start date; items without one
	// fall back to the first of the month.
	resp, err := env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{
			{ContentType: models.ContentTypeReel, Quantity: 2, StartDate: "2024-03-10"},
			{ContentType: models.ContentTypeStory, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 4)

	postings := map[models.ContentType][]string{}
	for _, task := range resp.Tasks {
		require.NotNil(t, task.ContentType)
		require.NotNil(t, task.PostingDate)
		postings[*task.ContentType] = append(postings[*task.ContentType], task.PostingDate.Format("2006-01-02"))
	}
	assert.Equal(t, []string{"2024-03-10", "2024-03-13"}, postings[models.ContentTypeReel])
	assert.Equal(t, []string{"2024-03-01", "2024-03-04"}, postings[models.ContentTypeStory])
}

func TestCalendarCreateDuplicateMonthIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	_, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 3, Year: 2024,
	})
	require.NoError(t, err)

	// A second insert for the same (brand, month, year) hits the unique
	// index. The repository surfaces the sentinel the service turns into a
	// 409, which is what the loser of a concurrent create sees.
	err = env.calendarRepo.Create(&models.Calendar{
		BrandID:     brand.ID,
		Month:       3,
		Year:        2024,
		Status:      models.CalendarStatusDraft,
		CreatedByID: manager.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrCalendarExists)

	var count int64
	require.NoError(t, env.db.Model(&models.Calendar{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCalendarListReportsTaskCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	busy, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 3, Year: 2024,
	})
	require.NoError(t, err)
	idle, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 4, Year: 2024,
	})
	require.NoError(t, err)

	_, err = env.calendars.GenerateTasks(ctx, actorFor(manager), busy.ID, dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{{ContentType: models.ContentTypeReel, Quantity: 3}},
	})
	require.NoError(t, err)

	list, err := env.calendars.List(ctx, actorFor(manager), dto.ListCalendarsRequest{BrandID: brand.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)

	counts := map[string]int64{}
	for _, item := range list {
		counts[item.ID] = item.TaskCount
	}
	assert.Equal(t, int64(3), counts[busy.ID])
	assert.Equal(t, int64(0), counts[idle.ID])
}

func TestScopeDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 6, Year: 2024,
	})
	require.NoError(t, err)
	scope, err := env.calendars.UpsertScope(ctx, actorFor(manager), calendar.ID, dto.UpsertScopeRequest{
		ContentType: models.ContentTypeReel, Quantity: 3,
	})
	require.NoError(t, err)

	// A scope id under the wrong calendar is hidden.
	other, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 7, Year: 2024,
	})
	require.NoError(t, err)
	err = env.calendars.DeleteScope(ctx, actorFor(manager), other.ID, scope.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	require.NoError(t, env.calendars.DeleteScope(ctx, actorFor(manager), calendar.ID, scope.ID))

	reloaded, err := env.calendars.Get(ctx, actorFor(manager), calendar.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Scopes)
}

func TestCalendarProgressIsDerivedFromTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.createUser(t, "manager@abacus.com", models.UserRoleAccountManager)
	brand := env.createBrand(t, "Acme")

	calendar, err := env.calendars.Create(ctx, actorFor(manager), dto.CreateCalendarRequest{
		BrandID: brand.ID, Month: 5, Year: 2024,
	})
	require.NoError(t, err)

	_, err = env.calendars.GenerateTasks(ctx, actorFor(manager), calendar.ID, dto.GenerateTasksRequest{
		Scopes: []dto.ScopeItem{{ContentType: models.ContentTypeReel, Quantity: 3}},
	})
	require.NoError(t, err)

	var task models.Task
	require.NoError(t, env.db.First(&task, "calendar_id = ?", calendar.ID).Error)
	require.NoError(t, env.db.Model(&models.Task{}).
		Where("id = ?", task.ID).Update("status", models.TaskStatusCompleted).Error)

	reloaded, err := env.calendars.Get(ctx, actorFor(manager), calendar.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Progress, 1)
	assert.Equal(t, models.ContentTypeReel, reloaded.Progress[0].ContentType)
	assert.Equal(t, int64(3), reloaded.Progress[0].Total)
	assert.Equal(t, int64(1), reloaded.Progress[0].Completed)

	// The stored scope counter is untouched; the view is always computed.
	require.Len(t, reloaded.Scopes, 1)
	assert.Equal(t, 0, reloaded.Scopes[0].Completed)
}
