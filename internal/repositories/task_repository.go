package repositories

import (
	"errors"

	"abacus_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

type TaskRepository interface {
	FindByID(id string) (*models.Task, error)
	FindWithFilter(criteria TaskFilter) ([]models.Task, int64, error)
	Create(task *models.Task) error
	CreateBatch(tasks []models.Task) error
	Update(task *models.Task) error
	Delete(taskID string) error
	CountByCalendar(calendarID string) (int64, error)
	TasksForCalendar(calendarID string) ([]models.Task, error)
	ProgressByContentType(calendarID string) ([]ContentTypeProgress, error)

	CreateComment(comment *models.Comment) error
	CommentsForTask(taskID string) ([]models.Comment, error)

	CreateAttachment(attachment *models.Attachment) error
	FindAttachment(id string) (*models.Attachment, error)
	DeleteAttachment(id string) error
}

type TaskRepositoryImpl struct {
	db *gorm.DB
}

// TaskFilter combines explicit query filters with the actor-based row
// restriction. When RestrictToUser is set, only tasks assigned to, created
// by, or belonging to a brand of that user are returned.
type TaskFilter struct {
	Status         models.TaskStatus
	Priority       models.TaskPriority
	ContentType    models.ContentType
	BrandID        string
	CalendarID     string
	AssignedToID   string
	RestrictToUser string
	Page           int
	PageSize       int
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) FindByID(id string) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Brand").Preload("AssignedTo").Preload("CreatedBy").
		Preload("Comments").Preload("Comments.Author").Preload("Attachments").
		First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) FindWithFilter(criteria TaskFilter) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{})

	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.Priority != "" {
		query = query.Where("priority = ?", criteria.Priority)
	}
	if criteria.ContentType != "" {
		query = query.Where("content_type = ?", criteria.ContentType)
	}
	if criteria.BrandID != "" {
		query = query.Where("brand_id = ?", criteria.BrandID)
	}
	if criteria.CalendarID != "" {
		query = query.Where("calendar_id = ?", criteria.CalendarID)
	}
	if criteria.AssignedToID != "" {
		query = query.Where("assigned_to_id = ?", criteria.AssignedToID)
	}
	if criteria.RestrictToUser != "" {
		memberBrands := r.db.Model(&models.BrandUser{}).
			Select("brand_id").
			Where("user_id = ?", criteria.RestrictToUser)
		query = query.Where(
			"assigned_to_id = ? OR created_by_id = ? OR brand_id IN (?)",
			criteria.RestrictToUser, criteria.RestrictToUser, memberBrands,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var tasks []models.Task
	err := query.Preload("Brand").Preload("AssignedTo").Preload("CreatedBy").
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskRepositoryImpl) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *TaskRepositoryImpl) CreateBatch(tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.Create(&tasks).Error
}

func (r *TaskRepositoryImpl) Update(task *models.Task) error {
	result := r.db.Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(taskID string) error {
	result := r.db.Delete(&models.Task{}, "id = ?", taskID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) CountByCalendar(calendarID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("calendar_id = ?", calendarID).Count(&count).Error
	return count, err
}

func (r *TaskRepositoryImpl) TasksForCalendar(calendarID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("AssignedTo").
		Where("calendar_id = ?", calendarID).
		Order("posting_date ASC, created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// ContentTypeProgress is one row of the derived per-type completion view.
type ContentTypeProgress struct {
	ContentType models.ContentType `json:"content_type"`
	Total       int64              `json:"total"`
	Completed   int64              `json:"completed"`
}

// ProgressByContentType counts generated tasks per content type and how many
// of them reached COMPLETED. The counts are always derived, never stored.
func (r *TaskRepositoryImpl) ProgressByContentType(calendarID string) ([]ContentTypeProgress, error) {
	var rows []ContentTypeProgress
	err := r.db.Model(&models.Task{}).
		Select(
			"content_type, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed",
			models.TaskStatusCompleted,
		).
		Where("calendar_id = ? AND content_type IS NOT NULL", calendarID).
		Group("content_type").
		Scan(&rows).Error
	return rows, err
}

func (r *TaskRepositoryImpl) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *TaskRepositoryImpl) CommentsForTask(taskID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *TaskRepositoryImpl) CreateAttachment(attachment *models.Attachment) error {
	return r.db.Create(attachment).Error
}

func (r *TaskRepositoryImpl) FindAttachment(id string) (*models.Attachment, error) {
	var attachment models.Attachment
	err := r.db.First(&attachment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *TaskRepositoryImpl) DeleteAttachment(id string) error {
	result := r.db.Delete(&models.Attachment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
