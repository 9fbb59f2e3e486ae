package models

// UserRole enumerates the seven agency roles. Capabilities are checked per
// action in the auth package; there is no implied privilege order.
type UserRole string

const (
	UserRoleSuperAdmin     UserRole = "SUPER_ADMIN"
	UserRoleAdmin          UserRole = "ADMIN"
	UserRoleAccountManager UserRole = "ACCOUNT_MANAGER"
	UserRoleWriter         UserRole = "WRITER"
	UserRoleDesigner       UserRole = "DESIGNER"
	UserRolePostScheduler  UserRole = "POST_SCHEDULER"
	UserRoleClientViewer   UserRole = "CLIENT_VIEWER"
)

func ValidUserRole(r UserRole) bool {
	switch r {
	case UserRoleSuperAdmin, UserRoleAdmin, UserRoleAccountManager,
		UserRoleWriter, UserRoleDesigner, UserRolePostScheduler, UserRoleClientViewer:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusApproved   TaskStatus = "APPROVED"
	TaskStatusRejected   TaskStatus = "REJECTED"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// ContentType enumerates the social post categories a calendar scope can
// target.
type ContentType string

const (
	ContentTypeStatic   ContentType = "STATIC"
	ContentTypeVideo    ContentType = "VIDEO"
	ContentTypeStory    ContentType = "STORY"
	ContentTypeReel     ContentType = "REEL"
	ContentTypeCarousel ContentType = "CAROUSEL"
	ContentTypeBlogPost ContentType = "BLOG_POST"
)

func ValidContentType(ct ContentType) bool {
	switch ct {
	case ContentTypeStatic, ContentTypeVideo, ContentTypeStory,
		ContentTypeReel, ContentTypeCarousel, ContentTypeBlogPost:
		return true
	}
	return false
}

type CalendarStatus string

const (
	CalendarStatusDraft    CalendarStatus = "DRAFT"
	CalendarStatusActive   CalendarStatus = "ACTIVE"
	CalendarStatusArchived CalendarStatus = "ARCHIVED"
)
