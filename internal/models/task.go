package models

import "time"

type Task struct {
	BaseModel
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	Priority     TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	BrandID      string       `gorm:"type:uuid;not null;index" json:"brandId"`
	CalendarID   *string      `gorm:"type:uuid;index" json:"calendarId,omitempty"`
	ContentType  *ContentType `gorm:"type:varchar(20)" json:"contentType,omitempty"`
	PostingDate  *time.Time   `json:"postingDate,omitempty"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
	AssignedToID *string      `gorm:"type:uuid;index" json:"assignedToId,omitempty"`
	CreatedByID  string       `gorm:"type:uuid;not null;index" json:"createdById"`

	Brand       *Brand       `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Calendar    *Calendar    `gorm:"foreignKey:CalendarID" json:"calendar,omitempty"`
	AssignedTo  *User        `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	CreatedBy   *User        `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Comments    []Comment    `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
}

// Comment is immutable once created; there is no edit operation.
type Comment struct {
	BaseModel
	TaskID   string `gorm:"type:uuid;not null;index" json:"taskId"`
	AuthorID string `gorm:"type:uuid;not null" json:"authorId"`
	Content  string `gorm:"not null" json:"content"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

type Attachment struct {
	BaseModel
	TaskID      string `gorm:"type:uuid;not null;index" json:"taskId"`
	FileName    string `gorm:"not null" json:"fileName"`
	FileURL     string `gorm:"not null" json:"fileUrl"`
	FileType    string `json:"fileType"`
	FileSize    int64  `json:"fileSize"`
	Description string `json:"description,omitempty"`
}
