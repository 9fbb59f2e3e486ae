package models

type Notification struct {
	BaseModel
	UserID  string `gorm:"type:uuid;not null;index" json:"userId"`
	Title   string `gorm:"not null" json:"title"`
	Message string `gorm:"not null" json:"message"`
	IsRead  bool   `gorm:"default:false;index" json:"isRead"`
}
