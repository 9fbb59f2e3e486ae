package models

import "time"

type User struct {
	BaseModel
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	FirstName     string     `gorm:"not null" json:"firstName"`
	LastName      string     `gorm:"not null" json:"lastName"`
	Role          UserRole   `gorm:"type:varchar(20);not null;default:'CLIENT_VIEWER'" json:"role"`
	IsActive      bool       `gorm:"default:true" json:"isActive"`
	ResetToken    string     `json:"-"`
	ResetTokenExp *time.Time `json:"-"`

	// Relations
	BrandAccess []BrandUser `gorm:"foreignKey:UserID" json:"brandAccess,omitempty"`
}
