package models

type Brand struct {
	BaseModel
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`

	// Relations
	Users     []BrandUser `gorm:"foreignKey:BrandID" json:"users,omitempty"`
	Calendars []Calendar  `gorm:"foreignKey:BrandID" json:"calendars,omitempty"`
	Tasks     []Task      `gorm:"foreignKey:BrandID" json:"tasks,omitempty"`
}

// BrandUser is the membership row granting a non-admin user visibility into
// a brand's tasks. One row per (brand, user) pair.
type BrandUser struct {
	BaseModel
	BrandID string `gorm:"type:uuid;not null;uniqueIndex:idx_brand_user" json:"brandId"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_brand_user" json:"userId"`

	Brand *Brand `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
