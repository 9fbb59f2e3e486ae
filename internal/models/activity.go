package models

import "gorm.io/datatypes"

// ActivityLog is the append-only audit trail. Rows are written by every
// mutating operation and never read back by business logic. Metadata is a
// best-effort key-value payload; its shape varies per action.
type ActivityLog struct {
	BaseModel
	Action   string            `gorm:"not null;index" json:"action"`
	Entity   string            `gorm:"not null;index" json:"entity"`
	EntityID string            `gorm:"not null" json:"entityId"`
	UserID   string            `gorm:"type:uuid;not null;index" json:"userId"`
	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
