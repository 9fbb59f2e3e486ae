package models

// Calendar is one brand's content plan for a single month. The composite
// unique index enforces the at-most-one-per-(brand,month,year) invariant;
// a lost race surfaces as a uniqueness violation, never a duplicate row.
type Calendar struct {
	BaseModel
	BrandID     string         `gorm:"type:uuid;not null;uniqueIndex:idx_calendar_key" json:"brandId"`
	Month       int            `gorm:"not null;uniqueIndex:idx_calendar_key" json:"month"`
	Year        int            `gorm:"not null;uniqueIndex:idx_calendar_key" json:"year"`
	Status      CalendarStatus `gorm:"type:varchar(20);default:'DRAFT'" json:"status"`
	CreatedByID string         `gorm:"type:uuid;not null" json:"createdById"`

	Brand     *Brand          `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	CreatedBy *User           `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Scopes    []CalendarScope `gorm:"foreignKey:CalendarID" json:"scopes,omitempty"`
	Tasks     []Task          `gorm:"foreignKey:CalendarID" json:"tasks,omitempty"`
}

// CalendarScope is one (content type -> target quantity) line item.
// Completed counts completed tasks only when explicitly synced; progress
// views derive completion from task state instead of trusting this column.
type CalendarScope struct {
	BaseModel
	CalendarID  string      `gorm:"type:uuid;not null;uniqueIndex:idx_scope_key" json:"calendarId"`
	ContentType ContentType `gorm:"type:varchar(20);not null;uniqueIndex:idx_scope_key" json:"contentType"`
	Quantity    int         `gorm:"not null" json:"quantity"`
	Completed   int         `gorm:"default:0" json:"completed"`
}
