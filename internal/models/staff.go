package models

import "time"

// Staff is a barangay staff member who prepares and edits budget plans.
type Staff struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Position    string     `json:"position"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// TableName keeps the plural table name for the staff model.
func (Staff) TableName() string { return "staff" }
