package models

import (
	"time"

	"gorm.io/gorm"
)

// Student represents a co-op member in the system (student or staff)
type Student struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Auth0ID       string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	StudentNumber string         `gorm:"uniqueIndex" json:"student_number"`
	Name          string         `gorm:"not null" json:"name"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	Role          string         `gorm:"not null;default:'student'" json:"role"` // "student" or "staff"
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Student model
func (Student) TableName() string {
	return "students"
}

// IsStaff reports whether the student record carries the staff role.
func (s *Student) IsStaff() bool {
	return s.Role == "staff"
}
