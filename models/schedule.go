package models

import (
	"time"
)

// WeeklySchedule holds one row per weekday (time.Weekday numbering,
// Sunday = 0) describing the default opening hours.
type WeeklySchedule struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Weekday    int       `gorm:"uniqueIndex;not null" json:"weekday"`
	IsOpen     bool      `gorm:"not null" json:"is_open"`
	OpenTime   string    `json:"open_time"`  // "HH:MM", 24-hour
	CloseTime  string    `json:"close_time"` // "HH:MM", 24-hour
	LunchStart *string   `json:"lunch_start,omitempty"`
	LunchEnd   *string   `json:"lunch_end,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the WeeklySchedule model
func (WeeklySchedule) TableName() string {
	return "weekly_schedules"
}

// SpecialHours overrides the weekly schedule for one exact date
// (holiday closure or modified hours).
type SpecialHours struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"uniqueIndex;not null" json:"date"` // YYYY-MM-DD
	IsOpen    bool      `gorm:"not null" json:"is_open"`
	OpenTime  *string   `json:"open_time,omitempty"`
	CloseTime *string   `json:"close_time,omitempty"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the SpecialHours model
func (SpecialHours) TableName() string {
	return "special_hours"
}
