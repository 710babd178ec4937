package models

import (
	"time"
)

// Setting is one key/value configuration row. The queue core reads
// these; admins write them.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Setting model
func (Setting) TableName() string {
	return "settings"
}

// Setting keys understood by the queue core.
const (
	SettingPreOrdersEnabled    = "preorders_enabled"     // "true" / "false"
	SettingItemWaitMinutes     = "item_wait_minutes"     // minutes per distinct item
	SettingPrintingBaseMinutes = "printing_base_minutes" // flat weight for a print job
	SettingOrderCutoffMinutes  = "order_cutoff_minutes"  // stop immediate orders this close to closing
)
