package services

import (
	"strconv"

	"github.com/campus-coop/coop-queue-api/models"
	"gorm.io/gorm"
)

// Defaults used when a setting row is absent or unparsable.
const (
	DefaultItemWaitMinutes     = 5
	DefaultPrintingBaseMinutes = 10
	DefaultOrderCutoffMinutes  = 0
)

// SettingsService reads key/value configuration from the settings table.
// Reads are always fresh: business-hours and pre-order decisions must not
// run on stale values.
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a settings service backed by the given database
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// PreOrdersEnabled reports whether orders placed outside business hours
// may be deferred to the next business day. Enabled unless explicitly
// turned off.
func (s *SettingsService) PreOrdersEnabled() bool {
	return s.getString(models.SettingPreOrdersEnabled, "true") != "false"
}

// ItemWaitMinutes returns the per-item wait-time weight in minutes
func (s *SettingsService) ItemWaitMinutes() int {
	return s.getInt(models.SettingItemWaitMinutes, DefaultItemWaitMinutes)
}

// PrintingBaseMinutes returns the flat wait-time weight for a print job
func (s *SettingsService) PrintingBaseMinutes() int {
	return s.getInt(models.SettingPrintingBaseMinutes, DefaultPrintingBaseMinutes)
}

// OrderCutoffMinutes returns how close to closing time immediate orders
// stop being accepted. Zero means orders are accepted until closing.
func (s *SettingsService) OrderCutoffMinutes() int {
	return s.getInt(models.SettingOrderCutoffMinutes, DefaultOrderCutoffMinutes)
}

func (s *SettingsService) getString(key, defaultValue string) string {
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		// Absent row or connection trouble; fall back to the default
		// rather than blocking order flow on configuration reads.
		return defaultValue
	}
	return setting.Value
}

func (s *SettingsService) getInt(key string, defaultValue int) int {
	raw := s.getString(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

var settingsServiceInstance *SettingsService

// InitSettingsService initializes the settings service
func InitSettingsService(db *gorm.DB) *SettingsService {
	settingsServiceInstance = NewSettingsService(db)
	return settingsServiceInstance
}

// GetSettingsService returns the initialized settings service instance
func GetSettingsService() *SettingsService {
	return settingsServiceInstance
}
