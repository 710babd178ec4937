package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campus-coop/coop-queue-api/logging"
	"github.com/campus-coop/coop-queue-api/models"
)

// baseTestTime is Tuesday 2026-03-10 10:00, mid-morning on an open day.
var baseTestTime = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func setupCoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// A single connection keeps the in-memory database shared across
	// goroutines in concurrency tests.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.InventoryItem{},
		&models.WeeklySchedule{},
		&models.SpecialHours{},
		&models.Setting{},
		&models.QueueCounter{},
		&models.QueueReset{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// seedOpenWeek makes every weekday open 09:00-17:00 with no lunch break,
// so tests control closures explicitly via special hours.
func seedOpenWeek(t *testing.T, db *gorm.DB) {
	t.Helper()
	for weekday := 0; weekday <= 6; weekday++ {
		row := models.WeeklySchedule{
			Weekday:   weekday,
			IsOpen:    true,
			OpenTime:  "09:00",
			CloseTime: "17:00",
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("Failed to seed weekly schedule: %v", err)
		}
	}
}

func seedStudent(t *testing.T, db *gorm.DB, auth0ID, role string) *models.Student {
	t.Helper()
	student := &models.Student{
		Auth0ID:       auth0ID,
		StudentNumber: "SN-" + auth0ID,
		Name:          "Student " + auth0ID,
		Email:         auth0ID + "@campus.test",
		Role:          role,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("Failed to seed student: %v", err)
	}
	return student
}

// coreEnv bundles the wired queue core for service-level tests.
type coreEnv struct {
	db       *gorm.DB
	clock    *MockClock
	notifier *MockNotificationService
	settings *SettingsService
	hours    *HoursService
	queue    *QueueService
	waitTime *WaitTimeService
	orders   *OrderService
}

func newCoreEnv(t *testing.T) *coreEnv {
	t.Helper()

	db := setupCoreTestDB(t)
	seedOpenWeek(t, db)

	clock := NewMockClock(baseTestTime)
	notifier := NewMockNotificationService()
	settings := NewSettingsService(db)
	hours := NewHoursService(db, clock)
	queue := NewQueueService(db)
	waitTime := NewWaitTimeService(db, clock, settings)
	logger := logging.GetSugaredLogger()
	orders := NewOrderService(db, clock, hours, queue, waitTime, settings, notifier, logger)

	return &coreEnv{
		db:       db,
		clock:    clock,
		notifier: notifier,
		settings: settings,
		hours:    hours,
		queue:    queue,
		waitTime: waitTime,
		orders:   orders,
	}
}

// closeToday inserts a special-hours closure for the clock's current date.
func (env *coreEnv) closeToday(t *testing.T, reason string) {
	t.Helper()
	row := models.SpecialHours{
		Date:   DateString(env.clock.Now()),
		IsOpen: false,
		Reason: reason,
	}
	if err := env.db.Create(&row).Error; err != nil {
		t.Fatalf("Failed to insert special hours: %v", err)
	}
}

func (env *coreEnv) setSetting(t *testing.T, key, value string) {
	t.Helper()
	if err := env.db.Create(&models.Setting{Key: key, Value: value}).Error; err != nil {
		t.Fatalf("Failed to insert setting: %v", err)
	}
}

func itemsInput(studentID uint, items ...LineItemInput) *CreateOrderInput {
	return &CreateOrderInput{
		StudentID:   studentID,
		ServiceType: models.ServiceItems,
		Items:       items,
	}
}

func printingInput(studentID uint, pages, copies int) *CreateOrderInput {
	colorMode := "bw"
	paperSize := "A4"
	return &CreateOrderInput{
		StudentID:   studentID,
		ServiceType: models.ServicePrinting,
		PageCount:   &pages,
		Copies:      &copies,
		ColorMode:   &colorMode,
		PaperSize:   &paperSize,
	}
}
