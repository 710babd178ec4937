package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/campus-coop/coop-queue-api/models"
	"gorm.io/gorm"
)

// maxBusinessDayScan bounds the NextBusinessDay search so a fully closed
// schedule cannot loop forever.
const maxBusinessDayScan = 14

// OpenStatus is the result of a business-hours check.
type OpenStatus struct {
	Open                bool   `json:"open"`
	Reason              string `json:"reason,omitempty"` // set only when closed
	MinutesUntilClosing *int   `json:"minutes_until_closing,omitempty"`
}

// effectiveSchedule is the resolved schedule for one date: the
// special-hours override when one exists, otherwise the weekly row.
type effectiveSchedule struct {
	isOpen     bool
	openTime   string
	closeTime  string
	lunchStart *string
	lunchEnd   *string
	reason     string
}

// HoursService is the business-hours gate. It decides whether immediate
// orders may be created right now and resolves future business days.
// Pure reads: it never mutates schedule state.
type HoursService struct {
	db    *gorm.DB
	clock Clock
}

// NewHoursService creates an hours service backed by the given database and clock
func NewHoursService(db *gorm.DB, clock Clock) *HoursService {
	return &HoursService{db: db, clock: clock}
}

// IsOpenNow resolves today's effective schedule and reports whether the
// co-op is open at this instant. Open means now is within
// [opening, closing) and outside any lunch-break window.
func (h *HoursService) IsOpenNow() (*OpenStatus, error) {
	now := h.clock.Now()

	eff, err := h.effectiveFor(now)
	if err != nil {
		return nil, err
	}

	if !eff.isOpen {
		reason := eff.reason
		if reason == "" {
			reason = "Closed"
		}
		return &OpenStatus{Open: false, Reason: reason}, nil
	}

	openMin, err := parseClockTime(eff.openTime)
	if err != nil {
		return nil, fmt.Errorf("invalid opening time %q: %w", eff.openTime, err)
	}
	closeMin, err := parseClockTime(eff.closeTime)
	if err != nil {
		return nil, fmt.Errorf("invalid closing time %q: %w", eff.closeTime, err)
	}

	nowMin := now.Hour()*60 + now.Minute()
	if nowMin < openMin || nowMin >= closeMin {
		return &OpenStatus{Open: false, Reason: "Closed"}, nil
	}

	if eff.lunchStart != nil && eff.lunchEnd != nil {
		lunchStart, err := parseClockTime(*eff.lunchStart)
		if err != nil {
			return nil, fmt.Errorf("invalid lunch start %q: %w", *eff.lunchStart, err)
		}
		lunchEnd, err := parseClockTime(*eff.lunchEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid lunch end %q: %w", *eff.lunchEnd, err)
		}
		if nowMin >= lunchStart && nowMin < lunchEnd {
			return &OpenStatus{Open: false, Reason: "Lunch break"}, nil
		}
	}

	remaining := closeMin - nowMin
	return &OpenStatus{Open: true, MinutesUntilClosing: &remaining}, nil
}

// NextBusinessDay returns the first date after from whose effective
// schedule is open. The scan is bounded; ErrNoBusinessDayFound is a hard
// failure the caller must not paper over.
func (h *HoursService) NextBusinessDay(from time.Time) (time.Time, error) {
	day := from
	for i := 0; i < maxBusinessDayScan; i++ {
		day = day.AddDate(0, 0, 1)
		eff, err := h.effectiveFor(day)
		if err != nil {
			return time.Time{}, err
		}
		if eff.isOpen {
			return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()), nil
		}
	}
	return time.Time{}, ErrNoBusinessDayFound
}

// effectiveFor resolves the schedule in force on the given date. A
// special-hours row for the exact date takes precedence over the weekly
// row for its weekday; a modified-hours override without explicit times
// inherits the weekly times.
func (h *HoursService) effectiveFor(date time.Time) (*effectiveSchedule, error) {
	var weekly models.WeeklySchedule
	weeklyErr := h.db.Where("weekday = ?", int(date.Weekday())).First(&weekly).Error
	if weeklyErr != nil && !errors.Is(weeklyErr, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load weekly schedule: %w", weeklyErr)
	}

	var special models.SpecialHours
	err := h.db.Where("date = ?", DateString(date)).First(&special).Error
	switch {
	case err == nil:
		eff := &effectiveSchedule{
			isOpen:    special.IsOpen,
			openTime:  weekly.OpenTime,
			closeTime: weekly.CloseTime,
			reason:    special.Reason,
		}
		if special.OpenTime != nil {
			eff.openTime = *special.OpenTime
		}
		if special.CloseTime != nil {
			eff.closeTime = *special.CloseTime
		}
		// A date-specific override suspends the regular lunch break.
		return eff, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No override; fall through to the weekly row.
	default:
		return nil, fmt.Errorf("failed to load special hours: %w", err)
	}

	if errors.Is(weeklyErr, gorm.ErrRecordNotFound) {
		// No schedule row at all counts as closed.
		return &effectiveSchedule{isOpen: false}, nil
	}

	return &effectiveSchedule{
		isOpen:     weekly.IsOpen,
		openTime:   weekly.OpenTime,
		closeTime:  weekly.CloseTime,
		lunchStart: weekly.LunchStart,
		lunchEnd:   weekly.LunchEnd,
	}, nil
}

// parseClockTime converts "HH:MM" to minutes since midnight
func parseClockTime(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("out of range clock time %q", value)
	}
	return hours*60 + minutes, nil
}

var hoursServiceInstance *HoursService

// InitHoursService initializes the hours service
func InitHoursService(db *gorm.DB, clock Clock) *HoursService {
	hoursServiceInstance = NewHoursService(db, clock)
	return hoursServiceInstance
}

// GetHoursService returns the initialized hours service instance
func GetHoursService() *HoursService {
	return hoursServiceInstance
}
