package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-coop/coop-queue-api/models"
)

func TestUpsertWeeklySchedule(t *testing.T) {
	db, _ := setupQueueCore(t)
	createTestStudent(t, db, "auth0|staff", "staff")

	router := setupTestRouter()
	router.PUT("/schedule/:weekday", mockAuthMiddleware("auth0|staff", "staff", "token"), UpsertWeeklySchedule)

	lunchStart, lunchEnd := "12:00", "12:30"
	w := postJSON(t, router, http.MethodPut, "/schedule/2", UpsertWeeklyScheduleRequest{
		IsOpen:     true,
		OpenTime:   "10:00",
		CloseTime:  "18:00",
		LunchStart: &lunchStart,
		LunchEnd:   &lunchEnd,
	})
	assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

	// The upsert replaced the seeded Tuesday row
	var row models.WeeklySchedule
	require.NoError(t, db.Where("weekday = ?", 2).First(&row).Error)
	assert.Equal(t, "10:00", row.OpenTime)
	assert.Equal(t, "18:00", row.CloseTime)
	require.NotNil(t, row.LunchStart)
	assert.Equal(t, "12:00", *row.LunchStart)

	var count int64
	db.Model(&models.WeeklySchedule{}).Where("weekday = ?", 2).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpsertWeeklySchedule_InvalidWeekday(t *testing.T) {
	db, _ := setupQueueCore(t)
	createTestStudent(t, db, "auth0|staff", "staff")

	router := setupTestRouter()
	router.PUT("/schedule/:weekday", mockAuthMiddleware("auth0|staff", "staff", "token"), UpsertWeeklySchedule)

	for _, weekday := range []string{"7", "-1", "monday"} {
		w := postJSON(t, router, http.MethodPut, "/schedule/"+weekday, UpsertWeeklyScheduleRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code, "weekday %s", weekday)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, decodeResponse(t, w)))
	}
}

func TestUpsertWeeklySchedule_StaffOnly(t *testing.T) {
	db, _ := setupQueueCore(t)
	createTestStudent(t, db, "auth0|alice", "student")

	router := setupTestRouter()
	router.PUT("/schedule/:weekday", mockAuthMiddleware("auth0|alice", "student", "token"), UpsertWeeklySchedule)

	w := postJSON(t, router, http.MethodPut, "/schedule/2", UpsertWeeklyScheduleRequest{IsOpen: false})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpsertSpecialHours(t *testing.T) {
	db, _ := setupQueueCore(t)
	createTestStudent(t, db, "auth0|staff", "staff")

	router := setupTestRouter()
	router.POST("/schedule/special", mockAuthMiddleware("auth0|staff", "staff", "token"), UpsertSpecialHours)

	w := postJSON(t, router, http.MethodPost, "/schedule/special", UpsertSpecialHoursRequest{
		Date:   "2026-03-17",
		IsOpen: false,
		Reason: "Spring break",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Posting the same date again updates in place
	w = postJSON(t, router, http.MethodPost, "/schedule/special", UpsertSpecialHoursRequest{
		Date:   "2026-03-17",
		IsOpen: false,
		Reason: "Spring break (extended)",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var rows []models.SpecialHours
	require.NoError(t, db.Where("date = ?", "2026-03-17").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Spring break (extended)", rows[0].Reason)
}

func TestUpsertSpecialHours_MissingDate(t *testing.T) {
	db, _ := setupQueueCore(t)
	createTestStudent(t, db, "auth0|staff", "staff")

	router := setupTestRouter()
	router.POST("/schedule/special", mockAuthMiddleware("auth0|staff", "staff", "token"), UpsertSpecialHours)

	w := postJSON(t, router, http.MethodPost, "/schedule/special", UpsertSpecialHoursRequest{Reason: "No date"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, decodeResponse(t, w)))
}
