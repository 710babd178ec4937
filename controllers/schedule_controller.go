package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/campus-coop/coop-queue-api/config"
	"github.com/campus-coop/coop-queue-api/models"
)

// UpsertWeeklyScheduleRequest represents the request body for updating one weekday row
type UpsertWeeklyScheduleRequest struct {
	IsOpen     bool    `json:"is_open"`
	OpenTime   string  `json:"open_time"`
	CloseTime  string  `json:"close_time"`
	LunchStart *string `json:"lunch_start"`
	LunchEnd   *string `json:"lunch_end"`
}

// UpsertSpecialHoursRequest represents the request body for a date override
type UpsertSpecialHoursRequest struct {
	Date      string  `json:"date" binding:"required"`
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`
	Reason    string  `json:"reason"`
}

// UpsertWeeklySchedule handles PUT /api/v1/schedule/:weekday - staff-only
// update of one weekday's default hours
func UpsertWeeklySchedule(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}

	weekday, err := strconv.Atoi(c.Param("weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Weekday must be between 0 (Sunday) and 6 (Saturday)",
			},
		})
		return
	}

	var req UpsertWeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	row := models.WeeklySchedule{
		Weekday:    weekday,
		IsOpen:     req.IsOpen,
		OpenTime:   req.OpenTime,
		CloseTime:  req.CloseTime,
		LunchStart: req.LunchStart,
		LunchEnd:   req.LunchEnd,
	}

	db := config.GetDB()
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "weekday"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    row,
	})
}

// UpsertSpecialHours handles POST /api/v1/schedule/special - staff-only
// holiday closure or modified hours for one date
func UpsertSpecialHours(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}

	var req UpsertSpecialHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	row := models.SpecialHours{
		Date:      req.Date,
		IsOpen:    req.IsOpen,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
		Reason:    req.Reason,
	}

	db := config.GetDB()
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    row,
	})
}
