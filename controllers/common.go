package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-coop/coop-queue-api/config"
	"github.com/campus-coop/coop-queue-api/logging"
	"github.com/campus-coop/coop-queue-api/middleware"
	"github.com/campus-coop/coop-queue-api/models"
	"github.com/campus-coop/coop-queue-api/services"
)

// currentStudent resolves the authenticated student's profile row. On
// failure it writes the error response and returns false.
func currentStudent(c *gin.Context) (*models.Student, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var student models.Student
	if err := db.Where("auth0_id = ?", auth0ID).First(&student).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STUDENT_NOT_FOUND",
				"message": "Student profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &student, true
}

// requireStaff resolves the authenticated profile and rejects non-staff
// callers. On failure it writes the error response and returns false.
func requireStaff(c *gin.Context) (*models.Student, bool) {
	student, ok := currentStudent(c)
	if !ok {
		return nil, false
	}
	if !student.IsStaff() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only staff can perform this action",
			},
		})
		return nil, false
	}
	return student, true
}

// respondOrderError maps lifecycle errors to user-facing responses.
// State conflicts keep their specific reason; anything unrecognized is
// logged in full and surfaced as a generic server error.
func respondOrderError(c *gin.Context, err error) {
	var cannotCancel *services.CannotCancelError
	var insufficientStock *services.InsufficientStockError

	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": err.Error()},
		})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ORDER_NOT_FOUND", "message": "Order not found"},
		})
	case errors.Is(err, services.ErrActiveOrderExists):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "ACTIVE_ORDER_EXISTS", "message": err.Error()},
		})
	case errors.Is(err, services.ErrServiceClosed):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "SERVICE_CLOSED", "message": err.Error()},
		})
	case errors.Is(err, services.ErrNoBusinessDayFound):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   gin.H{"code": "NO_BUSINESS_DAY_FOUND", "message": err.Error()},
		})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_STATE", "message": err.Error()},
		})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_STATUS", "message": err.Error()},
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_TRANSITION", "message": err.Error()},
		})
	case errors.Is(err, services.ErrQueueAlreadyReset):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "QUEUE_ALREADY_RESET", "message": err.Error()},
		})
	case errors.As(err, &cannotCancel):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "CANNOT_CANCEL", "message": cannotCancel.Error()},
		})
	case errors.As(err, &insufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INSUFFICIENT_STOCK", "message": insufficientStock.Error()},
		})
	default:
		logging.GetSugaredLogger().Errorw("order operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "SERVER_ERROR", "message": "An internal error occurred"},
		})
	}
}
