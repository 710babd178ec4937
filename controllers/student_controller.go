package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-coop/coop-queue-api/config"
	"github.com/campus-coop/coop-queue-api/middleware"
	"github.com/campus-coop/coop-queue-api/models"
	"github.com/campus-coop/coop-queue-api/services"
)

// CreateStudentRequest represents the optional profile fields supplied at signup
type CreateStudentRequest struct {
	StudentNumber string `json:"student_number"`
}

// CreateStudent handles POST /api/v1/students - bootstraps a profile
// from the identity provider's userinfo on first login
func CreateStudent(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user ID from token",
			},
		})
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	var req CreateStudentRequest
	if c.Request.ContentLength > 0 {
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
	}

	cfg := config.GetConfig()
	auth0Service := services.NewAuth0Service(cfg)
	userInfo, err := auth0Service.GetUserInfo(accessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH0_ERROR",
				"message": "Failed to fetch user information from Auth0",
			},
		})
		return
	}

	if userInfo.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_EMAIL",
				"message": "Email not provided by Auth0",
			},
		})
		return
	}

	db := config.GetDB()

	// Idempotent: a repeated signup returns the existing profile
	var existing models.Student
	if err := db.Where("auth0_id = ?", auth0ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    existing,
		})
		return
	}

	student := models.Student{
		Auth0ID:       auth0ID,
		StudentNumber: req.StudentNumber,
		Name:          userInfo.Name,
		Email:         userInfo.Email,
		Role:          "student",
	}
	if err := db.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create student profile",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    student,
	})
}

// GetMyProfile handles GET /api/v1/students/me - returns the caller's profile
func GetMyProfile(c *gin.Context) {
	student, ok := currentStudent(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    student,
	})
}
