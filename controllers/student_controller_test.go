package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campus-coop/coop-queue-api/config"
	"github.com/campus-coop/coop-queue-api/logging"
	"github.com/campus-coop/coop-queue-api/middleware"
	"github.com/campus-coop/coop-queue-api/models"
	"github.com/campus-coop/coop-queue-api/services"
)

// testOpenTime is mid-morning on a day every handler test keeps open.
var testOpenTime = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

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

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupQueueCore wires the global service instances against a fresh test
// database with a fixed clock, the way main.go wires them at boot.
func setupQueueCore(t *testing.T) (*gorm.DB, *services.MockClock) {
	t.Helper()

	db := setupTestDB(t)
	config.SetDB(db)

	clock := services.NewMockClock(testOpenTime)
	services.SetClock(clock)

	logger := logging.GetSugaredLogger()
	settings := services.InitSettingsService(db)
	hours := services.InitHoursService(db, clock)
	queue := services.InitQueueService(db)
	waitTime := services.InitWaitTimeService(db, clock, settings)
	notifier := services.InitNotificationService(services.NewMockNotificationService())
	services.InitOrderService(db, clock, hours, queue, waitTime, settings, notifier, logger)

	// Open every day 09:00-17:00 so tests control closures explicitly
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

	return db, clock
}

func createTestStudent(t *testing.T, db *gorm.DB, auth0ID, role string) *models.Student {
	t.Helper()
	student := &models.Student{
		Auth0ID:       auth0ID,
		StudentNumber: "SN-" + auth0ID,
		Name:          "Student " + auth0ID,
		Email:         auth0ID + "@campus.test",
		Role:          role,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("Failed to create test student: %v", err)
	}
	return student
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		token := authHeader[7:] // Remove "Bearer " prefix

		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware does.
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)

		mockClaims := &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{
				Role: role,
			},
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return response
}

func errorCode(t *testing.T, response map[string]interface{}) string {
	t.Helper()
	errorData, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no error object: %v", response)
	}
	return errorData["code"].(string)
}

func TestCreateStudent(t *testing.T) {
	tests := []struct {
		name           string
		auth0ID        string
		email          string
		studentName    string
		accessToken    string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Create student successfully",
			auth0ID:        "auth0|alice",
			email:          "alice@campus.test",
			studentName:    "Alice Chen",
			accessToken:    "token-alice",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Fail with missing email",
			auth0ID:        "auth0|noemail",
			email:          "",
			studentName:    "No Email",
			accessToken:    "token-noemail",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_EMAIL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := setupQueueCore(t)

			userInfoMap := map[string]*services.Auth0UserInfo{
				tt.accessToken: {
					Sub:   tt.auth0ID,
					Email: tt.email,
					Name:  tt.studentName,
				},
			}
			mockServer := setupMockAuth0Server(userInfoMap)
			defer mockServer.Close()

			originalConfig := config.GetConfig()
			defer config.SetConfig(originalConfig)
			config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

			router := setupTestRouter()
			router.POST("/students", mockAuthMiddleware(tt.auth0ID, "student", tt.accessToken), CreateStudent)

			req := httptest.NewRequest(http.MethodPost, "/students", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())

			response := decodeResponse(t, w)
			if tt.expectedStatus == http.StatusCreated {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, tt.auth0ID, data["auth0_id"])
				assert.Equal(t, tt.email, data["email"])
				assert.Equal(t, tt.studentName, data["name"])
				assert.Equal(t, "student", data["role"])

				var count int64
				db.Model(&models.Student{}).Count(&count)
				assert.Equal(t, int64(1), count)
			} else {
				assert.False(t, response["success"].(bool))
				assert.Equal(t, tt.expectedCode, errorCode(t, response))
			}
		})
	}
}

func TestCreateStudent_RepeatedSignupReturnsExistingProfile(t *testing.T) {
	db, _ := setupQueueCore(t)
	existing := createTestStudent(t, db, "auth0|alice", "student")

	accessToken := "token-alice"
	mockServer := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		accessToken: {
			Sub:   "auth0|alice",
			Email: "changed@campus.test",
			Name:  "Changed Name",
		},
	})
	defer mockServer.Close()

	originalConfig := config.GetConfig()
	defer config.SetConfig(originalConfig)
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})

	router := setupTestRouter()
	router.POST("/students", mockAuthMiddleware("auth0|alice", "student", accessToken), CreateStudent)

	req := httptest.NewRequest(http.MethodPost, "/students", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	// The original profile wins over fresh userinfo
	assert.Equal(t, existing.Email, data["email"])

	var count int64
	db.Model(&models.Student{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetMyProfile_Success(t *testing.T) {
	db, _ := setupQueueCore(t)
	createTestStudent(t, db, "auth0|alice", "student")

	router := setupTestRouter()
	router.GET("/students/me", mockAuthMiddleware("auth0|alice", "student", "token"), GetMyProfile)

	req := httptest.NewRequest(http.MethodGet, "/students/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "alice@campus.test", data["email"])
	assert.Equal(t, "student", data["role"])
}

func TestGetMyProfile_StudentNotFound(t *testing.T) {
	setupQueueCore(t)

	router := setupTestRouter()
	router.GET("/students/me", mockAuthMiddleware("auth0|ghost", "student", "token"), GetMyProfile)

	req := httptest.NewRequest(http.MethodGet, "/students/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	response := decodeResponse(t, w)
	assert.False(t, response["success"].(bool))
	assert.Equal(t, "STUDENT_NOT_FOUND", errorCode(t, response))
}
