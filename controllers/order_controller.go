package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campus-coop/coop-queue-api/config"
	"github.com/campus-coop/coop-queue-api/models"
	"github.com/campus-coop/coop-queue-api/services"
)

// LineItemRequest is one item line in an order submission
type LineItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	ServiceType string            `json:"service_type" binding:"required,oneof=items printing"`
	Items       []LineItemRequest `json:"items" binding:"omitempty,dive"`
	Notes       string            `json:"notes"`
	PageCount   *int              `json:"page_count" binding:"omitempty,gt=0"`
	Copies      *int              `json:"copies" binding:"omitempty,gt=0"`
	ColorMode   *string           `json:"color_mode" binding:"omitempty,oneof=bw color"`
	PaperSize   *string           `json:"paper_size"`
}

// UpdateOrderStatusRequest represents the request body for a staff status update
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders - submits a new order
func CreateOrder(c *gin.Context) {
	student, ok := currentStudent(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
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

	input := &services.CreateOrderInput{
		StudentID:   student.ID,
		ServiceType: req.ServiceType,
		Notes:       req.Notes,
		PageCount:   req.PageCount,
		Copies:      req.Copies,
		ColorMode:   req.ColorMode,
		PaperSize:   req.PaperSize,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.LineItemInput{
			Name:     item.Name,
			Quantity: item.Quantity,
		})
	}

	order, estimate, err := services.GetOrderService().Create(input)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"order_id":          order.ID,
			"reference_number":  order.ReferenceNumber,
			"queue_number":      order.QueueNumber,
			"status":            order.Status,
			"queue_date":        order.QueueDate,
			"scheduled_date":    order.ScheduledDate,
			"estimated_minutes": estimate.EstimatedMinutes,
			"queue_position":    estimate.QueuePosition,
		},
	})
}

// ListOrders handles GET /api/v1/orders - lists orders with pagination.
// Students see their own orders; staff see everything.
func ListOrders(c *gin.Context) {
	student, ok := currentStudent(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	db := config.GetDB()

	countQuery := db.Model(&models.Order{})
	if !student.IsStaff() {
		countQuery = countQuery.Where("student_id = ?", student.ID)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		respondOrderError(c, err)
		return
	}

	listQuery := db.Preload("Items").Preload("Student")
	if !student.IsStaff() {
		listQuery = listQuery.Where("student_id = ?", student.ID)
	}

	var orders []models.Order
	if err := listQuery.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		respondOrderError(c, err)
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

// GetOrder handles GET /api/v1/orders/:id - fetches one order.
// Students can only see their own orders.
func GetOrder(c *gin.Context) {
	student, ok := currentStudent(c)
	if !ok {
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Items").Preload("Student").First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !student.IsStaff() && order.StudentID != student.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to access this order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CheckInOrder handles POST /api/v1/orders/:id/check-in - activates a
// scheduled order on arrival. Safe to call repeatedly.
func CheckInOrder(c *gin.Context) {
	student, ok := currentStudent(c)
	if !ok {
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, estimate, err := services.GetOrderService().CheckIn(orderID, student.ID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"queue_number":      order.QueueNumber,
			"status":            order.Status,
			"wait_time":         estimate.EstimatedMinutes,
			"queue_position":    estimate.QueuePosition,
			"estimated_minutes": estimate.EstimatedMinutes,
		},
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - cancels a pending
// or scheduled order and restocks its items
func CancelOrder(c *gin.Context) {
	student, ok := currentStudent(c)
	if !ok {
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	result, err := services.GetOrderService().Cancel(orderID, student.ID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetWaitTime handles GET /api/v1/orders/:id/wait-time - refreshes the
// wait projection for one of the caller's orders
func GetWaitTime(c *gin.Context) {
	student, ok := currentStudent(c)
	if !ok {
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	info, err := services.GetOrderService().GetWaitTime(orderID, student.ID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    info,
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - staff-only
// forward transition through the status table
func UpdateOrderStatus(c *gin.Context) {
	staff, ok := requireStaff(c)
	if !ok {
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
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

	order, err := services.GetOrderService().UpdateStatus(orderID, req.Status, staff.ID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order_id":   order.ID,
			"new_status": order.Status,
		},
	})
}

// parseOrderID reads the :id path parameter. On failure it writes the
// error response and returns false.
func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid order id",
			},
		})
		return 0, false
	}
	return uint(id), true
}
