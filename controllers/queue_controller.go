package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-coop/coop-queue-api/services"
)

// QueueBoard handles GET /api/v1/queue/board - the public projection of
// today's queue. No authentication: this drives the lobby display.
func QueueBoard(c *gin.Context) {
	orders, err := services.GetOrderService().QueueBoard()
	if err != nil {
		respondOrderError(c, err)
		return
	}

	board := make([]gin.H, 0, len(orders))
	for i := range orders {
		info, err := services.GetWaitTimeService().Poll(&orders[i])
		if err != nil {
			respondOrderError(c, err)
			return
		}
		board = append(board, gin.H{
			"queue_number": orders[i].QueueNumber,
			"status":       orders[i].Status,
			"wait":         info.EstimatedMinutes,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    board,
	})
}

// HoursStatus handles GET /api/v1/hours - whether the co-op is open right now
func HoursStatus(c *gin.Context) {
	status, err := services.GetHoursService().IsOpenNow()
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

// ResetQueue handles POST /api/v1/queue/reset - restarts today's queue
// numbering from 1. Staff only, at most once per calendar day.
func ResetQueue(c *gin.Context) {
	staff, ok := requireStaff(c)
	if !ok {
		return
	}

	today := services.DateString(services.GetClock().Now())
	if err := services.GetQueueService().ResetDailyQueue(today, staff.ID); err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"reset_date": today,
		},
	})
}
