package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clearhaze/streak-engine/internal/adapters/handler/http/middleware"
	"github.com/clearhaze/streak-engine/internal/core/domain"
	"github.com/clearhaze/streak-engine/internal/core/services"
)

// timezoneHeader carries the client's IANA zone name. Day keys are computed
// in whatever zone the device reports at request time; a previously recorded
// check-in is never re-keyed.
const timezoneHeader = "X-Timezone"

type CheckInHandler struct {
	svc *services.CheckInService
}

func NewCheckInHandler(svc *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{
		svc: svc,
	}
}

func (h *CheckInHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/checkins", h.CheckIn)
	router.GET("/checkins/total", h.Total)
	router.GET("/streak", h.Streak)
	router.DELETE("/data", h.DeleteData)
}

func (h *CheckInHandler) CheckIn(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	day, state, err := h.svc.CheckIn(c.Request.Context(), accountID, requestLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"day":    day,
		"streak": state,
	})
}

func (h *CheckInHandler) Streak(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	state, err := h.svc.Streak(c.Request.Context(), accountID, requestLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *CheckInHandler) Total(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	total, err := h.svc.TotalDays(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_days": total})
}

func (h *CheckInHandler) DeleteData(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.svc.DeleteData(c.Request.Context(), accountID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// requestLocation resolves the client's timezone header; invalid or absent
// values degrade to UTC rather than erroring.
func requestLocation(c *gin.Context) *time.Location {
	name := c.GetHeader(timezoneHeader)
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[HTTP] Unknown timezone %q, falling back to UTC", name)
		return time.UTC
	}
	return loc
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found, complete onboarding first"})

	case errors.Is(err, domain.ErrMonthOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "month is outside the navigable range"})

	case errors.Is(err, domain.ErrInvalidMonth):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month format, expected YYYY-MM"})

	case errors.Is(err, domain.ErrInvalidFrequencyTier) || errors.Is(err, domain.ErrNegativeSpending):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
