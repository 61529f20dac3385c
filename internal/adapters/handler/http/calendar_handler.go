package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clearhaze/streak-engine/internal/adapters/handler/http/middleware"
	"github.com/clearhaze/streak-engine/internal/core/domain"
	"github.com/clearhaze/streak-engine/internal/core/services"
)

type CalendarHandler struct {
	svc   *services.CalendarService
	clock func() time.Time
}

func NewCalendarHandler(svc *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{svc: svc, clock: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (h *CalendarHandler) WithClock(clock func() time.Time) *CalendarHandler {
	h.clock = clock
	return h
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/calendar", h.GetMonth)
}

func (h *CalendarHandler) GetMonth(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	loc := requestLocation(c)

	monthStr := c.Query("month")
	var month domain.Month
	if monthStr == "" {
		month = domain.MonthOf(domain.DayKeyFor(h.clock(), loc))
	} else {
		var err error
		month, err = domain.ParseMonth(monthStr)
		if err != nil {
			handleError(c, err)
			return
		}
	}

	view, err := h.svc.Project(c.Request.Context(), accountID, month, loc)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
