package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/clearhaze/streak-engine/internal/adapters/handler/http/middleware"
	"github.com/clearhaze/streak-engine/internal/core/domain"
	"github.com/clearhaze/streak-engine/internal/core/services"
)

type MetricsHandler struct {
	svc *services.MetricsService
}

func NewMetricsHandler(svc *services.MetricsService) *MetricsHandler {
	return &MetricsHandler{svc: svc}
}

type updateProfileRequest struct {
	QuitDate       time.Time       `json:"quit_date" binding:"required"`
	WeeklySpending decimal.Decimal `json:"weekly_spending"`
	FrequencyTier  string          `json:"frequency_tier" binding:"required"`
}

func (h *MetricsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/metrics", h.GetMetrics)
	router.GET("/profile", h.GetProfile)
	router.PUT("/profile", h.UpdateProfile)
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	metrics, err := h.svc.Current(c.Request.Context(), accountID, requestLocation(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *MetricsHandler) GetProfile(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *MetricsHandler) UpdateProfile(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	input := services.UpdateProfileInput{
		QuitDate:       req.QuitDate,
		WeeklySpending: req.WeeklySpending,
		FrequencyTier:  domain.FrequencyTier(req.FrequencyTier),
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), accountID, input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
