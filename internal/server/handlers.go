package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"daily-digits/internal/logger"
	"daily-digits/internal/service"

	"github.com/gin-gonic/gin"
)

// HealthChecker 健康检查依赖的存储操作
type HealthChecker interface {
	Ping(ctx context.Context) error
	CountRecords(ctx context.Context) (int, error)
}

// BotInfoProvider 提供机器人身份信息，由 *telegram.Bot 实现
type BotInfoProvider interface {
	GetBotInfo() map[string]interface{}
}

var errNotWholeNumber = errors.New("digit is not a whole number")

// digitValue 接受 JSON 数字、数字字符串或表单值
type digitValue int

// UnmarshalJSON 解析 150 或 "150"
func (d *digitValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	return d.UnmarshalParam(raw)
}

// UnmarshalParam 解析表单值
func (d *digitValue) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		return errors.New("digit is empty")
	}
	v, err := strconv.Atoi(param)
	if err != nil {
		return errNotWholeNumber
	}
	*d = digitValue(v)
	return nil
}

func (d *digitValue) intPtr() *int {
	if d == nil {
		return nil
	}
	v := int(*d)
	return &v
}

// resultRequest POST /api/results 请求体，支持 JSON 与 urlencoded 表单
type resultRequest struct {
	Date   string      `json:"date" form:"date"`
	Digit1 *digitValue `json:"digit1" form:"digit1"`
	Digit2 *digitValue `json:"digit2" form:"digit2"`
}

// Handlers API处理器
type Handlers struct {
	svc    *service.PredictionService
	health HealthChecker
	bot    BotInfoProvider
}

// getPredictions GET /api/predictions
func (h *Handlers) getPredictions(c *gin.Context) {
	predictions, err := h.svc.GetPredictions(c.Request.Context())
	if err != nil {
		logger.Errorf("Error getting predictions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate predictions"})
		return
	}
	c.JSON(http.StatusOK, predictions)
}

// postResults POST /api/results
func (h *Handlers) postResults(c *gin.Context) {
	var req resultRequest
	if err := c.ShouldBind(&req); err != nil {
		if errors.Is(err, errNotWholeNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Digits must be whole numbers"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date, digit1, and digit2 are required"})
		return
	}

	record, err := h.svc.SaveResults(c.Request.Context(), req.Date, req.Digit1.intPtr(), req.Digit2.intPtr())
	if err != nil {
		if service.IsValidationError(err) {
			logger.Debugf("Rejected results submission: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("Error saving results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Results saved successfully", "data": record})
}

// getHistory GET /api/history?limit=N
func (h *Handlers) getHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = service.DefaultHistoryLimit
	}

	records, err := h.svc.GetHistory(c.Request.Context(), limit)
	if err != nil {
		logger.Errorf("Error getting history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// healthz GET /healthz
func (h *Handlers) healthz(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.health.Ping(ctx); err != nil {
		logger.Warnf("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "unreachable"})
		return
	}

	count, err := h.health.CountRecords(ctx)
	if err != nil {
		logger.Warnf("Health check count failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "database": "query failed"})
		return
	}

	min, max := h.svc.DigitRange()
	body := gin.H{
		"status":    "ok",
		"records":   count,
		"digit_min": min,
		"digit_max": max,
		"cache":     h.svc.CacheStats(),
	}
	if h.bot != nil {
		body["telegram"] = h.bot.GetBotInfo()
	}
	c.JSON(http.StatusOK, body)
}
