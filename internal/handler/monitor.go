package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"exchange-diary/internal/monitor"
)

type MonitorHandler struct {
	Monitor *monitor.Monitor
	Logger  *zap.Logger
}

func (h *MonitorHandler) Register(r *gin.Engine) {
	r.POST("/start", h.start)
	r.POST("/stop", h.stop)
	r.GET("/status", h.status)
}

// flexFloat accepts a JSON number, a numeric string, an empty string, or
// null; the frontend sends limits straight out of text inputs.
type flexFloat struct {
	set   bool
	value float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
	case float64:
		f.set, f.value = true, v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid limit value %q", v)
		}
		f.set, f.value = true, parsed
	default:
		return fmt.Errorf("invalid limit value %s", string(data))
	}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

type startRequest struct {
	UpperLimit     flexFloat `json:"upperLimit"`
	LowerLimit     flexFloat `json:"lowerLimit"`
	TelegramToken  string    `json:"telegramToken"`
	TelegramChatID string    `json:"telegramChatId"`
}

// @Summary Start threshold monitoring
// @Tags monitor
// @Router /start [post]
func (h *MonitorHandler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid limit values: %v", err)
		return
	}

	err := h.Monitor.Start(monitor.Settings{
		UpperLimit:     req.UpperLimit.ptr(),
		LowerLimit:     req.LowerLimit.ptr(),
		TelegramToken:  strings.TrimSpace(req.TelegramToken),
		TelegramChatID: strings.TrimSpace(req.TelegramChatID),
	})
	switch {
	case errors.Is(err, monitor.ErrAlreadyRunning):
		c.String(http.StatusBadRequest, "Monitoring is already running")
	case errors.Is(err, monitor.ErrInvalidConfig):
		c.String(http.StatusBadRequest, "Telegram token and chat ID are required")
	case err != nil:
		if h.Logger != nil {
			h.Logger.Error("start monitoring failed", zap.Error(err))
		}
		c.String(http.StatusInternalServerError, "Error starting monitoring: %v", err)
	default:
		c.String(http.StatusOK, "Monitoring started")
	}
}

// @Summary Stop threshold monitoring
// @Tags monitor
// @Router /stop [post]
func (h *MonitorHandler) stop(c *gin.Context) {
	if err := h.Monitor.Stop(); err != nil {
		c.String(http.StatusBadRequest, "Monitoring is not running")
		return
	}
	c.String(http.StatusOK, "Monitoring stopped")
}

// @Summary Monitor status with redacted settings
// @Tags monitor
// @Router /status [get]
func (h *MonitorHandler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.Monitor.Status())
}
