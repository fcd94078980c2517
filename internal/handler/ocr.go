package handler

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"exchange-diary/internal/ocr"
)

type OCRHandler struct {
	Extractor ocr.Extractor
	Logger    *zap.Logger
}

func (h *OCRHandler) Register(r *gin.Engine) {
	r.POST("/api/ocr", h.extract)
}

type ocrRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// @Summary Extract candidate records from a PNG screenshot
// @Tags ocr
// @Router /api/ocr [post]
func (h *OCRHandler) extract(c *gin.Context) {
	var req ocrRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageBase64) == "" {
		fail(c, http.StatusBadRequest, "No image data provided")
		return
	}

	payload := req.ImageBase64
	// Tolerate data-URL payloads from canvas exports.
	if idx := strings.Index(payload, "base64,"); idx >= 0 {
		payload = payload[idx+len("base64,"):]
	}
	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid image encoding")
		return
	}

	result, err := h.Extractor.Extract(c.Request.Context(), image)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("ocr extraction failed", zap.Error(err))
		}
		fail(c, http.StatusInternalServerError, "ocr extraction failed")
		return
	}
	c.JSON(http.StatusOK, result)
}
