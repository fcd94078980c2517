package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"exchange-diary/internal/rate"
)

type RateHandler struct {
	Source rate.Source
}

func (h *RateHandler) Register(r *gin.Engine) {
	r.GET("/rate", h.rate)
}

// @Summary One-shot USD/KRW rate fetch
// @Tags rate
// @Router /rate [get]
func (h *RateHandler) rate(c *gin.Context) {
	value, err := h.Source.Fetch(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Error fetching exchange rate")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": value})
}
