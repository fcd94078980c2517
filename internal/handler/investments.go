package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"exchange-diary/internal/ledger"
)

type InvestmentHandler struct {
	Service *ledger.Service
	Logger  *zap.Logger
}

func (h *InvestmentHandler) Register(r *gin.Engine) {
	group := r.Group("/api/investments")
	group.GET("", h.list)
	group.POST("", h.add)
	group.DELETE("", h.deleteProfitOrAll)
	group.DELETE("/:id", h.deleteInvestment)
}

// @Summary List standing investments, realized profits and summary
// @Tags investments
// @Router /api/investments [get]
func (h *InvestmentHandler) list(c *gin.Context) {
	result, err := h.Service.List(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("list investments failed", zap.Error(err))
		}
		fail(c, http.StatusInternalServerError, "server error")
		return
	}
	c.JSON(http.StatusOK, result)
}

type addRequest struct {
	Records []ledger.Record `json:"records"`
	Source  string          `json:"source"`
}

// @Summary Bulk-insert candidate records; each gets its own outcome
// @Tags investments
// @Router /api/investments [post]
func (h *InvestmentHandler) add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Records == nil {
		fail(c, http.StatusBadRequest, "records array required")
		return
	}

	results := h.Service.AddRecords(c.Request.Context(), req.Records, req.Source)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
	})
}

// @Summary Delete one profit entry, or wipe everything when profitId is omitted
// @Tags investments
// @Router /api/investments [delete]
func (h *InvestmentHandler) deleteProfitOrAll(c *gin.Context) {
	profitID := strings.TrimSpace(c.Query("profitId"))
	ctx := c.Request.Context()

	if profitID == "" {
		if err := h.Service.DeleteAll(ctx); err != nil {
			if h.Logger != nil {
				h.Logger.Error("full wipe failed", zap.Error(err))
			}
			fail(c, http.StatusInternalServerError, "failed to delete data")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "all records deleted",
		})
		return
	}

	err := h.Service.DeleteProfit(ctx, profitID)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "profit record not found",
		})
	case err != nil:
		if h.Logger != nil {
			h.Logger.Error("delete profit failed", zap.Error(err))
		}
		fail(c, http.StatusInternalServerError, "failed to delete data")
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "profit record deleted",
		})
	}
}

// @Summary Delete one investment entry, cascading referencing profits
// @Tags investments
// @Router /api/investments/{id} [delete]
func (h *InvestmentHandler) deleteInvestment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	outcome, err := h.Service.DeleteInvestment(c.Request.Context(), id)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "record not found",
		})
	case err != nil:
		if h.Logger != nil {
			h.Logger.Error("delete investment failed", zap.Error(err))
		}
		fail(c, http.StatusInternalServerError, "failed to delete record")
	default:
		message := fmt.Sprintf("%s record deleted", outcome.Type)
		if outcome.CascadedProfits > 0 {
			message += " (related profit records also removed)"
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": message,
		})
	}
}
