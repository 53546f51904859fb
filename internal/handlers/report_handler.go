package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-myshop-agent/internal/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetReports returns the dashboard summary. With from and to (YYYY-MM-DD)
// it also returns the sales of that period, both days included.
func (h *Handler) GetReports(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	state := s.State()
	resp := gin.H{"summary": reports.Summarize(state)}

	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr != "" || toStr != "" {
		from, err := time.Parse(time.DateOnly, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, use YYYY-MM-DD"})
			return
		}
		to, err := time.Parse(time.DateOnly, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, use YYYY-MM-DD"})
			return
		}
		if to.Before(from) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
			return
		}
		resp["period"] = reports.SalesBetween(state, from, to.Add(24*time.Hour-time.Nanosecond))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetStockValuation(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reports.StockValuation(s.State().Inventory))
}

func (h *Handler) ExportReport(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.ExportWorkbook(&buf, s.State(), s.Profile()); err != nil {
		h.fail(c, err)
		return
	}
	filename := fmt.Sprintf("myshop-report-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
