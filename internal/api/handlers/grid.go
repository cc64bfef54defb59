package handlers

import (
	"net/http"

	"grid-backtest/internal/api/models"
	"grid-backtest/internal/grid"
	"grid-backtest/internal/report"

	"github.com/gin-gonic/gin"
)

// PreviewGrid handles GET /api/v1/grid
func PreviewGrid(c *gin.Context) {
	var req models.GridRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	mode := grid.ParseMode(req.Mode)
	levels, err := grid.Build(req.Lower, req.Upper, req.Count, mode)
	if err != nil {
		badRequest(c, "INVALID_GRID_CONFIG", err)
		return
	}
	c.JSON(http.StatusOK, models.GridResponse{
		Mode:   string(mode),
		Levels: report.RoundLevels(levels),
	})
}
