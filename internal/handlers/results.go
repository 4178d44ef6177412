package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"cognitrain-go/internal/repository"
)

type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

// ListResults returns the user's result history, optionally narrowed to
// one game via ?game=.
func (h *ResultsHandler) ListResults(c *gin.Context) {
	userID := currentUserID(c)
	results, err := repository.ListResults(c, userID, c.Query("game"))
	if err != nil {
		h.log.Error("Failed to list results", zap.Error(err), zap.Int("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetResult returns one result with its full trial breakdown.
func (h *ResultsHandler) GetResult(c *gin.Context) {
	userID := currentUserID(c)
	resultID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result id"})
		return
	}

	result, rows, err := repository.GetResult(c, userID, resultID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "trials": rows})
}

// GetProgress returns the user's per-domain aggregates.
func (h *ResultsHandler) GetProgress(c *gin.Context) {
	userID := currentUserID(c)
	progress, err := repository.GetProgress(c, userID)
	if err != nil {
		h.log.Error("Failed to load progress", zap.Error(err), zap.Int("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// GetProgressChart returns echarts options for a score-over-time line
// chart, per game (?game=) or per domain (?domain=).
func (h *ResultsHandler) GetProgressChart(c *gin.Context) {
	userID := currentUserID(c)
	gameName := c.Query("game")
	domain := c.Query("domain")

	var data []repository.TimelineDataPoint
	var label string
	var err error
	switch {
	case gameName != "":
		label = gameName
		data, err = repository.GetScoreTimeline(c, userID, gameName)
	case domain != "":
		label = domain
		data, err = repository.GetDomainTimeline(c, userID, domain)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "game or domain query parameter is required"})
		return
	}
	if err != nil {
		h.log.Error("Failed to get score timeline", zap.Error(err),
			zap.String("game", gameName), zap.String("domain", domain))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chart data"})
		return
	}

	chart := generateScoreChart(data, label)
	c.JSON(http.StatusOK, chart.JSON())
}

func generateScoreChart(data []repository.TimelineDataPoint, label string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Score Over Time",
			Subtitle: label,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0)
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries(label, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
