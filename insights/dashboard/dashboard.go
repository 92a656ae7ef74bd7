// Package dashboard serves a read-only HTTP view over a pipeline's artifact directory.
package dashboard

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/fileutils"
	"github.com/theimaginaryfoundation/audience-pulse/insights/logging"
	"github.com/theimaginaryfoundation/audience-pulse/insights/metrics"
	"github.com/theimaginaryfoundation/audience-pulse/insights/stage"
)

type Handler struct {
	layout stage.Layout
	log    *logrus.Logger
}

func NewHandler(layout stage.Layout, log *logrus.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{layout: layout, log: log}
}

// DashboardResponse is the payload of GET /api/dashboard.
type DashboardResponse struct {
	KPI              insights.KPIReport        `json:"kpi"`
	Comments         []insights.AnalysisResult `json:"comments"`
	ExecutiveSummary string                    `json:"executiveSummary"`
}

// NewRouter wires every route. mc may be nil, which disables /metrics.
func NewRouter(h *Handler, mc *metrics.Collector) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if mc != nil {
		r.Use(mc.Middleware())
		r.GET("/metrics", mc.Handler())
	}

	r.GET("/healthz", h.GetHealth)
	api := r.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/export/insights/csv", h.ExportInsightsCSV)
	api.GET("/export/insights/json", h.ExportInsightsJSON)
	api.GET("/export/comments/csv", h.ExportCommentsCSV)
	return r
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	results, ok := h.loadResults(c)
	if !ok {
		return
	}

	var report insights.KPIReport
	if kpiPath := h.layout.Path(stage.KPIJSONFile); fileutils.FileExists(kpiPath) {
		r, err := stage.ReadKPIReport(kpiPath)
		if err != nil {
			h.log.WithError(err).Error("read kpi report")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unreadable kpi report"})
			return
		}
		report = r
	} else {
		report = insights.Aggregate(results)
	}

	var summary string
	if b, err := os.ReadFile(h.layout.Path(stage.SummaryFile)); err == nil {
		summary = strings.TrimSpace(string(b))
	}

	// PureJSON keeps the "Top Themes & Topics" key readable.
	c.PureJSON(http.StatusOK, DashboardResponse{KPI: report, Comments: results, ExecutiveSummary: summary})
}

func (h *Handler) ExportInsightsCSV(c *gin.Context) {
	results, ok := h.loadResults(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := insights.WriteInsightsCSV(&buf, insights.CollectInsights(results)); err != nil {
		h.log.WithError(err).Error("render insights csv")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	sendCSV(c, stage.InsightsCSVFile, buf.Bytes())
}

func (h *Handler) ExportInsightsJSON(c *gin.Context) {
	results, ok := h.loadResults(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+stage.InsightsJSONFile+`"`)
	c.PureJSON(http.StatusOK, insights.CollectInsights(results))
}

func (h *Handler) ExportCommentsCSV(c *gin.Context) {
	results, ok := h.loadResults(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := insights.WriteCommentsCSV(&buf, results); err != nil {
		h.log.WithError(err).Error("render comments csv")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	sendCSV(c, stage.CommentsExportCSVFile, buf.Bytes())
}

func (h *Handler) loadResults(c *gin.Context) ([]insights.AnalysisResult, bool) {
	results, err := stage.ReadAnalysisResults(h.layout.Path(stage.AnalyzedJSONFile), h.log)
	if err == nil {
		return results, true
	}
	if errors.Is(err, stage.ErrMissingInput) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis results yet"})
		return nil, false
	}
	h.log.WithError(err).Error("read analysis results")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "unreadable analysis results"})
	return nil, false
}

func sendCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
