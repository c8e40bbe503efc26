package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"market-assistant/src/conversation"
	"market-assistant/src/dashboard"
	"market-assistant/src/helpers"
	"market-assistant/src/models"

	"github.com/gin-gonic/gin"
)

const indexPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Market Assistant</title></head>
<body style="margin:0;background:#ffffff">
<img src="/api/chart.svg" alt="chart">
</body></html>`

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	var lastUpdate int64
	var generation uint64
	if s.latestState != nil {
		lastUpdate = s.latestState.Snapshot.LastUpdated.UnixMilli()
		generation = s.latestState.Snapshot.Generation
	}
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"sessions":      s.Sessions.Count(),
		"latest_update": lastUpdate,
		"generation":    generation,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getConfig(c *gin.Context) {
	ds := s.Config.DataSource
	c.JSON(http.StatusOK, gin.H{
		"timeframes":     models.Timeframes,
		"chartTypes":     []string{models.ChartTypeLine, models.ChartTypeCandlestick},
		"popularSymbols": ds.PopularSymbols,
		"defaults": models.MChartSelection{
			Symbol:    ds.DefaultSymbol,
			Timeframe: ds.DefaultTimeframe,
			ChartType: ds.DefaultChartType,
		},
		"updateIntervalSeconds": ds.UpdateIntervalSeconds,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSearch(c *gin.Context) {
	c.JSON(http.StatusOK, s.Search.Search(c.Request.Context(), c.Query("q")))
}

// -----------------------------------------------------------------------------
// Dashboard
// -----------------------------------------------------------------------------

func (s *APIServer) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, s.Dashboard.Snapshot())
}

func (s *APIServer) putSelection(c *gin.Context) {
	var sel models.MChartSelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid selection: " + err.Error()})
		return
	}
	snap, err := s.Dashboard.Select(c.Request.Context(), sel)
	s.respondSnapshot(c, snap, err)
}

func (s *APIServer) postRefresh(c *gin.Context) {
	snap, err := s.Dashboard.Refresh(c.Request.Context())
	s.respondSnapshot(c, snap, err)
}

// respondSnapshot reports load failures through the snapshot's error banner.
// Only rejected or superseded requests get an error status.
func (s *APIServer) respondSnapshot(c *gin.Context, snap models.MDashboardSnapshot, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, snap)
	case helpers.IsKind(err, helpers.KindValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": helpers.UserMessage(err)})
	case errors.Is(err, dashboard.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, snap)
	}
}

// -----------------------------------------------------------------------------
// Chart
// -----------------------------------------------------------------------------

func (s *APIServer) getChart(c *gin.Context) {
	snap := s.Dashboard.Snapshot()
	m, err := s.Renderer.Build(snap.Series, snap.Selection)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": helpers.UserMessage(err), "selection": snap.Selection})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *APIServer) getChartSVG(c *gin.Context) {
	snap := s.Dashboard.Snapshot()
	m, err := s.Renderer.Build(snap.Series, snap.Selection)
	if err != nil {
		c.String(statusFor(err), helpers.UserMessage(err))
		return
	}
	var buf bytes.Buffer
	s.Renderer.WriteSVG(&buf, m)
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// -----------------------------------------------------------------------------
// Chat
// -----------------------------------------------------------------------------

type sessionResponse struct {
	ID       string            `json:"id"`
	Busy     bool              `json:"busy"`
	Messages []models.MMessage `json:"messages"`
}

type messageRequest struct {
	Text string `json:"text"`
}

func (s *APIServer) createSession(c *gin.Context) {
	sess := s.Sessions.Create()
	c.JSON(http.StatusCreated, sessionResponse{ID: sess.ID, Messages: sess.Messages()})
}

func (s *APIServer) getSession(c *gin.Context) {
	sess, err := s.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: sess.ID, Busy: sess.Busy(), Messages: sess.Messages()})
}

func (s *APIServer) deleteSession(c *gin.Context) {
	if err := s.Sessions.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *APIServer) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message text is required"})
		return
	}

	msgs, err := s.Chat.Submit(c.Request.Context(), c.Param("id"), req.Text)
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, conversation.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(statusFor(err), gin.H{"error": helpers.UserMessage(err)})
	default:
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}

// -----------------------------------------------------------------------------

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch helpers.KindOf(err) {
	case helpers.KindValidation:
		return http.StatusBadRequest
	case helpers.KindNoData:
		return http.StatusNotFound
	case helpers.KindAuthorization, helpers.KindPermissionDenied:
		return http.StatusForbidden
	case helpers.KindRateLimit:
		return http.StatusTooManyRequests
	case helpers.KindNetwork, helpers.KindMalformedResponse, helpers.KindBadRequest:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
