package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"market-assistant/src/chart"
	"market-assistant/src/conversation"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Dashboard interfaces.IDashboard
	Search    interfaces.ISymbolSearch
	Renderer  *chart.Renderer
	Sessions  *conversation.SessionManager
	Chat      interfaces.IChatController

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MDashboardUpdate
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// Last pushed state, sent to new clients
	latestState *models.MDashboardUpdate
	stateMutex  sync.RWMutex
}

// Deps groups the collaborators served over HTTP.
type Deps struct {
	Dashboard interfaces.IDashboard
	Search    interfaces.ISymbolSearch
	Renderer  *chart.Renderer
	Sessions  *conversation.SessionManager
	Chat      interfaces.IChatController
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, deps Deps, l *logger.Logger) *APIServer {
	if strings.ToUpper(cfg.LogLevel) != "DEBUG" && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if l == nil {
		l = logger.NewLogger(cfg, "APIServer")
	}

	s := &APIServer{
		Config:     cfg,
		Logger:     l,
		Dashboard:  deps.Dashboard,
		Search:     deps.Search,
		Renderer:   deps.Renderer,
		Sessions:   deps.Sessions,
		Chat:       deps.Chat,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MDashboardUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	// CORS for local front ends
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

func (s *APIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.Logger.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	s.engine.GET("/", s.getIndex)

	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)
	api.GET("/search", s.getSearch)

	api.GET("/dashboard", s.getDashboard)
	api.PUT("/dashboard/selection", s.putSelection)
	api.POST("/dashboard/refresh", s.postRefresh)

	api.GET("/chart", s.getChart)
	api.GET("/chart.svg", s.getChartSVG)

	api.POST("/chat/sessions", s.createSession)
	api.GET("/chat/sessions/:id", s.getSession)
	api.DELETE("/chat/sessions/:id", s.deleteSession)
	api.POST("/chat/sessions/:id/messages", s.postMessage)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and serves HTTP until Stop is called.
func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), writeWait*2)
			defer cancel()
			err = s.httpServer.Shutdown(ctx)
		}
		s.Logger.Info("Server stopped")
	})
	return err
}
