// Package gateway exposes agents over HTTP: runs stream back to the caller
// as server-sent events, and WebSocket observers receive every event as a
// broadcast.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/agentwire/agentwire/internal/agent"
	"github.com/agentwire/agentwire/internal/config"
	"github.com/agentwire/agentwire/internal/schedule"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AgentFactory builds an agent for a named configuration and thread. The
// gateway caches the result per (agent, thread) pair so conversation state
// survives across runs.
type AgentFactory func(agentName, threadID string) (agent.Agent, error)

// Server is the agentwire gateway server.
type Server struct {
	Config  *config.Config
	Conns   *ConnManager
	Factory AgentFactory
	// Sched, when set, exposes the scheduler over /schedule.
	Sched *schedule.Scheduler

	httpSrv *http.Server
	startAt time.Time

	mu     sync.Mutex
	agents map[string]agent.Agent // "agentName/threadID" → agent
}

func NewServer(cfg *config.Config, factory AgentFactory) *Server {
	return &Server{
		Config:  cfg,
		Conns:   NewConnManager(),
		Factory: factory,
		startAt: time.Now(),
		agents:  make(map[string]agent.Agent),
	}
}

func (s *Server) buildEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", s.ginHealth)
	engine.GET("/ws", s.ginWebSocket)
	engine.POST("/awp", s.authMiddleware(), s.ginRunAgent)
	if s.Sched != nil {
		engine.GET("/schedule", s.authMiddleware(), s.ginListJobs)
		engine.POST("/schedule/:id/run", s.authMiddleware(), s.ginRunJob)
	}
	return engine
}

// Start begins listening for connections. Blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	engine := s.buildEngine()

	addr := fmt.Sprintf(":%d", s.Config.Gateway.Port)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	slog.Info("gateway starting", "port", s.Config.Gateway.Port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
	}()

	if err := s.httpSrv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) ginHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"uptime":    time.Since(s.startAt).String(),
		"observers": s.Conns.Count(),
	})
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := s.Config.Gateway.Auth.Token
		if expected == "" {
			c.Next()
			return
		}
		token := c.GetHeader("Authorization")
		if token == "Bearer "+expected {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	}
}

func (s *Server) authenticate(token string) bool {
	expected := s.Config.Gateway.Auth.Token
	if expected == "" {
		return true // no auth configured
	}
	return token == expected
}

// agentFor returns the cached agent for the pair, creating it on first use.
func (s *Server) agentFor(agentName, threadID string) (agent.Agent, error) {
	key := agentName + "/" + threadID
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.agents[key]; ok {
		return a, nil
	}
	a, err := s.Factory(agentName, threadID)
	if err != nil {
		return nil, err
	}
	s.agents[key] = a
	return a, nil
}

func (s *Server) ginWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	connID := fmt.Sprintf("conn_%d", time.Now().UnixNano())
	conn := &Conn{
		ID:          connID,
		WS:          ws,
		ConnectedAt: time.Now(),
	}

	// First message must be a connect request.
	frame, err := ReadFrame(ws)
	if err != nil {
		slog.Warn("failed to read connect frame", "error", err)
		return
	}
	if frame.Method != "connect" {
		conn.Send(ResErr(frame.ID, "HANDSHAKE_REQUIRED", "first message must be a connect request"))
		return
	}

	var connectParams ConnectParams
	if len(frame.Params) > 0 {
		if err := json.Unmarshal(frame.Params, &connectParams); err != nil {
			conn.Send(ResErr(frame.ID, "INVALID_PARAMS", "invalid connect params"))
			return
		}
	}
	if !s.authenticate(connectParams.Token) {
		conn.Send(ResErr(frame.ID, "AUTH_FAILED", "invalid token"))
		return
	}

	s.Conns.Add(conn)
	defer s.Conns.Remove(connID)

	slog.Info("observer connected", "id", connID)

	conn.Send(ResOK(frame.ID, map[string]any{
		"connId":   connID,
		"protocol": 1,
	}))

	// Observers only listen; drain until the connection drops.
	for {
		if _, err := ReadFrame(ws); err != nil {
			slog.Debug("observer disconnected", "id", connID, "error", err)
			return
		}
	}
}
