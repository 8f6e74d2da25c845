package gateway

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agentwire/agentwire/internal/agent"
	"github.com/agentwire/agentwire/internal/message"
)

// RunAgentRequest is the body of POST /awp. Everything is optional; a bare
// request runs the default agent on a fresh thread.
type RunAgentRequest struct {
	Agent          string                   `json:"agent,omitempty"`
	ThreadID       string                   `json:"threadId,omitempty"`
	RunID          string                   `json:"runId,omitempty"`
	Messages       []message.Message        `json:"messages,omitempty"`
	Tools          []message.ToolDefinition `json:"tools,omitempty"`
	Context        []message.ContextItem    `json:"context,omitempty"`
	ForwardedProps any                      `json:"forwardedProps,omitempty"`
}

// ginRunAgent starts a run and streams its events back as SSE frames. The
// response ends after the run's terminal event; a dropped client cancels
// the run cooperatively.
func (s *Server) ginRunAgent(c *gin.Context) {
	var req RunAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	agentName := req.Agent
	if agentName == "" {
		agentName = s.Config.Gateway.DefaultAgent
	}
	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	ag, err := s.agentFor(agentName, threadID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	writer, err := NewStreamWriter(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sub := &streamSubscriber{writer: writer, conns: s.Conns}
	handle, err := ag.RunAgent(c.Request.Context(), agent.RunParams{
		RunID:          req.RunID,
		Messages:       req.Messages,
		Tools:          req.Tools,
		Context:        req.Context,
		ForwardedProps: req.ForwardedProps,
	}, sub)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, agent.ErrRunInProgress) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	select {
	case <-handle.Done():
	case <-c.Request.Context().Done():
		handle.Cancel()
		<-handle.Done()
	}

	if err := handle.Err(); err != nil {
		slog.Warn("run ended with error", "agent", agentName, "thread_id", threadID, "error", err)
	}
}

// ginListJobs returns the scheduled jobs and their recorded executions.
func (s *Server) ginListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"jobs": s.Sched.List(),
		"runs": s.Sched.Runs(),
	})
}

// ginRunJob triggers a scheduled job immediately, outside its cron slot.
func (s *Server) ginRunJob(c *gin.Context) {
	if err := s.Sched.RunNow(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "triggered"})
}
