package server

import (
	"context"
	"net/http"
	"time"

	"github.com/dmorgan81/storybot/internal/handler"
	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/page"
	"github.com/dmorgan81/storybot/internal/pipeline"
	"github.com/gin-gonic/gin"
)

func (s *Server) generateRouter(base context.Context) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(base))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/", s.index)
	router.POST("/", s.generate)
	router.POST("/api/stories", s.createStory)

	return router
}

// requestLogger hands each request a logger derived from the process logger.
func requestLogger(base context.Context) gin.HandlerFunc {
	logger := log.FromContextOrDiscard(base)
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := logger.With("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), reqLog))

		c.Next()

		reqLog.Info("handled request", "status", c.Writer.Status(), "duration", time.Since(start).String())
	}
}

func (s *Server) params(ctx context.Context) page.Params {
	return page.Params{
		Placeholder: s.randomizer.Suggest(ctx),
		Provider:    s.provider,
	}
}

func (s *Server) render(c *gin.Context, params page.Params) {
	html, err := s.templator.Template(c.Request.Context(), params)
	if err != nil {
		log.FromContextOrDiscard(c.Request.Context()).Error("failed to render page", "error", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) index(c *gin.Context) {
	s.render(c, s.params(c.Request.Context()))
}

func (s *Server) generate(c *gin.Context) {
	ctx := c.Request.Context()
	res := s.orchestrator.Run(ctx, c.PostForm("topic"))
	s.render(c, s.params(ctx).FromResult(res))
}

func (s *Server) createStory(c *gin.Context) {
	var input handler.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := s.orchestrator.Run(c.Request.Context(), input.Topic)
	c.JSON(statusOf(res.State), handler.NewOutput(res))
}

func statusOf(state pipeline.State) int {
	switch state {
	case pipeline.Done:
		return http.StatusOK
	case pipeline.Idle:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
