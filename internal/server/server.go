package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmorgan81/storybot/internal/config"
	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/page"
	"github.com/dmorgan81/storybot/internal/pipeline"
	"github.com/dmorgan81/storybot/internal/prompt"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	orchestrator *pipeline.Orchestrator
	templator    *page.Templator
	randomizer   *prompt.Randomizer
	provider     string
	addr         string
	router       *gin.Engine
}

func NewServer(i *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[config.Config](i)
	s := &Server{
		orchestrator: do.MustInvoke[*pipeline.Orchestrator](i),
		templator:    do.MustInvoke[*page.Templator](i),
		randomizer:   do.MustInvoke[*prompt.Randomizer](i),
		provider:     cfg.Provider.Name,
		addr:         cfg.Addr,
	}
	s.router = s.generateRouter(do.MustInvokeNamed[context.Context](i, "context"))
	return s, nil
}

func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight invocations.
func (s *Server) Run(ctx context.Context) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("server")
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting server", "addr", s.addr, "provider", s.provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
