package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/storybot/internal/config"
	"github.com/dmorgan81/storybot/internal/handler"
	"github.com/dmorgan81/storybot/internal/inject"
	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/server"
	"github.com/samber/do"
)

func main() {
	logger := log.New(os.Stderr, log.ParseLevel(os.Getenv(config.EnvLogLevel)))
	ctx := log.NewContext(context.Background(), logger)
	injector := inject.Setup(ctx)

	if _, err := do.Invoke[config.Config](injector); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		handler := do.MustInvoke[*handler.Handler](injector)
		lambda.StartWithOptions(handler.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
			_ = injector.Shutdown()
		}))
		return
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := do.Invoke[*server.Server](injector)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	_ = injector.Shutdown()
}
