package inject

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	appconfig "github.com/dmorgan81/storybot/internal/config"
	"github.com/dmorgan81/storybot/internal/handler"
	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/page"
	"github.com/dmorgan81/storybot/internal/param"
	"github.com/dmorgan81/storybot/internal/pipeline"
	"github.com/dmorgan81/storybot/internal/prompt"
	"github.com/dmorgan81/storybot/internal/provider"
	"github.com/dmorgan81/storybot/internal/server"
	"github.com/samber/do"
)

func Setup(ctx context.Context) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideNamedValue[context.Context](injector, "context", ctx)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, http.DefaultClient)
	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)

	// parameter store is only touched when a *_PARAM variable points into it
	do.Provide[appconfig.Config](injector, func(i *do.Injector) (appconfig.Config, error) {
		return appconfig.Load(ctx, os.Getenv, lazyFetcher{i})
	})
	do.ProvideNamed[[]string](injector, "topics", func(i *do.Injector) ([]string, error) {
		path := do.MustInvoke[appconfig.Config](i).PromptsPath
		if path == "" {
			return nil, nil
		}
		topics, err := do.MustInvoke[param.Fetcher](i).FetchAll(ctx, path)
		if err != nil {
			log.Warn("falling back to default topics", "error", err)
			return nil, nil
		}
		return topics, nil
	})

	do.Provide[provider.Provider](injector, func(i *do.Injector) (provider.Provider, error) {
		cfg := do.MustInvoke[appconfig.Config](i)
		return provider.New(ctx, cfg.Provider, do.MustInvoke[*http.Client](i))
	})
	do.Provide[*pipeline.Orchestrator](injector, pipeline.NewOrchestrator)
	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.ProvideValue[*page.Templator](injector, &page.Templator{})

	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*server.Server](injector, server.NewServer)

	return injector
}

type lazyFetcher struct {
	i *do.Injector
}

func (f lazyFetcher) Fetch(ctx context.Context, path string) (string, error) {
	fetcher, err := do.Invoke[param.Fetcher](f.i)
	if err != nil {
		return "", err
	}
	return fetcher.Fetch(ctx, path)
}

func (f lazyFetcher) FetchAll(ctx context.Context, path string) ([]string, error) {
	fetcher, err := do.Invoke[param.Fetcher](f.i)
	if err != nil {
		return nil, err
	}
	return fetcher.FetchAll(ctx, path)
}
