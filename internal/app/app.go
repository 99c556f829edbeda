package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/dlp-generator/internal/http"
	httpH "github.com/yungbote/dlp-generator/internal/http/handlers"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/assembler"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/content"
	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/gcp"
	"github.com/yungbote/dlp-generator/internal/platform/imagegen"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
	"github.com/yungbote/dlp-generator/internal/platform/openai"
	"github.com/yungbote/dlp-generator/internal/services"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Log        *logger.Logger
	Cfg        Config
	Server     *apphttp.Server
	LessonPlan services.LessonPlanService

	archive      gcp.ArchiveStore
	shutdownOtel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.LogMode != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Version,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     observability.ParseHeaders(cfg.Otel.Headers),
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	})
	metrics := observability.Init(log, cfg.MetricsEnabled)

	archive, err := NewArchive(ctx, log, cfg)
	if err != nil {
		_ = shutdownOtel(ctx)
		log.Sync()
		return nil, err
	}
	svc, err := NewLessonPlanService(log, cfg, archive)
	if err != nil {
		_ = shutdownOtel(ctx)
		log.Sync()
		return nil, err
	}

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Log:               log,
		ServiceName:       otelServiceName(cfg),
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		MaxBodyBytes:      cfg.HTTP.MaxRequestBytes,
		Metrics:           metrics,
		LessonPlanHandler: httpH.NewLessonPlanHandler(log, svc, cfg.HTTP.MaxImageBytes),
		HealthHandler:     httpH.NewHealthHandler(cfg.Version, cfg.HasLLM()),
	})
	server := apphttp.NewServer(apphttp.ServerConfig{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout:      cfg.HTTP.WriteTimeout.Std(),
	}, router)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Server:       server,
		LessonPlan:   svc,
		archive:      archive,
		shutdownOtel: shutdownOtel,
	}, nil
}

func otelServiceName(cfg Config) string {
	if !cfg.Otel.Enabled {
		return ""
	}
	return cfg.Otel.ServiceName
}

// NewAssembler builds the document assembler. Pictures are fetched from the
// image service only when fetchImages is set and the config enables it.
func NewAssembler(log *logger.Logger, cfg Config, fetchImages bool) *assembler.Assembler {
	var opts []assembler.Option
	if fetchImages && cfg.Image.Enabled {
		opts = append(opts, assembler.WithImageSource(imagegen.NewClient(log, imagegen.Config{
			BaseURL: cfg.Image.BaseURL,
			Width:   cfg.Image.Width,
			Height:  cfg.Image.Height,
			Timeout: cfg.Image.Timeout.Std(),
		})))
	}
	return assembler.New(log, opts...)
}

// NewLessonPlanService wires the generation pipeline. Without an LLM key the
// service still renders caller-supplied content.
func NewLessonPlanService(log *logger.Logger, cfg Config, archive gcp.ArchiveStore) (services.LessonPlanService, error) {
	var generator services.ContentGenerator
	if cfg.HasLLM() {
		llm, err := openai.NewClient(log, openai.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			API:         cfg.LLM.API,
			Timeout:     cfg.LLM.Timeout.Std(),
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("init llm client: %w", err)
		}
		generator = content.NewGenerator(log, llm)
	} else {
		log.Warn("no LLM API key configured; lesson content generation is disabled")
	}
	return services.NewLessonPlanService(log, generator, NewAssembler(log, cfg, true), archive,
		services.LessonPlanServiceConfig{MaxConcurrent: cfg.MaxConcurrent}), nil
}

// NewArchive returns nil when no archive bucket is configured.
func NewArchive(ctx context.Context, log *logger.Logger, cfg Config) (gcp.ArchiveStore, error) {
	if cfg.Archive.Bucket == "" {
		return nil, nil
	}
	mode, err := gcp.ResolveMode(cfg.Archive.Mode, cfg.Archive.EmulatorHost)
	if err != nil {
		return nil, fmt.Errorf("archive storage mode: %w", err)
	}
	store, err := gcp.NewBucketService(ctx, log, gcp.BucketConfig{
		Bucket:  cfg.Archive.Bucket,
		Prefix:  cfg.Archive.Prefix,
		Storage: cfg.storageConfig(mode),
		Timeout: cfg.Archive.Timeout.Std(),
	})
	if err != nil {
		return nil, fmt.Errorf("init archive bucket: %w", err)
	}
	return store, nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTP.Addr)
		errCh <- a.Server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.Log.Warn("close archive", "error", err)
		}
	}
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
