package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/dlp-generator/internal/http/handlers"
	httpMW "github.com/yungbote/dlp-generator/internal/http/middleware"
	"github.com/yungbote/dlp-generator/internal/observability"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	ServiceName  string
	CORSOrigins  []string
	MaxBodyBytes int64
	Metrics      *observability.Metrics

	LessonPlanHandler *httpH.LessonPlanHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	api.Use(httpMW.LimitBody(cfg.MaxBodyBytes))
	{
		// Lesson plans
		if cfg.LessonPlanHandler != nil {
			api.POST("/lesson-plans", cfg.LessonPlanHandler.Generate)
			api.POST("/lesson-plans/render", cfg.LessonPlanHandler.Render)
			api.POST("/lesson-plans/content", cfg.LessonPlanHandler.GenerateContent)
		}
	}

	return r
}
