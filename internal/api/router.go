package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vudayani/spring-ai-llm-demo/internal/api/handler"
)

// Deps are the collaborators the router wires into handlers. Metrics and
// Tuner may be nil, in which case their routes are not registered.
type Deps struct {
	Evaluator handler.Evaluator
	Tuner     handler.PromptTuner
	Metrics   MetricsHandler
	Logger    *slog.Logger
}

type MetricsHandler interface {
	handler.HTTPObserver
	Handler() http.Handler
}

type Router struct {
	engine *gin.Engine
}

func NewRouter(deps Deps) *Router {
	gin.SetMode(gin.ReleaseMode)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(handler.RequestID())
	engine.Use(handler.AccessLog(logger))
	if deps.Metrics != nil {
		engine.Use(handler.Observe(deps.Metrics))
	}
	engine.Use(handler.Recovery(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	evalHandler := handler.NewEvaluationHandler(deps.Evaluator, logger)
	engine.POST("/evaluate/", evalHandler.Evaluate)
	engine.POST("/evaluate", evalHandler.Evaluate)

	if deps.Tuner != nil {
		promptHandler := handler.NewPromptHandler(deps.Tuner, logger)

		api := engine.Group("/api")
		{
			api.POST("/askLlm", promptHandler.AskLLM)
			api.POST("/promptTuning", promptHandler.PromptTuning)
		}
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
