package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tala-demo/recoveries-agent/api/handler"
)

type Config struct {
	Health *handler.HealthHandler
	Chat   *handler.ChatHandler
	Tools  *handler.ToolsHandler
}

// New builds the gin engine. Chat and Tools are optional so the API server
// and the standalone tool server can share one router.
func New(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
	}))

	if cfg.Health != nil {
		r.GET("/", cfg.Health.Root)
		r.GET("/health", cfg.Health.Health)
	}

	if cfg.Chat != nil {
		api := r.Group("/api")
		api.POST("/chat", cfg.Chat.Chat)
	}

	if cfg.Tools != nil {
		r.GET("/tools", cfg.Tools.List)
		r.POST("/tools/:tool_name", cfg.Tools.Dispatch)
	}

	return r
}
