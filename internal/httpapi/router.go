package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterConfig collects the handlers the HTTP surface wires in (spec §6).
type RouterConfig struct {
	Generate *GenerateHandler
	Search   *SearchHandler
}

// NewRouter builds the gin engine serving POST /generate, GET /search, and
// GET / (spec §6).
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("clinicscribe"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: false,
	}))

	router.GET("/", LivenessHandler)
	router.POST("/generate", cfg.Generate.Handle)
	router.GET("/search", cfg.Search.Handle)

	return router
}
