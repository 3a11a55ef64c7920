package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"marketvue_backend/internal/handlers"
)

// SystemRoutes - маршруты вне /api/v1
type SystemRoutes struct {
	Health  *handlers.HealthHandler
	Metrics http.Handler
	// UploadsURL/UploadsDir - раздача локального хранилища; пусто для S3/R2
	UploadsURL string
	UploadsDir string
	Swagger    bool
}

func SetupPublicRoutes(r *gin.Engine, sys SystemRoutes) {
	r.GET("/health", sys.Health.Health)

	if sys.Metrics != nil {
		r.GET("/metrics", gin.WrapH(sys.Metrics))
	}
	if sys.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if sys.UploadsURL != "" && sys.UploadsDir != "" {
		r.Static(sys.UploadsURL, sys.UploadsDir)
	}
}
