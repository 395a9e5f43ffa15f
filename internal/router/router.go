package router

import (
	"github.com/gin-gonic/gin"

	"ndclink/internal/handler"
	"ndclink/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	crossRefH *handler.CrossRefHandler,
	runH *handler.RunHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	crossrefs := v1.Group("/crossrefs")
	crossrefs.GET("", crossRefH.List)
	crossrefs.GET("/export/csv", crossRefH.ExportCSV)
	crossrefs.GET("/export/xlsx", crossRefH.ExportXLSX)
	crossrefs.GET("/:ndc", crossRefH.GetByNDC)

	runs := v1.Group("/runs")
	runs.GET("/latest", runH.Latest)

	return r
}
