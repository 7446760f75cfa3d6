package http

import (
	"github.com/gin-gonic/gin"

	"docquery/internal/bootstrap"
	"docquery/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	docHandler := handler.NewDocumentHandler(
		app.IngestService,
		app.RetrievalService,
		app.Config.App.SourcesDir,
		app.Registry.Types(),
	)

	v1 := router.Group("/api/v1")
	docs := v1.Group("/documents")
	docs.POST("", docHandler.Upload)
	docs.GET("", docHandler.List)
	docs.GET("/:id", docHandler.Get)
	docs.GET("/:id/chunks", docHandler.ListChunks)
	docs.DELETE("/:id", docHandler.Delete)
	docs.POST("/:id/query", docHandler.Query)

	return router
}
