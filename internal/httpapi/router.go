// Package httpapi is the admin HTTP surface (spec §6.3): a small gin
// router exposing liveness, the set of symbols currently being
// ingested, and data-block discovery for ad hoc inspection — grounded
// on cmd/pms/main.go's router setup and api/pms.go's handler shape.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/BullionBear/lobkeeper/docs"
	"github.com/BullionBear/lobkeeper/internal/ingest"
	"github.com/BullionBear/lobkeeper/internal/store"
)

// @title LOB Keeper Admin API
// @version 1.0
// @description Read-only inspection endpoints for the order book ingestion and replay service.
// @host localhost:8080
// @BasePath /api/v1

// NewRouter builds the admin router. It never mutates ingestion
// state; every handler is a read over the supervisor's symbol set or
// the persisted diff/snapshot history.
func NewRouter(sup *ingest.Supervisor, st *store.Store) *gin.Engine {
	router := gin.Default()
	router.Use(allowAllCORS)

	router.GET("/healthz", healthz)

	v1 := router.Group("/api/v1")
	{
		h := &handlers{sup: sup, st: st}
		v1.GET("/symbols", h.listSymbols)
		v1.GET("/blocks/:symbol", h.listBlocks)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return router
}

func allowAllCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// @Summary Liveness probe
// @Produce json
// @Success 200 {object} string "ok"
// @Router /healthz [get]
func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
