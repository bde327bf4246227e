package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/chronos/backend/internal/handlers"
)

func registerRoutes(e *echo.Echo, aiHandler *handlers.AIHandler) {
	e.GET("/api/health", handlers.Health)

	aiGroup := e.Group("/api/ai")
	aiGroup.POST("/smart-command", aiHandler.SmartCommand)
	aiGroup.POST("/forecast", aiHandler.Forecast)
	aiGroup.POST("/client-health", aiHandler.ClientHealth)
	aiGroup.POST("/parse-receipt", aiHandler.ParseReceipt)
}

func registerFunctionRoutes(e *echo.Echo, aiHandler *handlers.AIHandler) {
	e.POST("/ai", aiHandler.Dispatch)
	e.OPTIONS("/ai", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}
