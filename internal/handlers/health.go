package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const serviceName = "Chronos API"

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Health reports service liveness without touching the AI upstream.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
