package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	clients func() int
}

var healthHandler *HealthHandler

func NewHealthHandler(checks map[string]HealthCheck, clients func() int) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		clients: clients,
	}
}

func SetupHealthHandler(checks map[string]HealthCheck, clients func() int) {
	healthHandler = NewHealthHandler(checks, clients)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	}
	if h.clients != nil {
		body["ws_clients"] = h.clients()
	}
	return c.JSON(http.StatusOK, body)
}

// CheckDependencies runs every registered probe with a short deadline.
func (h *HealthHandler) CheckDependencies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	return c.JSON(status, results)
}
