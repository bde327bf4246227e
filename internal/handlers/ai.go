package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/chronos/backend/internal/ai"
)

type AIHandler struct {
	Service    *ai.Service
	RetryAfter int
}

// NewAIHandler creates the handler for the four AI proxy actions.
func NewAIHandler(service *ai.Service, retryAfter int) *AIHandler {
	return &AIHandler{
		Service:    service,
		RetryAfter: retryAfter,
	}
}

type ClientPayload struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourlyRate"`
	Currency   string  `json:"currency"`
}

type WorkRecordPayload struct {
	ID              string  `json:"id"`
	ClientID        string  `json:"clientId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes float64 `json:"durationMinutes"`
	Category        string  `json:"category"`
	Notes           string  `json:"notes"`
}

type ReceiptPayload struct {
	ID              string  `json:"id"`
	ClientID        string  `json:"clientId"`
	Date            string  `json:"date"`
	Vendor          string  `json:"vendor"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category"`
	Notes           string  `json:"notes"`
	IsTaxDeductible bool    `json:"isTaxDeductible"`
}

type SmartCommandRequest struct {
	Command string          `json:"command" validate:"required"`
	Clients []ClientPayload `json:"clients"`
}

type ForecastRequest struct {
	Records  []WorkRecordPayload `json:"records"`
	Receipts []ReceiptPayload    `json:"receipts"`
	Client   *ClientPayload      `json:"client" validate:"required"`
}

type ClientHealthRequest struct {
	Records  []WorkRecordPayload `json:"records"`
	Receipts []ReceiptPayload    `json:"receipts"`
	Clients  []ClientPayload     `json:"clients" validate:"required,min=1"`
}

type ParseReceiptRequest struct {
	Image string `json:"image" validate:"required"`
}

type ForecastResponse struct {
	Forecast string `json:"forecast"`
}

// SmartCommand parses a natural-language instruction into a structured action.
func (h *AIHandler) SmartCommand(c echo.Context) error {
	var req SmartCommandRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Command is required")
	}

	return h.handleSmartCommand(c, req)
}

// Forecast returns a narrative revenue outlook for one client.
func (h *AIHandler) Forecast(c echo.Context) error {
	var req ForecastRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Client data is required")
	}

	return h.handleForecast(c, req)
}

// ClientHealth scores every known client on profitability, stability, growth.
func (h *AIHandler) ClientHealth(c echo.Context) error {
	var req ClientHealthRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Clients data is required")
	}

	return h.handleClientHealth(c, req)
}

// ParseReceipt extracts structured expense data from a receipt image.
func (h *AIHandler) ParseReceipt(c echo.Context) error {
	var req ParseReceiptRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Base64 image is required")
	}

	return h.handleParseReceipt(c, req)
}

func (h *AIHandler) handleSmartCommand(c echo.Context, req SmartCommandRequest) error {
	result, err := h.Service.SmartCommand(c.Request().Context(), c.RealIP(), req.Command, toAIClients(req.Clients))
	if err != nil {
		return h.respondError(c, "Failed to process command", err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AIHandler) handleForecast(c echo.Context, req ForecastRequest) error {
	forecast, err := h.Service.Forecast(c.Request().Context(), c.RealIP(), toAIRecords(req.Records), toAIReceipts(req.Receipts), toAIClient(req.Client))
	if err != nil {
		return h.respondError(c, "Failed to generate forecast", err)
	}

	return c.JSON(http.StatusOK, ForecastResponse{Forecast: forecast})
}

func (h *AIHandler) handleClientHealth(c echo.Context, req ClientHealthRequest) error {
	result, err := h.Service.ClientHealth(c.Request().Context(), c.RealIP(), toAIRecords(req.Records), toAIReceipts(req.Receipts), toAIClients(req.Clients))
	if err != nil {
		return h.respondError(c, "Failed to analyze client health", err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AIHandler) handleParseReceipt(c echo.Context, req ParseReceiptRequest) error {
	result, err := h.Service.ParseReceipt(c.Request().Context(), c.RealIP(), req.Image)
	if err != nil {
		return h.respondError(c, "Failed to parse receipt", err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AIHandler) respondError(c echo.Context, message string, err error) error {
	switch {
	case errors.Is(err, ai.ErrInvalidInput):
		return badRequest(c, invalidInputMessage(err))
	case errors.Is(err, ai.ErrRateLimited):
		return tooManyRequests(c, h.RetryAfter)
	default:
		slog.Error("ai action failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return upstreamError(c, message, err)
	}
}

func invalidInputMessage(err error) string {
	message := strings.TrimPrefix(err.Error(), ai.ErrInvalidInput.Error())
	return strings.TrimSpace(strings.TrimPrefix(message, ":"))
}

func toAIClient(payload *ClientPayload) *ai.Client {
	if payload == nil {
		return nil
	}

	return &ai.Client{
		ID:         payload.ID,
		Name:       payload.Name,
		HourlyRate: payload.HourlyRate,
		Currency:   payload.Currency,
	}
}

func toAIClients(values []ClientPayload) []ai.Client {
	out := make([]ai.Client, 0, len(values))
	for i := range values {
		out = append(out, *toAIClient(&values[i]))
	}
	return out
}

func toAIRecords(values []WorkRecordPayload) []ai.WorkRecord {
	out := make([]ai.WorkRecord, 0, len(values))
	for _, value := range values {
		out = append(out, ai.WorkRecord{
			ID:              value.ID,
			ClientID:        value.ClientID,
			Date:            value.Date,
			StartTime:       value.StartTime,
			EndTime:         value.EndTime,
			DurationMinutes: value.DurationMinutes,
			Category:        value.Category,
			Notes:           value.Notes,
		})
	}
	return out
}

func toAIReceipts(values []ReceiptPayload) []ai.ReceiptRecord {
	out := make([]ai.ReceiptRecord, 0, len(values))
	for _, value := range values {
		out = append(out, ai.ReceiptRecord{
			ID:              value.ID,
			ClientID:        value.ClientID,
			Date:            value.Date,
			Vendor:          value.Vendor,
			Amount:          value.Amount,
			Category:        value.Category,
			Notes:           value.Notes,
			IsTaxDeductible: value.IsTaxDeductible,
		})
	}
	return out
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func tooManyRequests(c echo.Context, retryAfter int) error {
	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"error":      "Too many requests. Please try again later.",
		"retryAfter": retryAfter,
	})
}

func upstreamError(c echo.Context, message string, err error) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error":   message,
		"message": err.Error(),
	})
}
