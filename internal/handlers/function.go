package handlers

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
)

// Action discriminants accepted by the single-endpoint deployment.
const (
	ActionSmartCommand = "smart-command"
	ActionForecast     = "forecast"
	ActionClientHealth = "client-health"
	ActionParseReceipt = "parse-receipt"
)

type FunctionRequest struct {
	Action  string          `json:"action" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch serves the serverless-style surface: one endpoint, the action
// named in the body, the same success and failure bodies as the per-path
// routes.
func (h *AIHandler) Dispatch(c echo.Context) error {
	var req FunctionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Action is required")
	}

	switch req.Action {
	case ActionSmartCommand:
		var payload SmartCommandRequest
		if err := decodePayload(req.Payload, &payload); err != nil {
			return badRequest(c, "invalid payload")
		}
		if err := c.Validate(&payload); err != nil {
			return badRequest(c, "Command is required")
		}
		return h.handleSmartCommand(c, payload)

	case ActionForecast:
		var payload ForecastRequest
		if err := decodePayload(req.Payload, &payload); err != nil {
			return badRequest(c, "invalid payload")
		}
		if err := c.Validate(&payload); err != nil {
			return badRequest(c, "Client data is required")
		}
		return h.handleForecast(c, payload)

	case ActionClientHealth:
		var payload ClientHealthRequest
		if err := decodePayload(req.Payload, &payload); err != nil {
			return badRequest(c, "invalid payload")
		}
		if err := c.Validate(&payload); err != nil {
			return badRequest(c, "Clients data is required")
		}
		return h.handleClientHealth(c, payload)

	case ActionParseReceipt:
		var payload ParseReceiptRequest
		if err := decodePayload(req.Payload, &payload); err != nil {
			return badRequest(c, "invalid payload")
		}
		if err := c.Validate(&payload); err != nil {
			return badRequest(c, "Base64 image is required")
		}
		return h.handleParseReceipt(c, payload)

	default:
		return badRequest(c, "Unknown action")
	}
}

func decodePayload(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	return json.Unmarshal(raw, target)
}
