package ai

// Command types the model may return for a smart command. Anything else is
// normalized to CommandTypeUnknown before the result leaves the gateway.
const (
	CommandTypeWork    = "work"
	CommandTypeExpense = "expense"
	CommandTypeSync    = "sync"
	CommandTypeReport  = "report"
	CommandTypeFix     = "fix"
	CommandTypeUnknown = "unknown"
)

type Client struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourlyRate,omitempty"`
	Currency   string  `json:"currency,omitempty"`
}

type WorkRecord struct {
	ID              string  `json:"id,omitempty"`
	ClientID        string  `json:"clientId,omitempty"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime,omitempty"`
	EndTime         string  `json:"endTime,omitempty"`
	DurationMinutes float64 `json:"durationMinutes"`
	Category        string  `json:"category,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

type ReceiptRecord struct {
	ID              string  `json:"id,omitempty"`
	ClientID        string  `json:"clientId,omitempty"`
	Date            string  `json:"date"`
	Vendor          string  `json:"vendor"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	IsTaxDeductible bool    `json:"isTaxDeductible,omitempty"`
}

type SmartCommandResult struct {
	Type            string  `json:"type"`
	ClientName      string  `json:"clientName,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
	DurationMinutes float64 `json:"durationMinutes,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Category        string  `json:"category,omitempty"`
	Message         string  `json:"message,omitempty"`
}

type ClientHealth struct {
	ClientID       string  `json:"clientId"`
	Name           string  `json:"name"`
	Profitability  float64 `json:"profitability"`
	Stability      float64 `json:"stability"`
	Growth         float64 `json:"growth"`
	Recommendation string  `json:"recommendation"`
}

type ReceiptParseResult struct {
	Amount          float64 `json:"amount"`
	Vendor          string  `json:"vendor"`
	Date            string  `json:"date"`
	Category        string  `json:"category,omitempty"`
	IsTaxDeductible bool    `json:"isTaxDeductible,omitempty"`
}
