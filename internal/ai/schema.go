package ai

import genai "github.com/google/generative-ai-go/genai"

// Response schemas handed to the completion API so that three of the four
// actions come back as machine-parseable JSON instead of free text. The
// forecast action deliberately has no schema: its value is the narrative.

var smartCommandSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type":            {Type: genai.TypeString, Description: "One of: work, expense, sync, report, fix"},
		"clientName":      {Type: genai.TypeString},
		"amount":          {Type: genai.TypeNumber},
		"durationMinutes": {Type: genai.TypeNumber},
		"notes":           {Type: genai.TypeString},
		"category":        {Type: genai.TypeString},
		"message":         {Type: genai.TypeString, Description: "A friendly status message about what was done"},
	},
}

var clientHealthSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"clientId":       {Type: genai.TypeString},
			"name":           {Type: genai.TypeString},
			"profitability":  {Type: genai.TypeNumber},
			"stability":      {Type: genai.TypeNumber},
			"growth":         {Type: genai.TypeNumber},
			"recommendation": {Type: genai.TypeString},
		},
	},
}

var receiptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"amount":          {Type: genai.TypeNumber},
		"vendor":          {Type: genai.TypeString},
		"date":            {Type: genai.TypeString},
		"category":        {Type: genai.TypeString},
		"isTaxDeductible": {Type: genai.TypeBoolean},
	},
	Required: []string{"amount", "vendor", "date"},
}
