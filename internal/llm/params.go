package llm

// Params are the effective generation parameters for one call.
type Params struct {
	Temperature   float64 `json:"temperature"`
	MaxTokens     int     `json:"max_tokens"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

// modelParams maps a model name to its configured generation defaults.
// Static, lookup only.
var modelParams = map[string]Params{
	"llama3":  {Temperature: 0.7, MaxTokens: 2048, TopP: 0.9, RepeatPenalty: 1.1},
	"mistral": {Temperature: 0.72, MaxTokens: 2048, TopP: 0.9, RepeatPenalty: 1.1},
	"gemma":   {Temperature: 0.7, MaxTokens: 2048, TopP: 0.9, RepeatPenalty: 1.05},
}

// fallbackParams are used when neither the requested model nor the default
// model has a configured row.
var fallbackParams = Params{Temperature: 0.7, MaxTokens: 2048, TopP: 0.9, RepeatPenalty: 1.1}

// ResolveParams resolves the effective generation parameters for a call:
// explicit request values win, then the requested model's configured row,
// then the default model's row. The base is always a single model's row;
// values are never merged field-by-field from two different models.
func ResolveParams(model, defaultModel string, temperature *float64, maxTokens *int) Params {
	p, ok := modelParams[model]
	if !ok {
		p, ok = modelParams[defaultModel]
		if !ok {
			p = fallbackParams
		}
	}
	if temperature != nil {
		p.Temperature = *temperature
	}
	if maxTokens != nil {
		p.MaxTokens = *maxTokens
	}
	return p
}
