package usage

import (
	"strings"

	"github.com/shopspring/decimal"
)

// modelPricing holds USD prices per one million tokens.
type modelPricing struct {
	Input  decimal.Decimal
	Output decimal.Decimal
}

func price(input, output string) modelPricing {
	return modelPricing{
		Input:  decimal.RequireFromString(input),
		Output: decimal.RequireFromString(output),
	}
}

var tokensPerUnit = decimal.NewFromInt(1_000_000)

var modelPrices = map[string]modelPricing{
	// openai
	"gpt-4":              price("30", "60"),
	"gpt-4-32k":          price("60", "120"),
	"gpt-4-turbo":        price("10", "30"),
	"gpt-4-1106-preview": price("10", "30"),
	"gpt-4o":             price("2.5", "10"),
	"gpt-4o-mini":        price("0.15", "0.6"),
	"gpt-4.1":            price("2", "8"),
	"gpt-4.1-mini":       price("0.4", "1.6"),
	"gpt-4.1-nano":       price("0.1", "0.4"),
	"gpt-5":              price("1.25", "10"),
	"gpt-5-mini":         price("0.25", "2"),
	"gpt-5-nano":         price("0.05", "0.4"),
	"gpt-3.5-turbo":      price("1.5", "2"),
	"gpt-3.5-turbo-16k":  price("3", "4"),
	"text-davinci-003":   price("20", "20"),
	"text-davinci-002":   price("20", "20"),
	"text-curie-001":     price("2", "2"),
	"text-babbage-001":   price("0.5", "0.5"),
	"text-ada-001":       price("0.4", "0.4"),
	"o3":                 price("2", "8"),
	"o4-mini":            price("1.1", "4.4"),

	// anthropic
	"claude-instant-1":  price("1.63", "5.51"),
	"claude-2":          price("11.02", "32.68"),
	"claude-3-haiku":    price("0.25", "1.25"),
	"claude-3-sonnet":   price("3", "15"),
	"claude-3-opus":     price("15", "75"),
	"claude-3-5-sonnet": price("3", "15"),
	"claude-3-5-haiku":  price("0.8", "4"),
	"claude-sonnet-4":   price("3", "15"),
	"claude-opus-4":     price("15", "75"),

	// google
	"gemini-1.5-flash": price("0.075", "0.3"),
	"gemini-1.5-pro":   price("1.25", "5"),
	"gemini-2.0-flash": price("0.1", "0.4"),
	"gemini-2.5-flash": price("0.3", "2.5"),
	"gemini-2.5-pro":   price("1.25", "10"),

	// others
	"chat-bison-001":        price("0.5", "0.5"),
	"command":               price("1", "2"),
	"mistral-large":         price("2", "6"),
	"mistral-small":         price("0.2", "0.6"),
	"llama-3-70b-instruct":  price("0.59", "0.79"),
	"deepseek-chat":         price("0.27", "1.1"),
	"deepseek-reasoner":     price("0.55", "2.19"),
	"openchat/openchat-3.5": price("0.2", "0.2"),
}

// lookupPricing matches the model name exactly, then by the longest
// known prefix so dated variants price like their base model.
func lookupPricing(model string) (modelPricing, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return modelPricing{}, false
	}
	if p, ok := modelPrices[model]; ok {
		return p, true
	}

	var (
		best    modelPricing
		bestLen int
	)
	for name, p := range modelPrices {
		if len(name) > bestLen && strings.HasPrefix(model, name) {
			best, bestLen = p, len(name)
		}
	}
	return best, bestLen > 0
}

// CalculateRunCost returns the USD cost of a run. Unknown models cost 0.
func CalculateRunCost(model string, promptTokens, completionTokens int64) float64 {
	p, ok := lookupPricing(model)
	if !ok {
		return 0
	}

	input := p.Input.Mul(decimal.NewFromInt(promptTokens)).Div(tokensPerUnit)
	output := p.Output.Mul(decimal.NewFromInt(completionTokens)).Div(tokensPerUnit)

	return input.Add(output).InexactFloat64()
}
