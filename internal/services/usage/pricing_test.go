package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRunCost(t *testing.T) {
	tests := []struct {
		name       string
		model      string
		prompt     int64
		completion int64
		want       float64
	}{
		{"exact match", "gpt-4", 1000, 500, 0.06},
		{"dated variant uses base price", "gpt-4-0613", 1000, 500, 0.06},
		{"longest prefix wins", "gpt-4-32k-0613", 1000, 1000, 0.18},
		{"case insensitive", "GPT-3.5-TURBO", 2_000_000, 0, 3},
		{"unknown model", "my-agent", 1000, 1000, 0},
		{"empty model", "", 1000, 1000, 0},
		{"no tokens", "claude-2", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateRunCost(tt.model, tt.prompt, tt.completion), 1e-9)
		})
	}
}
