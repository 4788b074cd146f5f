package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json code block", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"generic code block", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"code block with language", "```javascript\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"plain JSON", `{"key": "value"}`, `{"key": "value"}`},
		{"preamble before object", "Here is the JSON:\n{\"skills\": [\"Go\"]}", `{"skills": ["Go"]}`},
		{"preamble before array", "Here are the items:\n[\"a\", \"b\"]", `["a", "b"]`},
		{"trailing text", "{\"key\": \"value\"}\n\nLet me know!", `{"key": "value"}`},
		{"escaped quotes", `Result: {"message": "He said \"hi\" {"}`, `{"message": "He said \"hi\" {"}`},
		{"no json", "no structured output", "no structured output"},
		{"unterminated object", `{"key": "value"`, `{"key": "value"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"outer": {"inner": 1}}`, extractJSONObject(`{"outer": {"inner": 1}} tail`))
	assert.Equal(t, `{"t": "Hello {name}!"}`, extractJSONObject(`{"t": "Hello {name}!"}`))
	assert.Equal(t, "", extractJSONObject(""))
	assert.Equal(t, "", extractJSONObject("not json"))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[[1, 2], [3, 4]]`, extractJSONArray(`[[1, 2], [3, 4]] extra`))
	assert.Equal(t, `[{"id": "]"}]`, extractJSONArray(`[{"id": "]"}]`))
	assert.Equal(t, "", extractJSONArray("not array"))
}
